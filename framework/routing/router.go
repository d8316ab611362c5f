// Package routing exposes the contributed command registry over HTTP.
package routing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/km-arc/go-extkit/framework/container"
	"go.uber.org/zap"
)

// Token is the container token the *Router is bound under.
var Token = container.NewToken[*Router]("router")

// Router wraps chi.Router.
type Router struct {
	mux chi.Router
}

// New creates a Router with Recoverer, RealIP and request logging through log.
func New(log *zap.Logger) *Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	return &Router{mux: r}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)  { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc) { r.mux.Post(pattern, h) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Prefix creates a sub-router with a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// RequestLogger logs one line per request with status, size and duration.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", req.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, req)
		})
	}
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
