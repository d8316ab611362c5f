// Package http holds the request and response helpers the command endpoints
// are written with.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20 // 1 MB

// Request wraps *http.Request with binding helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// ── Binding ──────────────────────────────────────────────────────────────────

// ErrEmptyBody is returned by Bind for a request without a body.
var ErrEmptyBody = errors.New("empty request body")

// Bind decodes a JSON request body into v.
func (req *Request) Bind(v any) error {
	if req.raw.Body == nil {
		return ErrEmptyBody
	}
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

// Args decodes an optional JSON object of string values. An empty or null
// body yields an empty map. Query string values fill keys the body leaves
// unset.
func (req *Request) Args() (map[string]string, error) {
	var args map[string]string
	if err := req.Bind(&args); err != nil && !errors.Is(err, ErrEmptyBody) {
		return nil, err
	}
	if args == nil {
		args = map[string]string{}
	}
	for k, v := range req.raw.URL.Query() {
		if _, ok := args[k]; !ok && len(v) > 0 {
			args[k] = v[0]
		}
	}
	return args, nil
}

// ── Input helpers ────────────────────────────────────────────────────────────

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}
