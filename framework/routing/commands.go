package routing

import (
	"errors"
	"net/http"

	"github.com/km-arc/go-extkit/framework/contrib"
	gohttp "github.com/km-arc/go-extkit/framework/http"
	"go.uber.org/zap"
)

type commandView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Commands mounts the command endpoints and the health check:
//
//	GET  /healthz
//	GET  /commands
//	POST /commands/{id}
func Commands(r *Router, reg *contrib.Registry, log *zap.Logger) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(map[string]string{"status": "ok"})
	})

	r.Prefix("/commands", func(api *Router) {
		api.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			cmds := reg.List()
			out := make([]commandView, 0, len(cmds))
			for _, c := range cmds {
				out = append(out, commandView{ID: c.ID, Title: c.Title})
			}
			gohttp.NewResponse(w).Success(out)
		})

		api.Post("/{id}", func(w http.ResponseWriter, req *http.Request) {
			request := gohttp.NewRequest(req)
			res := gohttp.NewResponse(w)
			id := request.RouteParam("id")

			args, err := request.Args()
			if err != nil {
				res.BadRequest("Body must be a JSON object of strings.")
				return
			}

			out, err := reg.Execute(req.Context(), id, args)
			var argErr *contrib.ArgumentError
			switch {
			case err == nil:
				res.Success(out)
			case errors.Is(err, contrib.ErrUnknownCommand):
				res.NotFound("Unknown command " + id + ".")
			case errors.As(err, &argErr):
				res.ValidationError(argErr.Errors)
			default:
				log.Error("command failed", zap.String("command", id), zap.Error(err))
				res.ServerError()
			}
		})
	})
}
