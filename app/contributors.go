package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/km-arc/go-extkit/framework/config"
	"github.com/km-arc/go-extkit/framework/contrib"
	"github.com/km-arc/go-extkit/framework/validation"
)

// ── greet ────────────────────────────────────────────────────────────────────

type greeting struct{ g *Greeter }

func newGreeting(g *Greeter) (contrib.Contributor, error) {
	return &greeting{g: g}, nil
}

func (c *greeting) Contribute(r *contrib.Registry) error {
	return r.Add(contrib.Command{
		ID:    "greet",
		Title: "Greet someone by name",
		Rules: validation.Rules{
			"name":  "required|alpha_dash|max:32",
			"times": "integer|gte:1|lte:5",
		},
		Run: func(_ context.Context, args contrib.Args) (any, error) {
			times := 1
			if s := args["times"]; s != "" {
				times, _ = strconv.Atoi(s)
			}
			return c.g.Greet(args["name"], times), nil
		},
	})
}

// ── echo ─────────────────────────────────────────────────────────────────────

type echo struct{}

func (echo) Contribute(r *contrib.Registry) error {
	return r.Add(contrib.Command{
		ID:    "echo",
		Title: "Echo the text argument",
		Rules: validation.Rules{
			"text":  "required|max:256",
			"upper": "boolean",
		},
		Run: func(_ context.Context, args contrib.Args) (any, error) {
			if ok, _ := strconv.ParseBool(args["upper"]); ok {
				return strings.ToUpper(args["text"]), nil
			}
			return args["text"], nil
		},
	})
}

// ── app.info ─────────────────────────────────────────────────────────────────

// info reports the host identity and the commands every contributor added.
type info struct {
	cfg *config.Config
	g   *Greeter
}

type infoView struct {
	Name      string   `json:"name"`
	Env       string   `json:"env"`
	Commands  []string `json:"commands"`
	Greetings int64    `json:"greetings"`
}

func (c *info) Contribute(r *contrib.Registry) error {
	return r.Add(contrib.Command{
		ID:    "app.info",
		Title: "Show host name, environment and commands",
		Run: func(context.Context, contrib.Args) (any, error) {
			var ids []string
			for _, cmd := range r.List() {
				ids = append(ids, cmd.ID)
			}
			return infoView{
				Name:      c.cfg.App.Name,
				Env:       c.cfg.App.Env,
				Commands:  ids,
				Greetings: c.g.Count(),
			}, nil
		},
	})
}
