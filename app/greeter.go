// Package app holds the demo contributions shipped with the extkit binary.
// Each contributor is an independent module: none of them imports or
// references another, they only declare the tokens they need.
package app

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/km-arc/go-extkit/framework/config"
	"github.com/km-arc/go-extkit/framework/container"
	"go.uber.org/zap"
)

// GreeterToken is the shared greeting service.
var GreeterToken = container.NewToken[*Greeter]("greeter")

// Greeter builds greetings and counts how many it has handed out.
type Greeter struct {
	host  string
	log   *zap.Logger
	count atomic.Int64
}

func NewGreeter(cfg *config.Config, log *zap.Logger) (*Greeter, error) {
	return &Greeter{host: cfg.App.Name, log: log.Named("greeter")}, nil
}

// Greet returns the greeting for name, repeated times times.
func (g *Greeter) Greet(name string, times int) string {
	n := g.count.Add(1)
	g.log.Debug("greet", zap.String("name", name), zap.Int64("total", n))

	msg := fmt.Sprintf("Hello, %s! Welcome to %s.", name, g.host)
	return strings.TrimSpace(strings.Repeat(msg+" ", max(times, 1)))
}

// Count returns the number of greetings so far.
func (g *Greeter) Count() int64 { return g.count.Load() }

// Close logs the final count when the container is disposed.
func (g *Greeter) Close() error {
	g.log.Info("greeter closed", zap.Int64("greetings", g.Count()))
	return nil
}
