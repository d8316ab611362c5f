package providers

import (
	"fmt"

	"github.com/km-arc/go-extkit/framework/config"
	"github.com/km-arc/go-extkit/framework/container"
	"github.com/km-arc/go-extkit/framework/contrib"
	"github.com/km-arc/go-extkit/framework/logging"
	"github.com/km-arc/go-extkit/framework/routing"
	"go.uber.org/zap"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the configuration from the environment and .env
// files and binds it as a constant.
//
// Bound tokens:
//   - config.Token → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
	// Config, when set, is bound instead of loading from the environment.
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load(p.EnvFiles...)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return container.Register(app, config.Token, container.Value(cfg))
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the host logger from the configuration.
//
// Bound tokens:
//   - logging.Token → *zap.Logger
//
// When booted it reports every newly constructed instance at debug level.
type LoggingServiceProvider struct {
	container.BaseProvider
	// Logger, when set, is bound instead of building one from config.
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		return container.Register(app, logging.Token, container.Value(p.Logger))
	}
	return container.Register(app, logging.Token, container.Class1(logging.New, container.One(config.Token)))
}

func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	log, err := container.Resolve(app, logging.Token)
	if err != nil {
		return err
	}
	app.AfterResolving(func(token string, instance any) {
		log.Debug("resolved", zap.String("token", token), zap.String("type", fmt.Sprintf("%T", instance)))
	})
	return nil
}

// ── ContribServiceProvider ────────────────────────────────────────────────────

// ContribServiceProvider binds the command registry over every contributor.
//
// Bound tokens:
//   - contrib.RegistryToken → *contrib.Registry
type ContribServiceProvider struct {
	container.BaseProvider
}

func (p *ContribServiceProvider) Register(app *container.Container) error {
	return container.Register(app, contrib.RegistryToken,
		container.Class1(contrib.NewRegistry, container.All(contrib.ContributorToken)))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with the command endpoints
// mounted.
//
// Bound tokens:
//   - routing.Token → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	return container.Register(app, routing.Token, container.Class2(newRouter,
		container.One(logging.Token), container.One(contrib.RegistryToken)))
}

func newRouter(log *zap.Logger, reg *contrib.Registry) (*routing.Router, error) {
	r := routing.New(log)
	routing.Commands(r, reg, log)
	return r, nil
}
