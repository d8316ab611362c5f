package app

import (
	"context"
	"errors"
	"sync"

	"github.com/km-arc/go-extkit/framework/config"
	"github.com/km-arc/go-extkit/framework/container"
	"github.com/km-arc/go-extkit/framework/contrib"
	"github.com/km-arc/go-extkit/framework/logging"
	"github.com/km-arc/go-extkit/framework/providers"
	"github.com/km-arc/go-extkit/framework/routing"
	"go.uber.org/zap"
)

// ErrNotActive is returned by accessors used before Activate succeeded.
var ErrNotActive = errors.New("app: not activated")

// Application is the host kernel. It embeds the Container so user code can
// register bindings on it directly, and holds the ProviderRegistry that
// Register and Activate drive.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	mu       sync.Mutex
	active   bool
	commands *contrib.Registry
	log      *zap.Logger
	stopOnce sync.Once
	stopErr  error
}

// Option customises the framework providers.
type Option func(*options)

type options struct {
	envFiles []string
	cfg      *config.Config
	logger   *zap.Logger
}

// WithEnvFiles sets the .env files the config provider loads.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithConfig binds cfg instead of loading it from the environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger binds l instead of building a logger from config.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates the application and registers the framework providers in
// order: config, logging, contrib, routing.
func New(opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := container.New()
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: o.envFiles, Config: o.cfg},
		&providers.LoggingServiceProvider{Logger: o.logger},
		&providers.ContribServiceProvider{},
		&providers.RoutingServiceProvider{},
	} {
		if err := app.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Activate closes registration, checks the graph, boots every provider and
// resolves the command registry, which builds every contributor. After a
// failure Activate may be called again; booting resumes at the provider that
// failed.
func (a *Application) Activate() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active {
		return nil
	}

	a.Seal()
	if err := a.Validate(); err != nil {
		return err
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}

	log, err := container.Resolve(a.Container, logging.Token)
	if err != nil {
		return err
	}
	a.log = log

	commands, err := container.Resolve(a.Container, contrib.RegistryToken)
	if err != nil {
		return err
	}
	a.commands = commands
	a.active = true

	log.Info("activated", zap.Int("commands", commands.Len()), zap.Strings("tokens", a.Tokens()))
	return nil
}

// Commands returns the resolved command registry.
func (a *Application) Commands() (*contrib.Registry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.active {
		return nil, ErrNotActive
	}
	return a.commands, nil
}

// Router resolves the HTTP router.
func (a *Application) Router() (*routing.Router, error) {
	if _, err := a.Commands(); err != nil {
		return nil, err
	}
	return container.Resolve(a.Container, routing.Token)
}

// Config resolves the bound configuration.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve(a.Container, config.Token)
}

// Logger returns the host logger, or a no-op logger before activation.
func (a *Application) Logger() *zap.Logger {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

// Execute runs a contributed command.
func (a *Application) Execute(ctx context.Context, id string, args contrib.Args) (any, error) {
	commands, err := a.Commands()
	if err != nil {
		return nil, err
	}
	return commands.Execute(ctx, id, args)
}

// Deactivate disposes the container and flushes the logger. Only the first
// call does any work; later calls return the same result.
func (a *Application) Deactivate() error {
	a.stopOnce.Do(func() {
		err := a.Dispose()
		log := a.Logger()
		if err != nil {
			log.Error("dispose failed", zap.Error(err))
		} else {
			log.Info("deactivated")
		}
		// Sync fails on terminals; only a dispose error is reported.
		_ = log.Sync()

		a.mu.Lock()
		a.active = false
		a.mu.Unlock()
		a.stopErr = err
	})
	return a.stopErr
}
