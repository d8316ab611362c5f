package app

import (
	"github.com/km-arc/go-extkit/framework/config"
	"github.com/km-arc/go-extkit/framework/container"
	"github.com/km-arc/go-extkit/framework/contrib"
	"github.com/km-arc/go-extkit/framework/logging"
)

// AppServiceProvider binds the greeter and the demo contributors.
type AppServiceProvider struct {
	container.BaseProvider
}

func (p *AppServiceProvider) Register(c *container.Container) error {
	if err := container.Register(c, GreeterToken, container.Class2(NewGreeter,
		container.One(config.Token), container.One(logging.Token))); err != nil {
		return err
	}

	contributors := []container.Binding[contrib.Contributor]{
		container.Class1(newGreeting, container.One(GreeterToken)),
		container.Value[contrib.Contributor](echo{}),
		container.Factory(func(r container.Resolver) (contrib.Contributor, error) {
			cfg, err := container.Resolve(r, config.Token)
			if err != nil {
				return nil, err
			}
			g, err := container.Resolve(r, GreeterToken)
			if err != nil {
				return nil, err
			}
			return &info{cfg: cfg, g: g}, nil
		}),
	}
	for _, b := range contributors {
		if err := container.RegisterMulti(c, contrib.ContributorToken, b); err != nil {
			return err
		}
	}
	return nil
}
