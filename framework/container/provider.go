package container

import "fmt"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register runs immediately and may only bind. Boot runs after every
// provider has registered and the container has been sealed, so it may
// resolve anything but can no longer bind.
//
//	type CacheProvider struct{ container.BaseProvider }
//
//	func (p *CacheProvider) Register(c *container.Container) error {
//	    return container.Register(c, CacheToken, container.Class1(NewCache, container.One(ConfigToken)))
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(c *Container) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry runs the register phase and then the boot phase of a set
// of providers against one container.
type ProviderRegistry struct {
	c          *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	next       int // index of the next provider to boot
	booted     bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Registering the
// same provider twice is a no-op. A provider added after Boot is booted
// straight away.
func (r *ProviderRegistry) Register(p ServiceProvider) error {
	if r.registered[p] {
		return nil
	}
	r.registered[p] = true

	if err := p.Register(r.c); err != nil {
		return fmt.Errorf("registering %T: %w", p, err)
	}
	r.providers = append(r.providers, p)

	if r.booted {
		return r.Boot()
	}
	return nil
}

// Boot calls Boot on every provider in registration order and stops at the
// first error. Providers that booted are not booted again: calling Boot after
// a failure resumes at the provider that failed.
func (r *ProviderRegistry) Boot() error {
	for ; r.next < len(r.providers); r.next++ {
		p := r.providers[r.next]
		if err := p.Boot(r.c); err != nil {
			return fmt.Errorf("booting %T: %w", p, err)
		}
	}
	r.booted = true
	return nil
}

// Booted returns true once every registered provider has booted.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
