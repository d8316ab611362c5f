// Package container provides a small dependency registry and resolver with
// multi-binding support, plus a ServiceProvider system for grouping
// registrations.
//
// # Overview
//
// Independent modules declare what they need by token instead of holding
// references to each other. The container walks the dependency graph those
// declarations imply and produces fully-wired instances on demand.
//
// Go has no constructor annotations, so every constructor is registered
// together with an explicit manifest of the tokens it needs, in parameter
// order.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register bindings (directly or through providers)
//  3. Seal: c.Seal() (optional, closes registration)
//  4. Resolve the root of the object graph
//  5. Dispose: c.Dispose() (once, at shutdown)
//
// # Tokens
//
//	var (
//	    LoggerToken      = container.NewToken[*zap.Logger]("logger")
//	    ServiceToken     = container.NewToken[*Service]("service")
//	    ContributorToken = container.NewMultiToken[Contributor]("contributor")
//	)
//
// # Bindings
//
//	// Constant value, never disposed by the container
//	container.Register(c, LoggerToken, container.Value(logger))
//
//	// Constructor with a static manifest, singleton by default
//	container.Register(c, ServiceToken, container.Class1(NewService, container.One(LoggerToken)))
//
//	// Factory resolving its own dependencies, new instance per resolution
//	container.Register(c, SessionToken, container.Factory(func(r container.Resolver) (*Session, error) {
//	    svc, err := container.Resolve(r, ServiceToken)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return svc.NewSession(), nil
//	}), container.WithScope(container.Transient))
//
// # Multi-bindings
//
//	container.RegisterMulti(c, ContributorToken, container.Class1(NewGreeter, container.One(ServiceToken)))
//	container.RegisterMulti(c, ContributorToken, container.Class1(NewEcho, container.One(ServiceToken)))
//
//	// Collected in registration order
//	contributors, err := container.ResolveAll(c, ContributorToken)
//
//	// Or injected as a plural dependency
//	container.Class1(NewRegistry, container.All(ContributorToken))
//
// # Errors
//
// Resolution failures are returned synchronously and never produce a partial
// graph: [ErrUnresolvedToken], [ErrCyclicDependency], [ErrAmbiguousBinding],
// [ErrContainerDisposed] and [*ConstructionError], which keeps the original
// cause and the token chain.
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	c.Seal()
//	registry.Boot()
package container
