package container

// Scope controls how many instances a binding produces.
type Scope int

const (
	// Singleton is the default scope. The instance is built lazily on the
	// first resolution and reused for the lifetime of the container.
	Singleton Scope = iota

	// Transient builds a fresh instance, and a fresh dependency sub-walk,
	// on every resolution.
	Transient
)

// String returns the human-readable name of the scope.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Binding is a production strategy for values of type T. Build one with
// [Value], [Class], [Class1], [Class2], [Class3] or [Factory].
type Binding[T any] struct {
	produce  func(r *resolution) (any, error)
	deps     []Dependency
	opaque   bool
	constant bool
	value    any
}

// Value binds a pre-built value. The container does not own it and never
// disposes it.
//
//	container.Register(c, ConfigToken, container.Value(cfg))
func Value[T any](v T) Binding[T] {
	return Binding[T]{
		produce:  func(*resolution) (any, error) { return v, nil },
		constant: true,
		value:    v,
	}
}

// Args holds the resolved dependencies handed to a [Class] constructor, in
// manifest order. Read them with [Arg].
type Args []any

// Arg returns the i-th argument as V. It panics on a type mismatch; the
// panic is reported as a [ConstructionError].
func Arg[V any](a Args, i int) V {
	if a[i] == nil {
		var zero V
		return zero
	}
	return a[i].(V)
}

// Class binds a constructor together with its static dependency manifest.
// Dependencies are resolved depth-first in manifest order before ctor runs.
//
//	container.Class(func(a container.Args) (*Service, error) {
//	    return &Service{log: container.Arg[*zap.Logger](a, 0)}, nil
//	}, container.One(LoggerToken))
func Class[T any](ctor func(Args) (T, error), deps ...Dependency) Binding[T] {
	return Binding[T]{
		deps: deps,
		produce: func(r *resolution) (any, error) {
			args := make(Args, len(deps))
			for i, d := range deps {
				v, err := d.resolve(r)
				if err != nil {
					return nil, err
				}
				args[i] = v
			}
			v, err := ctor(args)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Class1 is a typed [Class] for constructors with one dependency.
//
//	container.Class1(NewService, container.One(LoggerToken))
func Class1[T, A any](ctor func(A) (T, error), a Dep[A]) Binding[T] {
	return Binding[T]{
		deps: []Dependency{a},
		produce: func(r *resolution) (any, error) {
			av, err := a.get(r)
			if err != nil {
				return nil, err
			}
			v, err := ctor(av)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Class2 is a typed [Class] for constructors with two dependencies.
func Class2[T, A, B any](ctor func(A, B) (T, error), a Dep[A], b Dep[B]) Binding[T] {
	return Binding[T]{
		deps: []Dependency{a, b},
		produce: func(r *resolution) (any, error) {
			av, err := a.get(r)
			if err != nil {
				return nil, err
			}
			bv, err := b.get(r)
			if err != nil {
				return nil, err
			}
			v, err := ctor(av, bv)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Class3 is a typed [Class] for constructors with three dependencies.
func Class3[T, A, B, C any](ctor func(A, B, C) (T, error), a Dep[A], b Dep[B], c Dep[C]) Binding[T] {
	return Binding[T]{
		deps: []Dependency{a, b, c},
		produce: func(r *resolution) (any, error) {
			av, err := a.get(r)
			if err != nil {
				return nil, err
			}
			bv, err := b.get(r)
			if err != nil {
				return nil, err
			}
			cv, err := c.get(r)
			if err != nil {
				return nil, err
			}
			v, err := ctor(av, bv, cv)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Factory binds a function that resolves its own dependencies through the
// supplied [Resolver]. The resolver belongs to the current resolution and
// must not be retained after fn returns.
//
// Factory dependencies are invisible to [Container.Validate].
//
//	container.Factory(func(r container.Resolver) (*Cache, error) {
//	    cfg, err := container.Resolve(r, ConfigToken)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewCache(cfg.CacheSize), nil
//	})
func Factory[T any](fn func(Resolver) (T, error)) Binding[T] {
	return Binding[T]{
		opaque: true,
		produce: func(r *resolution) (any, error) {
			v, err := fn(r)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Option configures a binding during registration.
type Option func(*binding)

// WithScope sets the [Scope] of the binding. The default is [Singleton].
// Value bindings are always singletons and ignore this option.
func WithScope(s Scope) Option {
	return func(b *binding) {
		if !b.constant {
			b.scope = s
		}
	}
}

// binding is the registry entry produced from a Binding[T].
type binding struct {
	key      *key
	scope    Scope
	produce  func(r *resolution) (any, error)
	deps     []Dependency
	opaque   bool
	constant bool

	instance any
	ready    bool
}

func newBinding[T any](k *key, b Binding[T], opts []Option) *binding {
	e := &binding{
		key:      k,
		scope:    Singleton,
		produce:  b.produce,
		deps:     b.deps,
		opaque:   b.opaque,
		constant: b.constant,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.constant {
		e.instance, e.ready = b.value, true
	}
	return e
}
