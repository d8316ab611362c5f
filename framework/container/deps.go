package container

// Dependency is one entry of a constructor's dependency manifest. Build it
// with [One] or [All].
type Dependency interface {
	target() *key
	plural() bool
	resolve(r *resolution) (any, error)
}

// Dep is a typed [Dependency] yielding a V.
type Dep[V any] struct {
	k    *key
	many bool
	get  func(r *resolution) (V, error)
}

func (d Dep[V]) target() *key { return d.k }
func (d Dep[V]) plural() bool { return d.many }

func (d Dep[V]) resolve(r *resolution) (any, error) {
	return d.get(r)
}

// One declares a single-valued dependency on tok.
func One[A any](tok Token[A]) Dep[A] {
	return Dep[A]{
		k: tok.k,
		get: func(r *resolution) (A, error) {
			v, err := r.one(tok.k)
			if err != nil {
				var zero A
				return zero, err
			}
			return cast[A](tok.k, v)
		},
	}
}

// All declares a collect-all dependency on tok. The constructor receives
// every binding's instance in registration order, or an empty slice.
func All[A any](tok Token[A]) Dep[[]A] {
	return Dep[[]A]{
		k:    tok.k,
		many: true,
		get: func(r *resolution) ([]A, error) {
			vs, err := r.all(tok.k)
			if err != nil {
				return nil, err
			}
			return castAll[A](tok.k, vs)
		},
	}
}
