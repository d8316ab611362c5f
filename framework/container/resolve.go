package container

import (
	"fmt"
	"reflect"
	"slices"
)

// Resolver produces instances for tokens. Both *Container and the resolver
// handed to a [Factory] satisfy it; use it with [Resolve] and [ResolveAll].
type Resolver interface {
	resolveOne(k *key) (any, error)
	resolveAll(k *key) ([]any, error)
}

// ── Container methods ─────────────────────────────────────────────────────────

// A call made from inside a running walk on the same goroutine joins that
// walk, so its stack still catches cycles.

func (c *Container) resolveOne(k *key) (any, error) {
	if c.reentrant() {
		if c.disposed {
			return nil, ErrContainerDisposed
		}
		return c.active.one(k)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil, ErrContainerDisposed
	}
	return walk(c, func(r *resolution) (any, error) { return r.one(k) })
}

func (c *Container) resolveAll(k *key) ([]any, error) {
	if c.reentrant() {
		if c.disposed {
			return nil, ErrContainerDisposed
		}
		return c.active.all(k)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil, ErrContainerDisposed
	}
	return walk(c, func(r *resolution) ([]any, error) { return r.all(k) })
}

// ── Generic helpers ───────────────────────────────────────────────────────────

// Resolve returns the instance bound to tok, building it and its dependency
// subgraph when needed.
//
//	svc, err := container.Resolve(c, ServiceToken)
func Resolve[T any](r Resolver, tok Token[T]) (T, error) {
	v, err := r.resolveOne(tok.k)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](tok.k, v)
}

// ResolveAll returns one instance per binding of tok, in registration order.
// It returns an empty slice when nothing is registered.
//
//	contributors, err := container.ResolveAll(c, ContributorToken)
func ResolveAll[T any](r Resolver, tok Token[T]) ([]T, error) {
	vs, err := r.resolveAll(tok.k)
	if err != nil {
		return nil, err
	}
	return castAll[T](tok.k, vs)
}

// MustResolve is like Resolve but panics on error. Use it in Boot hooks and
// tests where a missing binding is a programming error.
func MustResolve[T any](r Resolver, tok Token[T]) T {
	v, err := Resolve(r, tok)
	if err != nil {
		panic(err)
	}
	return v
}

// ── Internal ──────────────────────────────────────────────────────────────────

// resolution is one depth-first graph walk. stack holds the bindings
// currently under construction and doubles as the in-progress marker for
// cycle detection. The owning container lock is held for its lifetime.
type resolution struct {
	c     *Container
	stack []*binding
}

func (r *resolution) resolveOne(k *key) (any, error)   { return r.one(k) }
func (r *resolution) resolveAll(k *key) ([]any, error) { return r.all(k) }

func (r *resolution) one(k *key) (any, error) {
	bs := r.c.bindings[k]
	switch len(bs) {
	case 0:
		return nil, fmt.Errorf("%w: %s%s", ErrUnresolvedToken, k, requiredBy(r.stack))
	case 1:
		return r.build(bs[0])
	default:
		return nil, fmt.Errorf("%w: %s has %d bindings, use ResolveAll%s", ErrAmbiguousBinding, k, len(bs), requiredBy(r.stack))
	}
}

func (r *resolution) all(k *key) ([]any, error) {
	bs := r.c.bindings[k]
	out := make([]any, 0, len(bs))
	for _, b := range bs {
		v, err := r.build(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *resolution) build(b *binding) (any, error) {
	if b.ready {
		return b.instance, nil
	}
	if slices.Contains(r.stack, b) {
		return nil, cycleError(r.stack, b)
	}

	r.stack = append(r.stack, b)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	v, err := r.produce(b)
	if err != nil {
		return nil, err
	}

	if b.scope == Singleton {
		b.instance, b.ready = v, true
		r.c.track(b, v)
	}
	r.c.fireAfterResolving(b.key.name, v)
	return v, nil
}

// produce runs the binding's strategy, turning foreign errors and panics into
// a ConstructionError that records the current chain.
func (r *resolution) produce(b *binding) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, r.constructionError(b, fmt.Errorf("panic: %v", rec))
		}
	}()

	v, err = b.produce(r)
	if err != nil {
		if fromContainer(err) {
			return nil, err
		}
		return nil, r.constructionError(b, err)
	}
	return v, nil
}

func (r *resolution) constructionError(b *binding, err error) error {
	return &ConstructionError{
		Token: b.key.name,
		Chain: chainOf(r.stack),
		Err:   err,
	}
}

func cast[T any](k *key, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: %s resolved to %T, not %s", k, v, reflect.TypeFor[T]())
	}
	return out, nil
}

func castAll[T any](k *key, vs []any) ([]T, error) {
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, err := cast[T](k, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
