package container

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the dependency registry and resolver.
//
// It supports:
//   - Register / RegisterMulti with Value, Class and Factory bindings
//   - Singleton and Transient scopes
//   - Resolve / ResolveAll (generic, depth-first, cycle-checked)
//   - Seal / Validate for a "closed for registration" phase
//   - Dispose in reverse creation order
//   - Resolved event callbacks
//
// A Container is safe for concurrent use; each top-level resolution holds the
// container lock until its whole graph walk completes. Constructors, factories
// and AfterResolving callbacks may call back into the container from the
// resolving goroutine: reads and resolutions join the running walk, while
// Register and Dispose fail with [ErrReentrant]. A call made from another
// goroutine that the resolving one waits on still blocks.
type Container struct {
	mu sync.Mutex

	// goroutine running the current walk (0 when idle), and that walk
	owner  atomic.Uint64
	active *resolution

	// token → bindings, bindings kept in registration order
	bindings map[*key][]*binding

	// tokens in first-registration order
	order []*key

	// releases for owned singletons, in creation order
	releases []release

	// resolved callbacks: fired once per materialized instance
	afterResolving []func(token string, instance any)

	sealed   bool
	disposed bool
}

// Disposable is implemented by instances that need releasing when the
// container is disposed. Instances implementing [io.Closer] are released too.
type Disposable interface {
	Dispose() error
}

type release struct {
	token string
	fn    func() error
}

// New creates an empty container.
func New() *Container {
	return &Container{
		bindings: make(map[*key][]*binding),
	}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a binding for tok. A single-valued token accepts exactly one
// binding; a second registration fails with [ErrDuplicateBinding]. A token
// created with [NewMultiToken] accumulates bindings in registration order.
//
//	container.Register(c, LoggerToken, container.Value(logger))
//	container.Register(c, ServiceToken, container.Class1(NewService, container.One(LoggerToken)))
//	container.Register(c, SessionToken, container.Factory(newSession), container.WithScope(container.Transient))
func Register[T any](c *Container, tok Token[T], b Binding[T], opts ...Option) error {
	if tok.k == nil {
		return errors.New("container: register with zero token")
	}
	return c.register(newBinding(tok.k, b, opts), false)
}

// RegisterMulti appends one more binding to a plural token. Order is
// significant: it is the order [ResolveAll] returns instances in.
func RegisterMulti[T any](c *Container, tok Token[T], b Binding[T], opts ...Option) error {
	if tok.k == nil {
		return errors.New("container: register with zero token")
	}
	return c.register(newBinding(tok.k, b, opts), true)
}

func (c *Container) register(b *binding, multi bool) error {
	if b.produce == nil {
		return fmt.Errorf("container: empty binding for %s", b.key)
	}

	if c.reentrant() {
		return fmt.Errorf("%w: register %s", ErrReentrant, b.key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.disposed:
		return ErrContainerDisposed
	case c.sealed:
		return fmt.Errorf("%w: %s", ErrSealed, b.key)
	case multi && !b.key.multi:
		return fmt.Errorf("%w: %s", ErrNotMultiToken, b.key)
	}

	existing := c.bindings[b.key]
	if len(existing) > 0 && !b.key.multi {
		return fmt.Errorf("%w: %s", ErrDuplicateBinding, b.key)
	}
	if len(existing) == 0 {
		c.order = append(c.order, b.key)
	}
	c.bindings[b.key] = append(existing, b)
	return nil
}

// Seal closes the container for registration. Resolution is unaffected.
func (c *Container) Seal() {
	defer c.lock()()
	c.sealed = true
}

// Sealed reports whether Seal has been called.
func (c *Container) Sealed() bool {
	defer c.lock()()
	return c.sealed
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether at least one binding exists for k.
func (c *Container) Bound(k Key) bool {
	defer c.lock()()
	return len(c.bindings[k.id()]) > 0
}

// Resolved reports whether any binding of k holds a materialized instance.
// Value bindings count as resolved from the moment they are registered.
func (c *Container) Resolved(k Key) bool {
	defer c.lock()()
	for _, b := range c.bindings[k.id()] {
		if b.ready {
			return true
		}
	}
	return false
}

// Tokens returns the names of all registered tokens in registration order
// (for debugging).
func (c *Container) Tokens() []string {
	defer c.lock()()
	out := make([]string, len(c.order))
	for i, k := range c.order {
		out[i] = k.name
	}
	return out
}

// ── Validate ──────────────────────────────────────────────────────────────────

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Validate walks the static manifest of every Class binding and reports the
// first missing token, ambiguous single dependency or cycle. Nothing is
// constructed. Factory bindings are treated as leaves.
func (c *Container) Validate() error {
	defer c.lock()()

	if c.disposed {
		return ErrContainerDisposed
	}

	states := make(map[*binding]visitState)
	for _, k := range c.order {
		for _, b := range c.bindings[k] {
			if err := c.validate(b, states, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Container) validate(b *binding, states map[*binding]visitState, stack []*binding) error {
	switch states[b] {
	case visiting:
		return cycleError(stack, b)
	case visited:
		return nil
	}

	states[b] = visiting
	stack = append(stack, b)

	for _, d := range b.deps {
		deps := c.bindings[d.target()]
		if !d.plural() {
			switch len(deps) {
			case 0:
				return fmt.Errorf("%w: %s%s", ErrUnresolvedToken, d.target(), requiredBy(stack))
			case 1:
			default:
				return fmt.Errorf("%w: %s has %d bindings%s", ErrAmbiguousBinding, d.target(), len(deps), requiredBy(stack))
			}
		}
		for _, dep := range deps {
			if err := c.validate(dep, states, stack); err != nil {
				return err
			}
		}
	}

	states[b] = visited
	return nil
}

// ── Dispose ───────────────────────────────────────────────────────────────────

// Dispose releases every singleton the container constructed that
// implements [Disposable] or [io.Closer], in reverse creation order. Each
// release is attempted once even if an earlier one fails or panics; the
// failures are combined into the returned error.
//
// Dispose may be called once. Later calls, and every Register or Resolve
// call after it, return [ErrContainerDisposed].
func (c *Container) Dispose() error {
	if c.reentrant() {
		return fmt.Errorf("%w: dispose", ErrReentrant)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrContainerDisposed
	}
	c.disposed = true

	// releases may call back into the container
	c.owner.Store(goid())
	defer c.owner.Store(0)

	var err error
	for i := len(c.releases) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.releases[i].run())
	}
	c.releases = nil
	return err
}

func (r release) run() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("disposing %s: panic: %v", r.token, rec)
		}
	}()
	if err := r.fn(); err != nil {
		return fmt.Errorf("disposing %s: %w", r.token, err)
	}
	return nil
}

// track records a release for an owned singleton (must hold mu).
func (c *Container) track(b *binding, instance any) {
	var fn func() error
	switch v := instance.(type) {
	case Disposable:
		fn = v.Dispose
	case io.Closer:
		fn = v.Close
	default:
		return
	}
	c.releases = append(c.releases, release{token: b.key.name, fn: fn})
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after each instance is built,
// singletons once and transients on every build. Callbacks run during
// resolution and must not call back into the container.
func (c *Container) AfterResolving(cb func(token string, instance any)) {
	defer c.lock()()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(token string, instance any) {
	for _, cb := range c.afterResolving {
		cb(token, instance)
	}
}

// ── Re-entry ──────────────────────────────────────────────────────────────────

// reentrant reports whether the calling goroutine is inside this container's
// running walk, i.e. already holds mu.
func (c *Container) reentrant() bool {
	id := goid()
	return id != 0 && c.owner.Load() == id
}

// lock acquires mu and returns its release, or a no-op when the caller is
// already inside the running walk.
func (c *Container) lock() (unlock func()) {
	if c.reentrant() {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

// walk runs fn as the top-level resolution; c.mu must be held.
func walk[V any](c *Container, fn func(r *resolution) (V, error)) (V, error) {
	r := &resolution{c: c}
	c.active = r
	c.owner.Store(goid())
	defer func() {
		c.owner.Store(0)
		c.active = nil
	}()
	return fn(r)
}

// goid returns the id of the calling goroutine, read from its stack header
// ("goroutine 18 [running]:"), or 0 if it cannot be parsed.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	s, _, _ = strings.Cut(s, " ")
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ── Diagnostics ───────────────────────────────────────────────────────────────

func chainOf(stack []*binding) []string {
	out := make([]string, len(stack))
	for i, b := range stack {
		out[i] = b.key.name
	}
	return out
}

func cycleError(stack []*binding, b *binding) error {
	chain := append(chainOf(stack), b.key.name)
	return fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(chain, " -> "))
}

func requiredBy(stack []*binding) string {
	if len(stack) == 0 {
		return ""
	}
	return " (required by " + strings.Join(chainOf(stack), " -> ") + ")"
}
