// Package contrib defines the contribution contracts independent modules
// implement, and the command registry their contributions are collected into.
//
// Contributors never reference each other. Each one is bound under the plural
// [ContributorToken]; the container hands the full list to [NewRegistry] when
// the registry is first resolved.
package contrib

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/km-arc/go-extkit/framework/container"
	"github.com/km-arc/go-extkit/framework/validation"
)

var (
	// ContributorToken collects every Contributor, in registration order.
	ContributorToken = container.NewMultiToken[Contributor]("contributor")

	// RegistryToken is the root of the object graph.
	RegistryToken = container.NewToken[*Registry]("commands")
)

var (
	// ErrUnknownCommand is returned by Execute for an id no contributor
	// registered.
	ErrUnknownCommand = errors.New("contrib: unknown command")

	// ErrDuplicateCommand is returned by Add when the id is already taken.
	ErrDuplicateCommand = errors.New("contrib: duplicate command")
)

// Contributor adds commands to the host registry.
type Contributor interface {
	Contribute(r *Registry) error
}

// ContributorFunc adapts a function to Contributor.
type ContributorFunc func(r *Registry) error

func (f ContributorFunc) Contribute(r *Registry) error { return f(r) }

// Args are the string arguments a command is invoked with.
type Args map[string]string

// Command is a unit of contributed behaviour.
type Command struct {
	ID    string
	Title string
	Rules validation.Rules
	Run   func(ctx context.Context, args Args) (any, error)
}

// ArgumentError reports arguments that failed a command's rules.
type ArgumentError struct {
	Command string
	Errors  *validation.Errors
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("contrib: invalid arguments for %s: %s", e.Command, e.Errors.Error())
}

// Registry holds the contributed commands keyed by id.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry applies every contributor in order and returns the populated
// registry. The first contributor error aborts construction.
func NewRegistry(contributors []Contributor) (*Registry, error) {
	r := &Registry{commands: make(map[string]Command)}
	for _, c := range contributors {
		if err := c.Contribute(r); err != nil {
			return nil, fmt.Errorf("contributor %T: %w", c, err)
		}
	}
	return r, nil
}

// Add registers cmd. Ids are unique across all contributors.
func (r *Registry) Add(cmd Command) error {
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		return errors.New("contrib: command id is empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("contrib: command %s has no Run func", id)
	}
	cmd.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, id)
	}
	r.commands[id] = cmd
	return nil
}

// Get returns the command registered under id.
func (r *Registry) Get(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// List returns all commands sorted by id.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, id := range slices.Sorted(maps.Keys(r.commands)) {
		out = append(out, r.commands[id])
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Execute validates args against the command's rules and runs it.
func (r *Registry) Execute(ctx context.Context, id string, args Args) (any, error) {
	cmd, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	if args == nil {
		args = Args{}
	}
	if len(cmd.Rules) > 0 {
		if v := validation.Make(args, cmd.Rules); v.Fails() {
			return nil, &ArgumentError{Command: id, Errors: v.Errors()}
		}
	}
	return cmd.Run(ctx, args)
}
