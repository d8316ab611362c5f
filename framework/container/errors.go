package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateBinding is returned when a single-valued token is
	// registered more than once.
	ErrDuplicateBinding = errors.New("container: duplicate binding")

	// ErrUnresolvedToken is returned when no binding exists for the
	// requested token.
	ErrUnresolvedToken = errors.New("container: unresolved token")

	// ErrCyclicDependency is returned when resolution reenters a binding
	// that is still being constructed. The message includes the full chain.
	ErrCyclicDependency = errors.New("container: cyclic dependency detected")

	// ErrContainerDisposed is returned by every operation after Dispose.
	ErrContainerDisposed = errors.New("container: disposed")

	// ErrNotMultiToken is returned when RegisterMulti is called with a
	// single-valued token.
	ErrNotMultiToken = errors.New("container: token is not multi-valued")

	// ErrAmbiguousBinding is returned when Resolve is called on a plural
	// token that carries more than one binding.
	ErrAmbiguousBinding = errors.New("container: ambiguous binding")

	// ErrSealed is returned when registering after Seal.
	ErrSealed = errors.New("container: sealed for registration")

	// ErrReentrant is returned when Register or Dispose is called from a
	// constructor, factory or callback of a running resolution.
	ErrReentrant = errors.New("container: called during resolution")
)

// ConstructionError wraps an error returned (or a panic raised) while
// building an instance. Chain lists the tokens being resolved at the time of
// failure, outermost first; Token is the last of them.
type ConstructionError struct {
	Token string
	Chain []string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("container: constructing %s (%s): %v", e.Token, strings.Join(e.Chain, " -> "), e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// fromContainer reports whether err already describes a resolution failure
// and must travel up the chain unchanged.
func fromContainer(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce) ||
		errors.Is(err, ErrUnresolvedToken) ||
		errors.Is(err, ErrCyclicDependency) ||
		errors.Is(err, ErrAmbiguousBinding) ||
		errors.Is(err, ErrContainerDisposed) ||
		errors.Is(err, ErrReentrant)
}
