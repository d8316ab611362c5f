package container

import "reflect"

// key is the identity behind a Token. Two tokens are equal only when they
// share the same key pointer; the name is for diagnostics.
type key struct {
	name  string
	multi bool
}

func (k *key) String() string {
	if k == nil {
		return "<zero token>"
	}
	return k.name
}

// Key is the untyped view of a Token, used by introspection helpers such as
// [Container.Bound] and [Container.Resolved].
type Key interface {
	String() string
	id() *key
}

// Token identifies an abstract capability of type T.
//
// Tokens are compared by identity, never by name:
//
//	var LoggerToken = container.NewToken[*zap.Logger]("logger")
//	var Other = container.NewToken[*zap.Logger]("logger") // a different token
type Token[T any] struct {
	k *key
}

// NewToken returns a single-valued token. An empty name defaults to the
// type name of T.
func NewToken[T any](name string) Token[T] {
	return Token[T]{k: &key{name: tokenName[T](name)}}
}

// NewMultiToken returns a plural token. Bindings registered under it
// accumulate in registration order and are collected with [ResolveAll].
//
//	var ContributorToken = container.NewMultiToken[Contributor]("contributor")
func NewMultiToken[T any](name string) Token[T] {
	return Token[T]{k: &key{name: tokenName[T](name), multi: true}}
}

// Name returns the diagnostic name of the token.
func (t Token[T]) Name() string {
	if t.k == nil {
		return ""
	}
	return t.k.name
}

// Multi reports whether the token accepts multiple bindings.
func (t Token[T]) Multi() bool { return t.k != nil && t.k.multi }

func (t Token[T]) String() string { return t.Name() }

func (t Token[T]) id() *key { return t.k }

func tokenName[T any](name string) string {
	if name != "" {
		return name
	}
	return reflect.TypeFor[T]().String()
}
