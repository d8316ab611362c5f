package container_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-extkit/framework/container"
	"github.com/stretchr/testify/require"
)

// Shared test types, tokens and constructors used across test files.

type testLogger struct{ Prefix string }

type testService struct{ Logger *testLogger }

type testContributor struct {
	ID      int
	Service *testService
}

type testCircA struct{ B *testCircB }
type testCircB struct{ A *testCircA }

var (
	loggerTok      = container.NewToken[*testLogger]("logger")
	serviceTok     = container.NewToken[*testService]("service")
	contributorTok = container.NewMultiToken[*testContributor]("contributor")
	circATok       = container.NewToken[*testCircA]("a")
	circBTok       = container.NewToken[*testCircB]("b")
)

func newTestService(l *testLogger) (*testService, error) {
	return &testService{Logger: l}, nil
}

func newTestContributor(id int) func(*testService) (*testContributor, error) {
	return func(s *testService) (*testContributor, error) {
		return &testContributor{ID: id, Service: s}, nil
	}
}

func newTestCircA(b *testCircB) (*testCircA, error) { return &testCircA{B: b}, nil }
func newTestCircB(a *testCircA) (*testCircB, error) { return &testCircB{A: a}, nil }

// mustRegister calls t.Fatal if registration fails.
func mustRegister[T any](t *testing.T, c *container.Container, tok container.Token[T], b container.Binding[T], opts ...container.Option) {
	t.Helper()
	require.NoError(t, container.Register(c, tok, b, opts...))
}

// mustRegisterMulti calls t.Fatal if multi registration fails.
func mustRegisterMulti[T any](t *testing.T, c *container.Container, tok container.Token[T], b container.Binding[T], opts ...container.Option) {
	t.Helper()
	require.NoError(t, container.RegisterMulti(c, tok, b, opts...))
}

// testClosable is an io.Closer that records the close order in a shared slice.
type testClosable struct {
	Name   string
	Closes int
	Order  *[]string
	Fail   bool
}

func (c *testClosable) Close() error {
	c.Closes++
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	if c.Fail {
		return errors.New("close failed: " + c.Name)
	}
	return nil
}

// testDisposable implements container.Disposable.
type testDisposable struct {
	Disposed int
	Order    *[]string
}

func (d *testDisposable) Dispose() error {
	d.Disposed++
	if d.Order != nil {
		*d.Order = append(*d.Order, "disposable")
	}
	return nil
}

func closable(name string, order *[]string) container.Binding[*testClosable] {
	return container.Factory(func(container.Resolver) (*testClosable, error) {
		return &testClosable{Name: name, Order: order}, nil
	})
}
