package container_test

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/km-arc/go-extkit/framework/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Scopes ────────────────────────────────────────────────────────────────────

func TestResolve_SingletonIsShared(t *testing.T) {
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{Prefix: "app"}))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))

	s1, err := container.Resolve(c, serviceTok)
	require.NoError(t, err)
	s2, err := container.Resolve(c, serviceTok)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, "app", s1.Logger.Prefix)
}

func TestResolve_TransientIsFresh(t *testing.T) {
	calls := 0
	c := container.New()
	mustRegister(t, c, loggerTok, container.Factory(func(container.Resolver) (*testLogger, error) {
		calls++
		return &testLogger{}, nil
	}), container.WithScope(container.Transient))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)), container.WithScope(container.Transient))

	s1, err := container.Resolve(c, serviceTok)
	require.NoError(t, err)
	s2, err := container.Resolve(c, serviceTok)
	require.NoError(t, err)

	assert.NotSame(t, s1, s2)
	assert.NotSame(t, s1.Logger, s2.Logger, "transient dependencies get a fresh sub-walk")
	assert.Equal(t, 2, calls)
}

func TestResolve_ValueIgnoresTransientScope(t *testing.T) {
	l := &testLogger{}
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(l), container.WithScope(container.Transient))

	got, err := container.Resolve(c, loggerTok)
	require.NoError(t, err)
	assert.Same(t, l, got)
}

// ── Multi-bindings ────────────────────────────────────────────────────────────

func TestResolveAll_RegistrationOrder(t *testing.T) {
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{}))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))
	for id := 1; id <= 3; id++ {
		mustRegisterMulti(t, c, contributorTok, container.Class1(newTestContributor(id), container.One(serviceTok)))
	}

	got, err := container.ResolveAll(c, contributorTok)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, ct := range got {
		assert.Equal(t, i+1, ct.ID)
	}
}

func TestResolveAll_Empty(t *testing.T) {
	c := container.New()

	got, err := container.ResolveAll(c, contributorTok)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolveAll_SingleToken(t *testing.T) {
	l := &testLogger{}
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(l))

	got, err := container.ResolveAll(c, loggerTok)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, l, got[0])
}

func TestResolve_MultiToken(t *testing.T) {
	c := container.New()
	tok := container.NewMultiToken[int]("numbers")

	_, err := container.Resolve(c, tok)
	require.ErrorIs(t, err, container.ErrUnresolvedToken)

	mustRegisterMulti(t, c, tok, container.Value(1))
	got, err := container.Resolve(c, tok)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	mustRegisterMulti(t, c, tok, container.Value(2))
	_, err = container.Resolve(c, tok)
	require.ErrorIs(t, err, container.ErrAmbiguousBinding)
}

func TestResolve_PluralDependency(t *testing.T) {
	type host struct{ Contributors []*testContributor }
	hostTok := container.NewToken[*host]("host")

	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{}))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))
	mustRegisterMulti(t, c, contributorTok, container.Class1(newTestContributor(1), container.One(serviceTok)))
	mustRegisterMulti(t, c, contributorTok, container.Class1(newTestContributor(2), container.One(serviceTok)))
	mustRegister(t, c, hostTok, container.Class1(func(cs []*testContributor) (*host, error) {
		return &host{Contributors: cs}, nil
	}, container.All(contributorTok)))

	h, err := container.Resolve(c, hostTok)
	require.NoError(t, err)
	require.Len(t, h.Contributors, 2)
	assert.Equal(t, 1, h.Contributors[0].ID)
	assert.Equal(t, 2, h.Contributors[1].ID)
}

// Logger is a singleton constant, Service a singleton class depending on it,
// Contributor two multi-bindings depending on Service.
func TestResolveAll_SharedGraph(t *testing.T) {
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{Prefix: "app"}))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))
	mustRegisterMulti(t, c, contributorTok, container.Class1(newTestContributor(1), container.One(serviceTok)))
	mustRegisterMulti(t, c, contributorTok, container.Class1(newTestContributor(2), container.One(serviceTok)))

	got, err := container.ResolveAll(c, contributorTok)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.NotSame(t, got[0], got[1])
	assert.Same(t, got[0].Service, got[1].Service)
	assert.Same(t, got[0].Service.Logger, got[1].Service.Logger)

	logger := container.MustResolve(c, loggerTok)
	assert.Same(t, logger, got[0].Service.Logger)
}

// ── Manifests ─────────────────────────────────────────────────────────────────

func TestResolve_ClassArgs(t *testing.T) {
	type pair struct {
		Logger *testLogger
		Extra  []*testContributor
	}
	pairTok := container.NewToken[*pair]("pair")

	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{Prefix: "x"}))
	mustRegister(t, c, pairTok, container.Class(func(a container.Args) (*pair, error) {
		return &pair{
			Logger: container.Arg[*testLogger](a, 0),
			Extra:  container.Arg[[]*testContributor](a, 1),
		}, nil
	}, container.One(loggerTok), container.All(contributorTok)))

	p, err := container.Resolve(c, pairTok)
	require.NoError(t, err)
	assert.Equal(t, "x", p.Logger.Prefix)
	assert.Empty(t, p.Extra)
}

func TestResolve_Class2Class3(t *testing.T) {
	nameTok := container.NewToken[string]("name")
	portTok := container.NewToken[int]("port")
	addrTok := container.NewToken[string]("addr")
	urlTok := container.NewToken[string]("url")

	c := container.New()
	mustRegister(t, c, nameTok, container.Value("localhost"))
	mustRegister(t, c, portTok, container.Value(8000))
	mustRegister(t, c, addrTok, container.Class2(func(host string, port int) (string, error) {
		return host + ":" + strconv.Itoa(port), nil
	}, container.One(nameTok), container.One(portTok)))
	mustRegister(t, c, urlTok, container.Class3(func(addr, host string, port int) (string, error) {
		return "http://" + addr, nil
	}, container.One(addrTok), container.One(nameTok), container.One(portTok)))

	got, err := container.Resolve(c, urlTok)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", got)
}

func TestResolve_FactoryUsesScopedResolver(t *testing.T) {
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{Prefix: "f"}))
	mustRegister(t, c, serviceTok, container.Factory(func(r container.Resolver) (*testService, error) {
		l, err := container.Resolve(r, loggerTok)
		if err != nil {
			return nil, err
		}
		return &testService{Logger: l}, nil
	}))

	s, err := container.Resolve(c, serviceTok)
	require.NoError(t, err)
	assert.Equal(t, "f", s.Logger.Prefix)
}

// ── Failures ──────────────────────────────────────────────────────────────────

func TestResolve_Unresolved(t *testing.T) {
	c := container.New()
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))

	_, err := container.Resolve(c, loggerTok)
	require.ErrorIs(t, err, container.ErrUnresolvedToken)

	s, err := container.Resolve(c, serviceTok)
	require.ErrorIs(t, err, container.ErrUnresolvedToken)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "logger (required by service)")

	var ce *container.ConstructionError
	assert.False(t, errors.As(err, &ce), "missing bindings are not construction failures")
}

func TestResolve_Cycles(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		type node struct{ Next *node }
		tok := container.NewToken[*node]("self")
		c := container.New()
		mustRegister(t, c, tok, container.Class1(func(n *node) (*node, error) {
			return &node{Next: n}, nil
		}, container.One(tok)))

		_, err := container.Resolve(c, tok)
		require.ErrorIs(t, err, container.ErrCyclicDependency)
		assert.Contains(t, err.Error(), "self -> self")
	})

	t.Run("mutual reference", func(t *testing.T) {
		c := container.New()
		mustRegister(t, c, circATok, container.Class1(newTestCircA, container.One(circBTok)))
		mustRegister(t, c, circBTok, container.Class1(newTestCircB, container.One(circATok)))

		_, err := container.Resolve(c, circBTok)
		require.ErrorIs(t, err, container.ErrCyclicDependency)
		assert.Contains(t, err.Error(), "b -> a -> b")

		_, err = container.Resolve(c, circATok)
		require.ErrorIs(t, err, container.ErrCyclicDependency)
	})

	t.Run("transient through singleton", func(t *testing.T) {
		c := container.New()
		mustRegister(t, c, circATok, container.Class1(newTestCircA, container.One(circBTok)), container.WithScope(container.Transient))
		mustRegister(t, c, circBTok, container.Class1(newTestCircB, container.One(circATok)))

		_, err := container.Resolve(c, circATok)
		require.ErrorIs(t, err, container.ErrCyclicDependency)
	})

	t.Run("through factory", func(t *testing.T) {
		c := container.New()
		mustRegister(t, c, circATok, container.Class1(newTestCircA, container.One(circBTok)))
		mustRegister(t, c, circBTok, container.Factory(func(r container.Resolver) (*testCircB, error) {
			a, err := container.Resolve(r, circATok)
			if err != nil {
				return nil, err
			}
			return &testCircB{A: a}, nil
		}))

		_, err := container.Resolve(c, circATok)
		require.ErrorIs(t, err, container.ErrCyclicDependency)
	})

	t.Run("plural member depending on its own token", func(t *testing.T) {
		tok := container.NewMultiToken[int]("greedy")
		c := container.New()
		mustRegisterMulti(t, c, tok, container.Class1(func(all []int) (int, error) {
			return len(all), nil
		}, container.All(tok)))

		_, err := container.ResolveAll(c, tok)
		require.ErrorIs(t, err, container.ErrCyclicDependency)
	})
}

func TestResolve_ConstructionError(t *testing.T) {
	cause := errors.New("dial failed")

	c := container.New()
	mustRegister(t, c, loggerTok, container.Factory(func(container.Resolver) (*testLogger, error) {
		return nil, cause
	}))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))
	mustRegisterMulti(t, c, contributorTok, container.Class1(newTestContributor(1), container.One(serviceTok)))

	got, err := container.ResolveAll(c, contributorTok)
	require.Error(t, err)
	assert.Nil(t, got)
	require.ErrorIs(t, err, cause)

	var ce *container.ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "logger", ce.Token)
	assert.Equal(t, []string{"contributor", "service", "logger"}, ce.Chain)
	assert.Contains(t, err.Error(), "contributor -> service -> logger")
}

func TestResolve_PanicBecomesConstructionError(t *testing.T) {
	c := container.New()
	mustRegister(t, c, serviceTok, container.Factory(func(container.Resolver) (*testService, error) {
		panic("bad wiring")
	}))

	_, err := container.Resolve(c, serviceTok)
	var ce *container.ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "service", ce.Token)
	assert.Contains(t, ce.Err.Error(), "bad wiring")
}

func TestResolve_FailureKeepsEarlierSingletons(t *testing.T) {
	fail := true
	c := container.New()
	mustRegister(t, c, loggerTok, container.Factory(func(container.Resolver) (*testLogger, error) {
		return &testLogger{}, nil
	}))
	mustRegister(t, c, serviceTok, container.Class1(func(l *testLogger) (*testService, error) {
		if fail {
			return nil, errors.New("not yet")
		}
		return &testService{Logger: l}, nil
	}, container.One(loggerTok)))

	_, err := container.Resolve(c, serviceTok)
	require.Error(t, err)
	assert.True(t, c.Resolved(loggerTok), "dependency built before the failure stays cached")
	assert.False(t, c.Resolved(serviceTok))

	logger, err := container.Resolve(c, loggerTok)
	require.NoError(t, err)

	fail = false
	svc, err := container.Resolve(c, serviceTok)
	require.NoError(t, err)
	assert.Same(t, logger, svc.Logger)
}

func TestMustResolve_Panics(t *testing.T) {
	c := container.New()
	assert.Panics(t, func() { container.MustResolve(c, loggerTok) })
}

// ── Concurrency ───────────────────────────────────────────────────────────────

func TestResolve_ConcurrentSingleton(t *testing.T) {
	c := container.New()
	mustRegister(t, c, loggerTok, container.Value(&testLogger{}))
	mustRegister(t, c, serviceTok, container.Class1(newTestService, container.One(loggerTok)))

	const n = 32
	results := make([]*testService, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = container.MustResolve(c, serviceTok)
		}()
	}
	wg.Wait()

	for _, s := range results[1:] {
		assert.Same(t, results[0], s)
	}
}
