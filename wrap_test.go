package coi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nashenas88/coi-go"
	"github.com/Nashenas88/coi-go/internal/testtypes"
	"github.com/Nashenas88/coi-go/internal/testutils"
)

func Test_Wrap_Errors(t *testing.T) {
	t.Run("nil fn", func(t *testing.T) {
		wrapped, err := coi.Wrap(nil)
		testutils.LogError(t, err)

		assert.Nil(t, wrapped)
		assert.EqualError(t, err, "coi.Wrap: coi.NewHandler: fn is nil")
	})

	t.Run("not a function", func(t *testing.T) {
		wrapped, err := coi.Wrap("not a function")
		testutils.LogError(t, err)

		assert.Nil(t, wrapped)
		assert.ErrorContains(t, err, "fn must be a function")
	})

	t.Run("variadic", func(t *testing.T) {
		wrapped, err := coi.Wrap(func(vals ...int) {})
		testutils.LogError(t, err)

		assert.Nil(t, wrapped)
		assert.ErrorContains(t, err, "variadic functions are not supported")
	})

	t.Run("injected without error return", func(t *testing.T) {
		fn := func(ctx context.Context, svc coi.Injected[testtypes.InterfaceA]) string {
			return ""
		}

		wrapped, err := coi.Wrap(fn)
		testutils.LogError(t, err)

		assert.Nil(t, wrapped)
		assert.ErrorContains(t, err, "fn must return an error")
	})

	t.Run("injected without context parameter", func(t *testing.T) {
		fn := func(id int, svc coi.Injected[testtypes.InterfaceA]) error {
			return nil
		}

		wrapped, err := coi.Wrap(fn)
		testutils.LogError(t, err)

		assert.Nil(t, wrapped)
		assert.ErrorContains(t, err, "fn must accept a context.Context or *http.Request")
	})

	t.Run("must wrap panics", func(t *testing.T) {
		assert.Panics(t, func() {
			coi.MustWrap("not a function")
		})
	})
}

func Test_Wrap_Passthrough(t *testing.T) {
	t.Run("no injected parameters", func(t *testing.T) {
		fn := func(a int, b string) (string, error) {
			return fmt.Sprintf("%d:%s", a, b), nil
		}

		// No container is attached anywhere; the wrapper must not need one.
		wrapped := coi.MustWrap(fn).(func(int, string) (string, error))

		got, err := wrapped(7, "x")
		require.NoError(t, err)

		want, wantErr := fn(7, "x")
		require.NoError(t, wantErr)
		assert.Equal(t, want, got)
	})

	t.Run("no error return", func(t *testing.T) {
		fn := func(x int) int { return x * 2 }

		wrapped := coi.MustWrap(fn).(func(int) int)
		assert.Equal(t, 14, wrapped(7))
	})

	t.Run("no parameters or results", func(t *testing.T) {
		called := false
		fn := func() { called = true }

		wrapped := coi.MustWrap(fn).(func())
		wrapped()
		assert.True(t, called)
	})
}

func Test_Wrap_Injection(t *testing.T) {
	newContext := func(t *testing.T, opts ...coi.ContainerOption) context.Context {
		t.Helper()

		c, err := coi.NewContainer(opts...)
		require.NoError(t, err)

		return coi.WithContainer(context.Background(), c)
	}

	t.Run("single injected parameter", func(t *testing.T) {
		var got testtypes.InterfaceA
		fn := func(ctx context.Context, id int, svc coi.Injected[testtypes.InterfaceA]) (string, error) {
			got = svc.Value
			return fmt.Sprintf("data %d", id), nil
		}

		ctx := newContext(t, coi.Provide(testtypes.ProvideInterfaceA, coi.Scoped))

		wrapped := coi.MustWrap(fn).(func(context.Context, int) (string, error))

		res, err := wrapped(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "data 7", res)
		assert.NotNil(t, got)
	})

	t.Run("argument order is declared order", func(t *testing.T) {
		type call struct {
			a    testtypes.InterfaceA
			id   int
			b    testtypes.InterfaceB
			name string
		}

		var got call
		fn := func(
			a coi.Injected[testtypes.InterfaceA],
			ctx context.Context,
			id int,
			b coi.Injected[testtypes.InterfaceB],
			name string,
		) (string, error) {
			got = call{a: a.Value, id: id, b: b.Value, name: name}
			return fmt.Sprintf("%d:%s", id, name), nil
		}

		ctx := newContext(t,
			coi.Provide(testtypes.ProvideInterfaceA),
			coi.Provide(testtypes.ProvideInterfaceB, coi.Scoped),
		)

		wrapped := coi.MustWrap(fn).(func(context.Context, int, string) (string, error))

		res, err := wrapped(ctx, 7, "x")
		require.NoError(t, err)
		assert.Equal(t, "7:x", res)
		assert.NotNil(t, got.a)
		assert.NotNil(t, got.b)
		assert.Equal(t, 7, got.id)
		assert.Equal(t, "x", got.name)
	})

	t.Run("resolution failure skips the function", func(t *testing.T) {
		calls := 0
		fn := func(ctx context.Context, svc coi.Injected[testtypes.InterfaceA]) (string, error) {
			calls++
			return "unreachable", nil
		}

		ctx := newContext(t) // InterfaceA is not registered

		wrapped := coi.MustWrap(fn).(func(context.Context) (string, error))

		res, err := wrapped(ctx)
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, coi.ErrNotRegistered)
		assert.Empty(t, res)
		assert.Equal(t, 0, calls)
	})

	t.Run("container not attached", func(t *testing.T) {
		calls := 0
		fn := func(ctx context.Context, svc coi.Injected[testtypes.InterfaceA]) (string, error) {
			calls++
			return "unreachable", nil
		}

		wrapped := coi.MustWrap(fn).(func(context.Context) (string, error))

		res, err := wrapped(context.Background())
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, coi.ErrNotAttached)
		assert.Empty(t, res)
		assert.Equal(t, 0, calls)
	})

	t.Run("context from request", func(t *testing.T) {
		var got testtypes.InterfaceA
		fn := func(w http.ResponseWriter, r *http.Request, svc coi.Injected[testtypes.InterfaceA]) error {
			got = svc.Value
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		ctx := newContext(t, coi.Provide(testtypes.ProvideInterfaceA))

		wrapped := coi.MustWrap(fn).(func(http.ResponseWriter, *http.Request) error)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

		err := wrapped(w, r)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.NotNil(t, got)
	})

	t.Run("named injected parameters", func(t *testing.T) {
		fn := func(
			ctx context.Context,
			source coi.Injected[testtypes.InterfaceA],
			destination coi.Injected[testtypes.InterfaceA],
		) (int, int, error) {
			return source.Value.(*testtypes.StructA).Tag, destination.Value.(*testtypes.StructA).Tag, nil
		}

		ctx := newContext(t,
			coi.ProvideValue(testtypes.InterfaceA(&testtypes.StructA{Tag: 1}), coi.WithName("source")),
			coi.ProvideValue(testtypes.InterfaceA(&testtypes.StructA{Tag: 2}), coi.WithName("destination")),
		)

		wrapped := coi.MustWrap(fn,
			coi.WithNamed[testtypes.InterfaceA]("source"),
			coi.WithNamed[testtypes.InterfaceA]("destination"),
		).(func(context.Context) (int, int, error))

		src, dst, err := wrapped(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, src)
		assert.Equal(t, 2, dst)
	})

	t.Run("request scope is closed after the call", func(t *testing.T) {
		var got *testtypes.Closable
		var closedDuringCall bool
		fn := func(ctx context.Context, val coi.Injected[*testtypes.Closable]) error {
			got = val.Value
			closedDuringCall = got.Closed
			return nil
		}

		ctx := newContext(t, coi.Provide(provideClosable, coi.Scoped))

		wrapped := coi.MustWrap(fn).(func(context.Context) error)

		require.NoError(t, wrapped(ctx))
		require.NotNil(t, got)
		assert.False(t, closedDuringCall)
		assert.True(t, got.Closed)
	})
}

func Test_NewHandler(t *testing.T) {
	t.Run("reduced signature", func(t *testing.T) {
		fn := func(ctx context.Context, id int, svc coi.Injected[testtypes.InterfaceA]) (string, error) {
			return "", nil
		}

		h, err := coi.NewHandler(fn)
		require.NoError(t, err)

		want := reflect.TypeFor[func(context.Context, int) (string, error)]()
		assert.Equal(t, want, h.Type())
		assert.Equal(t, 1, h.NumInjected())
	})

	t.Run("with named parameter not found", func(t *testing.T) {
		fn := func(ctx context.Context, svc coi.Injected[testtypes.InterfaceA]) error {
			return nil
		}

		h, err := coi.NewHandler(fn, coi.WithNamed[testtypes.InterfaceB]("missing"))
		testutils.LogError(t, err)

		assert.Nil(t, h)
		assert.ErrorContains(t, err, "injected parameter not found")
	})

	t.Run("call argument count", func(t *testing.T) {
		fn := func(a int, b string) {}

		h, err := coi.NewHandler(fn)
		require.NoError(t, err)

		results, err := h.Call(context.Background(), []any{1})
		testutils.LogError(t, err)

		assert.Nil(t, results)
		assert.EqualError(t, err, "coi.Handler.Call: expected 2 arguments, got 1")
	})
}
