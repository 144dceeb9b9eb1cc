package coi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nashenas88/coi-go"
)

type closeWithError struct {
	closed bool
}

func (c *closeWithError) Close() error {
	c.closed = true
	return nil
}

type closeNoError struct {
	closed bool
}

func (c *closeNoError) Close() {
	c.closed = true
}

func Test_Container_Close_Signatures(t *testing.T) {
	ctx := context.Background()

	t.Run("close with error", func(t *testing.T) {
		c, err := coi.NewContainer(
			coi.Provide(func(context.Context, coi.Scope) (*closeWithError, error) {
				return &closeWithError{}, nil
			}),
		)
		require.NoError(t, err)

		val := coi.MustResolve[*closeWithError](ctx, c)

		require.NoError(t, c.Close(ctx))
		assert.True(t, val.closed)
	})

	t.Run("close without error", func(t *testing.T) {
		c, err := coi.NewContainer(
			coi.Provide(func(context.Context, coi.Scope) (*closeNoError, error) {
				return &closeNoError{}, nil
			}),
		)
		require.NoError(t, err)

		val := coi.MustResolve[*closeNoError](ctx, c)

		require.NoError(t, c.Close(ctx))
		assert.True(t, val.closed)
	})

	t.Run("unresolved values are not closed", func(t *testing.T) {
		built := false
		c, err := coi.NewContainer(
			coi.Provide(func(context.Context, coi.Scope) (*closeWithError, error) {
				built = true
				return &closeWithError{}, nil
			}),
		)
		require.NoError(t, err)

		require.NoError(t, c.Close(ctx))
		assert.False(t, built)
	})
}
