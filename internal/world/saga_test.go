// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga(t *testing.T) {
	ctx := context.Background()

	t.Run("runs steps in order", func(t *testing.T) {
		var order []string
		sg := newSaga("test").
			step("one", func(context.Context) error {
				order = append(order, "one")
				return nil
			}, nil).
			step("two", func(context.Context) error {
				order = append(order, "two")
				return nil
			}, nil)

		require.NoError(t, sg.execute(ctx))
		assert.Equal(t, []string{"one", "two"}, order)
	})

	t.Run("compensates completed steps in reverse order", func(t *testing.T) {
		var order []string
		boom := errors.New("boom")
		sg := newSaga("test").
			step("one", func(context.Context) error { return nil },
				func(context.Context) error {
					order = append(order, "undo one")
					return nil
				}).
			step("two", func(context.Context) error { return nil },
				func(context.Context) error {
					order = append(order, "undo two")
					return nil
				}).
			step("three", func(context.Context) error { return boom }, nil)

		err := sg.execute(ctx)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"undo two", "undo one"}, order)

		var partialErr *PartialWriteError
		assert.False(t, errors.As(err, &partialErr))
	})

	t.Run("skips nil compensations", func(t *testing.T) {
		sg := newSaga("test").
			step("one", func(context.Context) error { return nil }, nil).
			step("two", func(context.Context) error { return errors.New("boom") }, nil)

		err := sg.execute(ctx)
		require.Error(t, err)
		var partialErr *PartialWriteError
		assert.False(t, errors.As(err, &partialErr))
	})

	t.Run("reports uncompensated steps as a partial write", func(t *testing.T) {
		boom := errors.New("boom")
		sg := newSaga("seat hero").
			step("reserve", func(context.Context) error { return nil },
				func(context.Context) error { return errors.New("undo failed") }).
			step("occupy", func(context.Context) error { return boom }, nil)

		err := sg.execute(ctx)
		var partialErr *PartialWriteError
		require.ErrorAs(t, err, &partialErr)
		assert.Equal(t, "seat hero", partialErr.Op)
		assert.Equal(t, []string{"reserve"}, partialErr.Completed)
		assert.ErrorIs(t, err, boom)
	})
}
