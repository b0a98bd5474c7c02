// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// sagaStep is one write in a multi-entity operation with its undo.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error // nil if the step needs no undo
}

// saga executes an ordered list of writes against the store. The store
// gives no cross-document atomicity, so a failure partway leaves earlier
// writes in place; the saga runs each completed step's compensation in
// reverse order to claw them back. If every compensation succeeds the
// caller sees the plain step error. If any compensation fails, the graph
// is inconsistent and a *PartialWriteError names the writes that remain.
type saga struct {
	op    string
	steps []sagaStep
}

// newSaga creates a saga for the named logical operation.
func newSaga(op string) *saga {
	return &saga{op: op}
}

// step appends a write with its compensation. Pass nil for compensate
// when the write is harmless to leave behind.
func (s *saga) step(name string, run, compensate func(ctx context.Context) error) *saga {
	s.steps = append(s.steps, sagaStep{name: name, run: run, compensate: compensate})
	return s
}

// execute runs the steps in order. See the saga type for failure semantics.
func (s *saga) execute(ctx context.Context) error {
	for i, step := range s.steps {
		err := step.run(ctx)
		if err == nil {
			continue
		}

		remaining := s.rollback(ctx, i)
		if len(remaining) > 0 {
			return &PartialWriteError{
				Op:        s.op,
				Completed: remaining,
				Err:       oops.With("failed_step", step.name).Wrap(err),
			}
		}
		return oops.With("operation", s.op).With("failed_step", step.name).Wrap(err)
	}
	return nil
}

// rollback compensates steps [0, failedIdx) in reverse order and returns
// the names of steps whose writes could not be undone.
func (s *saga) rollback(ctx context.Context, failedIdx int) []string {
	var remaining []string
	for i := failedIdx - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			slog.Warn("saga compensation failed",
				"operation", s.op,
				"step", step.name,
				"error", err)
			remaining = append([]string{step.name}, remaining...)
		}
	}
	return remaining
}
