// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a uniqueness constraint is violated,
// most notably the one-hero-per-user rule.
var ErrAlreadyExists = errors.New("already exists")

// ErrCapacityExceeded is returned when joining a full table or room.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrPermissionDenied is returned when an operation is not authorized.
var ErrPermissionDenied = errors.New("permission denied")

// PartialWriteError reports a multi-entity write that failed partway and
// could not be fully compensated. The world graph may be inconsistent:
// some documents listed in Completed were written and remain written.
type PartialWriteError struct {
	Op        string   // logical operation, e.g. "create room"
	Completed []string // names of steps whose writes remain in place
	Err       error    // the step failure that aborted the operation
}

// Error implements the error interface.
func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write in %s (completed: %s): %v",
		e.Op, strings.Join(e.Completed, ", "), e.Err)
}

// Unwrap returns the underlying step failure.
func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
