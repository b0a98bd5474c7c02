// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

// Package postgres implements the world repositories using PostgreSQL.
//
// Containment and occupant lists are TEXT[] columns on the parent row,
// written back whole on update (read-modify-write, last-write-wins).
// This mirrors the document-per-entity model the service layer assumes:
// each row write is atomic, multi-row operations are not.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// poolIface abstracts query execution so pgxmock can stand in for
// *pgxpool.Pool in unit tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL
// parameters. Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer.
// Returns nil if the input is nil. Wraps parse errors with the field
// name for context.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}

// ulidsToStrings converts a ULID slice to the string slice pgx writes
// as TEXT[].
func ulidsToStrings(ids []ulid.ULID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// parseULIDs parses a TEXT[] column back into ULIDs.
func parseULIDs(strs []string, fieldName string) ([]ulid.ULID, error) {
	out := make([]ulid.ULID, 0, len(strs))
	for _, s := range strs {
		id, err := ulid.Parse(s)
		if err != nil {
			return nil, oops.With("operation", "parse "+fieldName).With(fieldName, s).Wrap(err)
		}
		out = append(out, id)
	}
	return out, nil
}

// escapeLike escapes the LIKE metacharacters in a user-supplied string
// so it only matches as a literal substring. Must be paired with an
// ESCAPE '\' clause.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
