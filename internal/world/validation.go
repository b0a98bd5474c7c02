// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 4000
	MaxCapacity          = 500

	// MinSearchQueryLength is the minimum length of a hero search query.
	MinSearchQueryLength = 2
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a name is valid.
// Names must be non-empty, valid UTF-8, no control characters, and within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateDescription checks that a description is valid.
// Descriptions may be empty, must be valid UTF-8, no control characters
// (except newline/tab), and within length limit.
func ValidateDescription(desc string) error {
	if desc == "" {
		return nil
	}
	if !utf8.ValidString(desc) {
		return &ValidationError{Field: "description", Message: "must be valid UTF-8"}
	}
	if len(desc) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("exceeds maximum length of %d", MaxDescriptionLength)}
	}
	if hasControlCharsExceptWhitespace(desc) {
		return &ValidationError{Field: "description", Message: "cannot contain control characters (except newline/tab)"}
	}
	return nil
}

// ValidateCapacity checks that a seat or occupancy limit is usable.
// Zero means unlimited; negative values are rejected.
func ValidateCapacity(capacity int) error {
	if capacity < 0 {
		return &ValidationError{Field: "capacity", Message: "cannot be negative"}
	}
	if capacity > MaxCapacity {
		return &ValidationError{Field: "capacity", Message: fmt.Sprintf("exceeds maximum of %d", MaxCapacity)}
	}
	return nil
}

// ValidateSearchQuery checks that a hero search query is long enough to
// be meaningful. Surrounding whitespace does not count toward the
// minimum length.
func ValidateSearchQuery(q string) error {
	if len(strings.TrimSpace(q)) < MinSearchQueryLength {
		return &ValidationError{Field: "query", Message: fmt.Sprintf("must be at least %d characters", MinSearchQueryLength)}
	}
	if !utf8.ValidString(q) {
		return &ValidationError{Field: "query", Message: "must be valid UTF-8"}
	}
	return nil
}

// hasControlChars returns true if the string contains control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// hasControlCharsExceptWhitespace returns true if the string contains control
// characters other than newline, carriage return, and tab.
func hasControlCharsExceptWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return true
		}
	}
	return false
}
