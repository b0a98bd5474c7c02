// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

// Package access provides authorization for Gridtown.
//
// All parameters use prefixed string format:
//   - subject: "hero:01ABC", "system:seeder"
//   - action: "read", "write", "delete"
//   - resource: "room:01ABC", "organization:*"
//
// Checks are evaluated fresh on every call; nothing is cached across
// requests.
package access

import "strings"

// Subject prefixes.
const (
	SubjectHero   = "hero:"
	SubjectSystem = "system:"
)

// HeroSubject formats a hero id as a subject string.
func HeroSubject(id string) string {
	return SubjectHero + id
}

// ParseSubject splits a subject string into prefix and ID.
// Returns ("", subject) if no colon separator is found.
func ParseSubject(subject string) (prefix, id string) {
	if subject == "" {
		return "", ""
	}
	parts := strings.SplitN(subject, ":", 2)
	if len(parts) == 1 {
		return "", subject
	}
	return parts[0], parts[1]
}
