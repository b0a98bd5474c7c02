// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package access

// Permission groups define reusable sets of permissions.
// Roles compose these groups rather than inheriting.

var heroPowers = []string{
	// The world is browsable by any signed-in hero.
	"read:**",

	// Self access: a hero moves and updates only its own record.
	"write:hero:$self",

	// Collaborative world building: members create and edit entities.
	"create:**",
	"write:organization:*",
	"write:building:*",
	"write:room:*",
	"write:table:*",
	"write:road:*",
	"write:dialog:*",
}

var moderatorPowers = []string{
	"delete:organization:*",
	"delete:building:*",
	"delete:room:*",
	"delete:table:*",
	"delete:dialog:*",
}

var adminPowers = []string{
	"read:**",
	"create:**",
	"write:**",
	"delete:**",
}

// DefaultRoles returns the default role definitions.
// Roles compose permission groups explicitly (no inheritance).
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"hero":      heroPowers,
		"moderator": compose(heroPowers, moderatorPowers),
		"admin":     compose(heroPowers, moderatorPowers, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
