// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package access

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Controller implements world.AccessControl with static role
// definitions and glob permission patterns.
//
// Thread-safety: roles is immutable after construction. Only subjects
// is mutable and protected by mu.
type Controller struct {
	roles       map[string][]compiledPermission
	defaultRole string
	subjects    map[string]string // subject → role, overrides defaultRole
	mu          sync.RWMutex      // protects subjects only
}

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// NewController creates a Controller with the default roles. Hero
// subjects without an explicit role assignment act as "hero".
//
// Panics if default roles contain invalid permission patterns
// (configuration bug).
func NewController() *Controller {
	c, err := NewControllerWithRoles(DefaultRoles(), "hero")
	if err != nil {
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return c
}

// NewControllerWithRoles creates a Controller with custom roles.
// defaultRole is the role applied to hero subjects with no explicit
// assignment; pass "" to deny unknown subjects.
//
// Returns an error if any permission pattern fails to compile.
func NewControllerWithRoles(roles map[string][]string, defaultRole string) (*Controller, error) {
	compiledRoles := make(map[string][]compiledPermission, len(roles))
	for role, perms := range roles {
		compiled := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			g, err := glob.Compile(p, ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			compiled = append(compiled, compiledPermission{pattern: p, glob: g})
		}
		compiledRoles[role] = compiled
	}

	return &Controller{
		roles:       compiledRoles,
		defaultRole: defaultRole,
		subjects:    make(map[string]string),
	}, nil
}

// AssignRole binds a subject to a role, overriding the default.
func (c *Controller) AssignRole(subject, role string) error {
	if _, ok := c.roles[role]; !ok {
		return oops.In("access").Code("UNKNOWN_ROLE").With("role", role).Errorf("role %q is not defined", role)
	}
	c.mu.Lock()
	c.subjects[subject] = role
	c.mu.Unlock()
	return nil
}

// Check returns true if subject may perform action on resource.
// Unknown prefixes are denied.
func (c *Controller) Check(_ context.Context, subject, action, resource string) bool {
	if subject == "" {
		return false
	}

	prefix, _ := ParseSubject(subject)
	switch prefix {
	case "system":
		// Internal callers (seeder, lifecycle jobs) bypass role checks.
		return true
	case "hero":
		return c.checkRole(subject, action, resource)
	default:
		return false
	}
}

// checkRole checks if the subject's role allows the action on resource.
func (c *Controller) checkRole(subject, action, resource string) bool {
	c.mu.RLock()
	role := c.subjects[subject]
	c.mu.RUnlock()

	if role == "" {
		role = c.defaultRole
	}
	permissions := c.roles[role]
	if permissions == nil {
		return false
	}

	requested := action + ":" + resource
	_, subjectID := ParseSubject(subject)

	for _, perm := range permissions {
		resolved := resolveTokens(perm.pattern, subjectID)
		if resolved != perm.pattern {
			g, err := glob.Compile(resolved, ':')
			if err != nil {
				slog.Warn("failed to compile resolved permission pattern",
					"subject", subject,
					"pattern", perm.pattern,
					"resolved", resolved,
					"error", err)
				continue
			}
			if g.Match(requested) {
				return true
			}
		} else if perm.glob.Match(requested) {
			return true
		}
	}
	return false
}

// resolveTokens replaces $self with the subject's own id.
func resolveTokens(pattern, subjectID string) string {
	return strings.ReplaceAll(pattern, "$self", subjectID)
}
