package rbac

import (
	"context"
	"strings"
)

// Policy maps a role to the permission patterns it holds. A pattern ending
// in "*" covers every permission with that prefix.
type Policy map[string][]string

// Allows reports whether role holds perm. Unknown roles hold nothing.
func (p Policy) Allows(role, perm string) bool {
	for _, pattern := range p[role] {
		if grants(pattern, perm) {
			return true
		}
	}
	return false
}

func grants(pattern, perm string) bool {
	if prefix, wild := strings.CutSuffix(pattern, "*"); wild {
		return strings.HasPrefix(perm, prefix)
	}
	return pattern == perm
}

type roleKey struct{}

// WithRole stores the caller's role for Require to check.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
