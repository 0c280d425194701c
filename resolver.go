package identity

import (
	"context"
)

// RoleResolver maps subjects to their granted roles and checks requested
// scopes against them. Scope matching is flat set membership; there is no
// hierarchy or inheritance.
type RoleResolver struct {
	roles  Roles
	logger Logger
}

// NewRoleResolver builds a resolver over the role store.
func NewRoleResolver(roles Roles) *RoleResolver {
	return &RoleResolver{
		roles:  roles,
		logger: defLogger{},
	}
}

func (r *RoleResolver) WithLogger(logger Logger) *RoleResolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// RolesOf returns the subject's current role names. Callers embed the
// result into issued credentials instead of re-querying per request, so a
// role change never applies retroactively to a live token.
func (r *RoleResolver) RolesOf(ctx context.Context, subjectID int64) ([]string, error) {
	return r.roles.RolesFor(ctx, subjectID)
}

// Authorize reports whether every required scope is present in the token's
// roles. An empty requirement authorizes any valid token.
func (r *RoleResolver) Authorize(tokenRoles, requiredScopes []string) bool {
	return HasScopes(tokenRoles, requiredScopes)
}

// HasScopes is the scope check itself, usable without a resolver.
func HasScopes(tokenRoles, requiredScopes []string) bool {
	if len(requiredScopes) == 0 {
		return true
	}

	granted := make(map[string]struct{}, len(tokenRoles))
	for _, role := range tokenRoles {
		granted[role] = struct{}{}
	}

	for _, scope := range requiredScopes {
		if _, ok := granted[scope]; !ok {
			return false
		}
	}

	return true
}
