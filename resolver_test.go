package identity_test

import (
	"context"
	"testing"

	"github.com/ashkov/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasScopes(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		required []string
		want     bool
	}{
		{"empty requirement always authorizes", []string{"user"}, nil, true},
		{"empty requirement with no roles", nil, nil, true},
		{"single match", []string{"admin"}, []string{"admin"}, true},
		{"subset match", []string{"admin", "user"}, []string{"user"}, true},
		{"all required present", []string{"admin", "user"}, []string{"admin", "user"}, true},
		{"missing scope", []string{"user"}, []string{"admin"}, false},
		{"partially missing", []string{"user"}, []string{"user", "admin"}, false},
		{"no roles at all", nil, []string{"user"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, identity.HasScopes(tc.roles, tc.required))
		})
	}
}

func TestRoleResolverRolesOf(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, repo.Roles().Seed(ctx))
	user := mustCreateUser(t, repo, "a@x.com", false)

	resolver := identity.NewRoleResolver(repo.Roles())

	roles, err := resolver.RolesOf(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)

	admin, err := repo.Roles().GetByName(ctx, identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Roles().Grant(ctx, user.ID, admin.ID))

	member, err := repo.Roles().GetByName(ctx, identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, repo.Roles().Grant(ctx, user.ID, member.ID))

	roles, err = resolver.RolesOf(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, roles)
}

func TestValidRole(t *testing.T) {
	assert.True(t, identity.ValidRole(identity.RoleAdmin))
	assert.True(t, identity.ValidRole(identity.RoleUser))
	assert.False(t, identity.ValidRole("superadmin"))
	assert.False(t, identity.ValidRole(""))
}
