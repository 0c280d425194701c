package identity

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleName identifies a role from the closed enumeration.
type RoleName = string

const (
	// RoleUser is the default role granted on signup.
	RoleUser RoleName = "user"
	// RoleAdmin marks administrative subjects.
	RoleAdmin RoleName = "admin"
)

// KnownRoles returns the closed role enumeration used to seed the role store.
func KnownRoles() []RoleName {
	return []RoleName{RoleUser, RoleAdmin}
}

// ValidRole reports whether name belongs to the closed enumeration.
func ValidRole(name string) bool {
	switch name {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the subject model. The core reads it for authentication and flips
// is_verified once; everything else about the record belongs to the owning
// service.
type User struct {
	bun.BaseModel `bun:"table:users,alias:users"`
	ID            int64     `bun:"user_id,pk,autoincrement" json:"user_id,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	IsVerified    bool      `bun:"is_verified,notnull,default:false" json:"is_verified"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// Role is static reference data, seeded once from KnownRoles.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:roles"`
	ID            int64  `bun:"role_id,pk,autoincrement" json:"role_id,omitempty"`
	Name          string `bun:"role_name,notnull,unique" json:"role_name,omitempty"`
}

// RoleGrant associates a subject with a role. The pair is unique; grants are
// never updated, only removed when the subject goes away.
type RoleGrant struct {
	bun.BaseModel `bun:"table:users_roles,alias:users_roles"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        int64     `bun:"user_id,notnull,unique:users_roles_pair" json:"user_id,omitempty"`
	RoleID        int64     `bun:"role_id,notnull,unique:users_roles_pair" json:"role_id,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// Verification binds a subject to a pending confirmation. At most one live
// token exists per subject, enforced by the unique constraint on user_id.
// Redeemed rows stay in place; validation requires both a matching token
// string and an unexpired expires_at, and replay is caught by checking the
// subject's is_verified flag.
type Verification struct {
	bun.BaseModel `bun:"table:verifications,alias:verifications"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        int64     `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	Token         string    `bun:"token,notnull" json:"token,omitempty"`
	ExpiresAt     time.Time `bun:"expires_at,notnull" json:"expires_at,omitempty"`
}
