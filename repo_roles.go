package identity

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Roles is the narrow role-store contract: static role lookups plus the
// subject-role grants created at signup or promotion time.
type Roles interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	RolesFor(ctx context.Context, userID int64) ([]string, error)
	Grant(ctx context.Context, userID, roleID int64) error
	Seed(ctx context.Context) error
}

// ErrRoleAlreadyGranted signals a duplicate subject-role pair. Callers
// usually treat it as success.
var ErrRoleAlreadyGranted = errors.New("role already granted", errors.CategoryConflict).
	WithCode(errors.CodeConflict)

type rolesRepo struct {
	db bun.IDB
}

var _ Roles = (*rolesRepo)(nil)

// NewRolesRepository builds the role store on top of a bun handle.
func NewRolesRepository(db bun.IDB) Roles {
	return &rolesRepo{db: db}
}

func (r *rolesRepo) GetByName(ctx context.Context, name string) (*Role, error) {
	record := &Role{}

	err := r.db.NewSelect().
		Model(record).
		Where("role_name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("role not found", errors.CategoryNotFound).
				WithTextCode(TextCodeNotFound).
				WithCode(errors.CodeNotFound).
				WithMetadata(map[string]any{"role_name": name})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select role")
	}

	return record, nil
}

// RolesFor returns the subject's current role names. It is queried once per
// login or refresh; the result is embedded into the issued credential, so
// role changes only take effect on the next issuance.
func (r *rolesRepo) RolesFor(ctx context.Context, userID int64) ([]string, error) {
	var names []string

	err := r.db.NewSelect().
		Model((*RoleGrant)(nil)).
		ColumnExpr("rol.role_name").
		Join("JOIN roles AS rol ON rol.role_id = users_roles.role_id").
		Where("users_roles.user_id = ?", userID).
		OrderExpr("rol.role_name ASC").
		Scan(ctx, &names)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select roles for user")
	}

	return names, nil
}

func (r *rolesRepo) Grant(ctx context.Context, userID, roleID int64) error {
	grant := &RoleGrant{UserID: userID, RoleID: roleID}

	_, err := r.db.NewInsert().
		Model(grant).
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoleAlreadyGranted
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to insert role grant")
	}

	return nil
}

// Seed inserts the closed role enumeration, skipping names that already
// exist. It is safe to run on every startup.
func (r *rolesRepo) Seed(ctx context.Context) error {
	for _, name := range KnownRoles() {
		role := &Role{Name: name}

		_, err := r.db.NewInsert().
			Model(role).
			On("CONFLICT (role_name) DO NOTHING").
			Exec(ctx)

		if err != nil && !isUniqueViolation(err) {
			return errors.Wrap(err, errors.CategoryInternal, "failed to seed role")
		}
	}

	return nil
}
