package identity

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the narrow subject-store contract the core calls through.
// Constraint violations are translated into the package's named errors at
// this boundary and never leak as raw driver errors.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	SetVerified(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) ([]int64, error)
}

type usersRepo struct {
	db bun.IDB
}

var _ Users = (*usersRepo)(nil)

// NewUsersRepository builds the subject store on top of a bun handle.
func NewUsersRepository(db bun.IDB) Users {
	return &usersRepo{db: db}
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}

	err := r.db.NewSelect().
		Model(record).
		Where("user_id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFound(map[string]any{"user_id": id})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select user by id")
	}

	return record, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}

	err := r.db.NewSelect().
		Model(record).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userNotFound(map[string]any{"email": email})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select user by email")
	}

	return record, nil
}

func (r *usersRepo) Create(ctx context.Context, record *User) (*User, error) {
	_, err := r.db.NewInsert().
		Model(record).
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert user")
	}

	return record, nil
}

func (r *usersRepo) SetVerified(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_verified = ?", true).
		Where("user_id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to mark user verified")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read affected rows")
	}

	if affected == 0 {
		return userNotFound(map[string]any{"user_id": id})
	}

	return nil
}

// DeleteMany removes the given subjects and returns the ids actually
// deleted. Verified subjects are skipped inside the statement itself, so a
// subject confirmed between sweep selection and deletion survives. Partial
// misses are not an error.
func (r *usersRepo) DeleteMany(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var deleted []int64

	_, err := r.db.NewDelete().
		Model((*User)(nil)).
		Where("user_id IN (?)", bun.In(ids)).
		Where("is_verified = ?", false).
		Returning("user_id").
		Exec(ctx, &deleted)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to delete users")
	}

	return deleted, nil
}

func userNotFound(metadata map[string]any) error {
	return errors.New("user not found", errors.CategoryNotFound).
		WithTextCode(TextCodeNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(metadata)
}
