package identity

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Verifications is the store contract for pending email confirmations.
type Verifications interface {
	Insert(ctx context.Context, record *Verification) (*Verification, error)
	GetValid(ctx context.Context, token string, now time.Time) (*Verification, error)
	ExpiredSubjectIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
	Truncate(ctx context.Context) error
}

type verificationsRepo struct {
	db bun.IDB
}

var _ Verifications = (*verificationsRepo)(nil)

// NewVerificationsRepository builds the verification store on a bun handle.
func NewVerificationsRepository(db bun.IDB) Verifications {
	return &verificationsRepo{db: db}
}

// Insert persists a pending verification. The unique constraint on user_id
// enforces at-most-one-live-token-per-subject; a second insert for the same
// subject fails with ErrVerificationPending regardless of which concurrent
// caller got there first.
func (r *verificationsRepo) Insert(ctx context.Context, record *Verification) (*Verification, error) {
	_, err := r.db.NewInsert().
		Model(record).
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrVerificationPending
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert verification")
	}

	return record, nil
}

// GetValid looks a token up by its opaque string AND a still-future expiry.
// Expired-but-unconsumed rows are indistinguishable from absent ones:
// fail closed.
func (r *verificationsRepo) GetValid(ctx context.Context, token string, now time.Time) (*Verification, error) {
	record := &Verification{}

	err := r.db.NewSelect().
		Model(record).
		Where("token = ?", token).
		Where("expires_at >= ?", now).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("verification token not found", errors.CategoryNotFound).
				WithTextCode(TextCodeNotFound).
				WithCode(errors.CodeNotFound)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select verification")
	}

	return record, nil
}

// ExpiredSubjectIDs returns subjects whose token lapsed before the cutoff
// and who never confirmed. An empty result is a normal outcome.
func (r *verificationsRepo) ExpiredSubjectIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64

	err := r.db.NewSelect().
		Model((*Verification)(nil)).
		ColumnExpr("verifications.user_id").
		Join("JOIN users AS usr ON usr.user_id = verifications.user_id").
		Where("verifications.expires_at < ?", cutoff).
		Where("usr.is_verified = ?", false).
		Scan(ctx, &ids)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select expired verifications")
	}

	return ids, nil
}

// Truncate clears the verification table. Intended for seeding and tests.
func (r *verificationsRepo) Truncate(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*Verification)(nil)).
		Where("1 = 1").
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to truncate verifications")
	}

	return nil
}
