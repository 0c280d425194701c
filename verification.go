package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// verificationTokenBytes is the entropy of a verification token (256 bits).
const verificationTokenBytes = 32

// VerificationManager drives the per-subject confirmation lifecycle:
// none -> pending (token issued) -> confirmed, or expired and swept.
type VerificationManager struct {
	repo   RepositoryManager
	ttl    time.Duration
	logger Logger
}

// NewVerificationManager builds a manager with the configured token TTL.
func NewVerificationManager(repo RepositoryManager, cfg Config) *VerificationManager {
	return &VerificationManager{
		repo:   repo,
		ttl:    cfg.VerificationTTL,
		logger: defLogger{},
	}
}

func (m *VerificationManager) WithLogger(logger Logger) *VerificationManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Issue creates a pending verification for the subject. If a live token
// already exists the store rejects the insert and Issue fails with
// ErrVerificationPending; callers should treat that as already-pending.
func (m *VerificationManager) Issue(ctx context.Context, subjectID int64) (*Verification, error) {
	token, err := generateVerificationToken()
	if err != nil {
		return nil, err
	}

	record := &Verification{
		UserID:    subjectID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(m.ttl),
	}

	record, err = m.repo.Verifications().Insert(ctx, record)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("verification issued for user %d, expires %s", subjectID, record.ExpiresAt)

	return record, nil
}

// Redeem consumes a verification token and flips the subject to verified.
// Unknown and expired tokens both fail as not-found; a replay after a
// successful redeem fails with ErrAlreadyVerified, caught on the subject's
// is_verified flag rather than by deleting the token row.
func (m *VerificationManager) Redeem(ctx context.Context, token string) (int64, error) {
	record, err := m.repo.Verifications().GetValid(ctx, token, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	user, err := m.repo.Users().GetByID(ctx, record.UserID)
	if err != nil {
		return 0, err
	}

	if user.IsVerified {
		return 0, ErrAlreadyVerified
	}

	if err := m.repo.Users().SetVerified(ctx, user.ID); err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to confirm subject")
	}

	m.logger.Info("subject %d verified", user.ID)

	return user.ID, nil
}

// Sweep returns the subjects whose verification lapsed more than grace ago
// and who never confirmed. An empty result is not an error; only the
// caller's batch deletion treats it as a no-op.
func (m *VerificationManager) Sweep(ctx context.Context, grace time.Duration) ([]int64, error) {
	cutoff := time.Now().UTC().Add(-grace)

	ids, err := m.repo.Verifications().ExpiredSubjectIDs(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate verification token")
	}

	return hex.EncodeToString(buf), nil
}
