package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/ashkov/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationManagerIssue(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := mustCreateUser(t, repo, "a@x.com", false)

	manager := identity.NewVerificationManager(repo, testConfig())

	record, err := manager.Issue(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, record.UserID)
	assert.Len(t, record.Token, 64) // 256 bits, hex encoded
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), record.ExpiresAt, time.Minute)

	// A second issuance while one is live is a conflict, not a new token.
	_, err = manager.Issue(ctx, user.ID)
	require.Error(t, err)
	assert.True(t, identity.IsVerificationPending(err))
}

func TestVerificationManagerRedeemOnce(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := mustCreateUser(t, repo, "a@x.com", false)

	manager := identity.NewVerificationManager(repo, testConfig())

	record, err := manager.Issue(ctx, user.ID)
	require.NoError(t, err)

	subjectID, err := manager.Redeem(ctx, record.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subjectID)

	confirmed, err := repo.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsVerified)

	// Replay with the same token string fails on the subject flag; the row
	// is still in place.
	_, err = manager.Redeem(ctx, record.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrAlreadyVerified)
}

func TestVerificationManagerRedeemUnknownToken(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	manager := identity.NewVerificationManager(repo, testConfig())

	_, err := manager.Redeem(context.Background(), "never-issued")
	require.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrAlreadyVerified)
}

func TestVerificationManagerRedeemExpiredFailsClosed(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := mustCreateUser(t, repo, "a@x.com", false)

	_, err := repo.Verifications().Insert(ctx, &identity.Verification{
		UserID:    user.ID,
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	manager := identity.NewVerificationManager(repo, testConfig())

	_, err = manager.Redeem(ctx, "stale")
	require.Error(t, err)

	still, err := repo.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, still.IsVerified)
}

func TestVerificationManagerSweep(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	lapsed := mustCreateUser(t, repo, "lapsed@x.com", false)
	confirmed := mustCreateUser(t, repo, "confirmed@x.com", true)
	pending := mustCreateUser(t, repo, "pending@x.com", false)

	for _, v := range []*identity.Verification{
		{UserID: lapsed.ID, Token: "t1", ExpiresAt: now.Add(-48 * time.Hour)},
		{UserID: confirmed.ID, Token: "t2", ExpiresAt: now.Add(-48 * time.Hour)},
		{UserID: pending.ID, Token: "t3", ExpiresAt: now.Add(time.Hour)},
	} {
		_, err := repo.Verifications().Insert(ctx, v)
		require.NoError(t, err)
	}

	manager := identity.NewVerificationManager(repo, testConfig())

	ids, err := manager.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{lapsed.ID}, ids)

	// A grace longer than the overshoot shields the candidate.
	ids, err = manager.Sweep(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestVerificationManagerSweepEmpty(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	manager := identity.NewVerificationManager(repo, testConfig())

	ids, err := manager.Sweep(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
