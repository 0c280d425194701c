package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/ashkov/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRunOnce(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	lapsed := mustCreateUser(t, repo, "lapsed@x.com", false)
	confirmed := mustCreateUser(t, repo, "confirmed@x.com", true)

	for _, v := range []*identity.Verification{
		{UserID: lapsed.ID, Token: "t1", ExpiresAt: now.Add(-48 * time.Hour)},
		{UserID: confirmed.ID, Token: "t2", ExpiresAt: now.Add(-48 * time.Hour)},
	} {
		_, err := repo.Verifications().Insert(ctx, v)
		require.NoError(t, err)
	}

	sweeper := identity.NewSweeper(repo, testConfig())

	report, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, []int64{lapsed.ID}, report.Deleted)
	assert.False(t, report.RanAt.IsZero())

	_, err = repo.Users().GetByID(ctx, lapsed.ID)
	require.Error(t, err)

	_, err = repo.Users().GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
}

func TestSweeperRunOnceNoCandidates(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	sweeper := identity.NewSweeper(repo, testConfig())

	report, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Candidates)
	// Deleted stays a populated-but-empty slice so the report serializes the
	// same shape whether or not anything was removed.
	assert.NotNil(t, report.Deleted)
	assert.Empty(t, report.Deleted)
}

func TestSweeperGraceShieldsCandidates(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()

	lapsed := mustCreateUser(t, repo, "lapsed@x.com", false)

	_, err := repo.Verifications().Insert(ctx, &identity.Verification{
		UserID:    lapsed.ID,
		Token:     "t1",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.SweepGrace = 24 * time.Hour

	sweeper := identity.NewSweeper(repo, cfg)

	report, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)

	_, err = repo.Users().GetByID(ctx, lapsed.ID)
	require.NoError(t, err)
}

func TestSweeperStartStop(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()

	lapsed := mustCreateUser(t, repo, "lapsed@x.com", false)

	_, err := repo.Verifications().Insert(ctx, &identity.Verification{
		UserID:    lapsed.ID,
		Token:     "t1",
		ExpiresAt: time.Now().UTC().Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.SweepSchedule = "@every 10ms"

	sweeper := identity.NewSweeper(repo, cfg)
	require.NoError(t, sweeper.Start())
	// Start is idempotent while the schedule is live.
	require.NoError(t, sweeper.Start())
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		_, err := repo.Users().GetByID(ctx, lapsed.ID)
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSweeperStartInvalidSchedule(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	cfg := testConfig()
	cfg.SweepSchedule = "not-a-schedule"

	sweeper := identity.NewSweeper(repo, cfg)
	require.Error(t, sweeper.Start())
}
