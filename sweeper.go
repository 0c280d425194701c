package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/robfig/cron/v3"
)

// Sweeper is the expiry reconciliation task. On each run it collects
// subjects whose pending verification lapsed and instructs the subject
// store to retire them. It runs on its own schedule, independent of request
// traffic, and tolerates running concurrently with live signups and
// verifications: the delete statement re-checks is_verified, so a subject
// confirmed between selection and deletion survives.
type Sweeper struct {
	verification *VerificationManager
	users        Users
	grace        time.Duration
	schedule     string
	cron         *cron.Cron
	logger       Logger
}

// NewSweeper builds the reconciliation task from the repository manager and
// shared configuration.
func NewSweeper(repo RepositoryManager, cfg Config) *Sweeper {
	return &Sweeper{
		verification: NewVerificationManager(repo, cfg),
		users:        repo.Users(),
		grace:        cfg.SweepGrace,
		schedule:     cfg.sweepSchedule(),
		logger:       defLogger{},
	}
}

func (s *Sweeper) WithLogger(logger Logger) *Sweeper {
	if logger != nil {
		s.logger = logger
		s.verification.WithLogger(logger)
	}
	return s
}

// RunOnce executes a single reconciliation pass. An empty candidate set is
// a zero-deletion success, and partial deletes (some subjects already gone
// or verified in the meantime) report only the subjects actually removed.
func (s *Sweeper) RunOnce(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{Deleted: []int64{}, RanAt: time.Now().UTC()}

	candidates, err := s.verification.Sweep(ctx, s.grace)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "sweep selection failed")
	}

	report.Candidates = len(candidates)

	if len(candidates) == 0 {
		s.logger.Debug("sweep found no expired subjects")
		return report, nil
	}

	deleted, err := s.users.DeleteMany(ctx, candidates)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "sweep deletion failed")
	}

	report.Deleted = append(report.Deleted, deleted...)

	s.logger.Info("sweep completed: %d candidates, %d deleted", report.Candidates, len(deleted))

	return report, nil
}

// Start schedules recurring runs on the configured cron spec. Run failures
// are logged; the schedule keeps going.
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return nil
	}

	c := cron.New()

	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("scheduled sweep failed: %v", err)
		}
	}); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid sweep schedule")
	}

	s.cron = c
	s.cron.Start()

	s.logger.Info("sweeper started with schedule %q", s.schedule)

	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron = nil

	s.logger.Info("sweeper stopped")
}
