package backend

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamagotask/tamagotask/tamagotask/database/repositories"
	"github.com/tamagotask/tamagotask/tamagotask/utils"
)

const (
	defaultRetentionMonths = 3
	defaultBatchSize       = 500
	retentionConcurrency   = 2
)

// RetentionJob prunes leaderboard months older than the retention window.
// Deletes run in LIMIT-ed batches to keep row locks short; expired months
// are pruned concurrently but with a small cap so the job never competes
// with the projector for the pool.
type RetentionJob struct {
	leaderboards repositories.LeaderboardRepository
	ranks        Ranker
	months       int
	batchSize    int
	now          func() time.Time
}

func NewRetentionJob(leaderboards repositories.LeaderboardRepository, ranks Ranker, months int) *RetentionJob {
	if months <= 0 {
		months = defaultRetentionMonths
	}
	return &RetentionJob{
		leaderboards: leaderboards,
		ranks:        ranks,
		months:       months,
		batchSize:    defaultBatchSize,
		now:          time.Now,
	}
}

// SetClock overrides the job's clock for tests.
func (j *RetentionJob) SetClock(now func() time.Time) {
	j.now = now
}

// CutoffMonth returns the oldest month that is still retained.
func (j *RetentionJob) CutoffMonth() string {
	return utils.MonthsAgo(j.now(), j.months)
}

// Run deletes every expired month and drops its ranking cache key. The job
// is idempotent; running it twice in a month is a no-op the second time.
func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := j.CutoffMonth()

	expired, err := j.leaderboards.MonthsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		slog.Debug("No expired leaderboard months",
			slog.String("type", "db"),
			slog.String("cutoff", cutoff))
		return nil
	}

	slog.Info("Pruning expired leaderboard months",
		slog.String("type", "db"),
		slog.String("cutoff", cutoff),
		slog.Int("months", len(expired)))

	var g errgroup.Group
	g.SetLimit(retentionConcurrency)
	for _, month := range expired {
		month := month
		g.Go(func() error {
			return j.pruneMonth(ctx, month)
		})
	}
	return g.Wait()
}

func (j *RetentionJob) pruneMonth(ctx context.Context, month string) error {
	var total int64
	for {
		deleted, err := j.leaderboards.DeleteMonthBatch(ctx, month, j.batchSize)
		if err != nil {
			return err
		}
		total += deleted
		if deleted < int64(j.batchSize) {
			break
		}
	}

	if j.ranks != nil {
		if err := j.ranks.DropMonth(ctx, month); err != nil {
			slog.Warn("Failed to drop ranking cache month",
				slog.String("type", "db"),
				slog.String("month", month),
				slog.Any("error", err))
		}
	}

	slog.Info("Pruned leaderboard month",
		slog.String("type", "db"),
		slog.String("month", month),
		slog.Int64("rows", total))
	return nil
}
