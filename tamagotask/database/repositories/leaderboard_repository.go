package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/tamagotask/tamagotask/tamagotask/database/models"
)

type LeaderboardRepository interface {
	Upsert(ctx context.Context, entry *models.LeaderboardEntry) error
	GetUserEntry(ctx context.Context, userID, month string) (*models.LeaderboardEntry, error)
	GetTop(ctx context.Context, month string, limit int) ([]*models.LeaderboardEntry, error)
	MonthsBefore(ctx context.Context, cutoffMonth string) ([]string, error)
	DeleteMonthBatch(ctx context.Context, month string, batchSize int) (int64, error)
}

type leaderboardRepository struct {
	db *bun.DB
}

func NewLeaderboardRepository(db *bun.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

// Upsert creates or overwrites the (month, user) row with the validated
// projection values.
func (r *leaderboardRepository) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	now := time.Now()
	entry.LastUpdated = now
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (month, user_id) DO UPDATE").
		Set("xp = EXCLUDED.xp").
		Set("level = EXCLUDED.level").
		Set("tasks_completed = EXCLUDED.tasks_completed").
		Set("current_streak = EXCLUDED.current_streak").
		Set("longest_streak = EXCLUDED.longest_streak").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}
	return nil
}

func (r *leaderboardRepository) GetUserEntry(ctx context.Context, userID, month string) (*models.LeaderboardEntry, error) {
	entry := new(models.LeaderboardEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("user_id = ?", userID).
		Where("month = ?", month).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *leaderboardRepository) GetTop(ctx context.Context, month string, limit int) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("month = ?", month).
		Order("xp DESC", "tasks_completed DESC").
		Limit(limit).
		Scan(ctx)
	return entries, err
}

// MonthsBefore lists the distinct months stored that sort strictly before
// the cutoff. Month keys are zero-padded, so string comparison is
// chronological.
func (r *leaderboardRepository) MonthsBefore(ctx context.Context, cutoffMonth string) ([]string, error) {
	var months []string
	err := r.db.NewSelect().
		Model((*models.LeaderboardEntry)(nil)).
		ColumnExpr("DISTINCT month").
		Where("month < ?", cutoffMonth).
		Scan(ctx, &months)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired months: %w", err)
	}
	return months, nil
}

// DeleteMonthBatch removes up to batchSize rows for one month and returns
// how many went. The retention job loops until a short batch comes back.
func (r *leaderboardRepository) DeleteMonthBatch(ctx context.Context, month string, batchSize int) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.LeaderboardEntry)(nil)).
		Where("id IN (SELECT id FROM leaderboard_entries WHERE month = ? LIMIT ?)", month, batchSize).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete leaderboard batch: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		slog.Debug("Deleted leaderboard batch",
			slog.String("type", "db"),
			slog.String("month", month),
			slog.Int64("rows", deleted))
	}
	return deleted, nil
}
