package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tamagotask/tamagotask/tamagotask/database/models"
	"github.com/tamagotask/tamagotask/tamagotask/database/repositories"
	"github.com/tamagotask/tamagotask/tamagotask/utils"
)

// Sanity bounds for incoming progress. Anything beyond these is either a
// bug or a forged client write; the projection is dropped either way.
const (
	maxXP     = 1_000_000
	maxGems   = 1_000_000
	maxTasks  = 1_000_000
	maxStreak = 1000

	xpPerLevel = 100
)

// Ranker is the projector's view of the ranking cache.
type Ranker interface {
	UpdateScore(ctx context.Context, month, userID string, xp int64) error
	DropMonth(ctx context.Context, month string) error
}

// Projector turns validated progress writes into leaderboard entries. It
// runs only in the trusted backend: this validation is the sole barrier
// between client-writable progress documents and leaderboard-visible rank
// data, so rejected documents must never reach the Upsert.
type Projector struct {
	leaderboards repositories.LeaderboardRepository
	ranks        Ranker
	now          func() time.Time
}

func NewProjector(leaderboards repositories.LeaderboardRepository, ranks Ranker) *Projector {
	return &Projector{
		leaderboards: leaderboards,
		ranks:        ranks,
		now:          time.Now,
	}
}

// SetClock overrides the projector's clock for tests.
func (p *Projector) SetClock(now func() time.Time) {
	p.now = now
}

// Project validates one progress document and upserts the corresponding
// (user, current month) leaderboard entry. Invalid documents are logged
// and dropped without touching the leaderboard; the client's local state
// is unaffected either way.
func (p *Projector) Project(ctx context.Context, doc bson.M) error {
	userID, _ := doc["_id"].(string)
	if userID == "" {
		return fmt.Errorf("progress document missing user id")
	}

	xp, err := numericField(doc, "xp")
	if err != nil {
		return p.reject(userID, err)
	}
	gems, err := numericField(doc, "gems")
	if err != nil {
		return p.reject(userID, err)
	}
	tasks, err := numericField(doc, "tasks")
	if err != nil {
		return p.reject(userID, err)
	}

	var current, longest int64
	if streak, ok := doc["streak"].(bson.M); ok {
		if current, err = numericField(streak, "current"); err != nil {
			return p.reject(userID, err)
		}
		if longest, err = numericField(streak, "longest"); err != nil {
			return p.reject(userID, err)
		}
	}

	switch {
	case xp < 0 || xp > maxXP:
		return p.reject(userID, fmt.Errorf("xp %d out of bounds", xp))
	case gems < 0 || gems > maxGems:
		return p.reject(userID, fmt.Errorf("gems %d out of bounds", gems))
	case tasks < 0 || tasks > maxTasks:
		return p.reject(userID, fmt.Errorf("tasks %d out of bounds", tasks))
	case current < 0 || current > maxStreak || longest < 0 || longest > maxStreak:
		return p.reject(userID, fmt.Errorf("streak %d/%d out of bounds", current, longest))
	}

	month := utils.Month(p.now())
	entry := &models.LeaderboardEntry{
		UserID:         userID,
		Month:          month,
		XP:             xp,
		Level:          int(xp/xpPerLevel) + 1,
		TasksCompleted: tasks,
		CurrentStreak:  int(current),
		LongestStreak:  int(longest),
	}

	if err := p.leaderboards.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to project leaderboard entry: %w", err)
	}

	if p.ranks != nil {
		if err := p.ranks.UpdateScore(ctx, month, userID, xp); err != nil {
			// Cache write failure is not fatal; reads fall back to Postgres.
			slog.Warn("Failed to update ranking cache",
				slog.String("type", "db"),
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}

	slog.Debug("Projected leaderboard entry",
		slog.String("type", "db"),
		slog.String("user_id", userID),
		slog.String("month", month),
		slog.Int64("xp", xp))
	return nil
}

func (p *Projector) reject(userID string, cause error) error {
	slog.Warn("Rejected progress write",
		slog.String("type", "db"),
		slog.String("user_id", userID),
		slog.Any("error", cause))
	return fmt.Errorf("progress validation failed for %s: %w", userID, cause)
}

// numericField extracts an integral value, rejecting any non-numeric type.
// BSON decodes numbers as int32, int64 or float64 depending on the writer.
func numericField(doc bson.M, key string) (int64, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q is not numeric (%T)", key, v)
	}
}
