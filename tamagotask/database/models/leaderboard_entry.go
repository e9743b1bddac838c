package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LeaderboardEntry is the derived per-user-per-month ranking row. Only the
// trusted projector writes it; clients read it through the ranking cache.
type LeaderboardEntry struct {
	bun.BaseModel `bun:"table:leaderboard_entries,alias:le"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         string    `bun:"user_id,notnull"`
	Month          string    `bun:"month,notnull"` // "2006-01"
	XP             int64     `bun:"xp,notnull,default:0"`
	Level          int       `bun:"level,notnull,default:1"`
	TasksCompleted int64     `bun:"tasks_completed,notnull,default:0"`
	CurrentStreak  int       `bun:"current_streak,notnull,default:0"`
	LongestStreak  int       `bun:"longest_streak,notnull,default:0"`
	LastUpdated    time.Time `bun:"last_updated,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}
