package remote

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// RemoteProgressRecord is the authoritative per-user progress document in
// the users_progress collection. It is a superset of the local state; the
// client mirrors into it eventually and never reads it on the hot path.
type RemoteProgressRecord struct {
	UserID         string       `bson:"_id"`
	XP             int64        `bson:"xp"`
	Gems           int64        `bson:"gems"`
	Tasks          int64        `bson:"tasks"`
	Purchases      []string     `bson:"purchases,omitempty"`
	Pets           PetRecord    `bson:"pets"`
	Streak         StreakRecord `bson:"streak"`
	UnlockedSkills []string     `bson:"unlocked_skills,omitempty"`
	UnlockedTitles []string     `bson:"unlocked_titles,omitempty"`
	SelectedTitle  string       `bson:"selected_title,omitempty"`
	LastUpdated    time.Time    `bson:"last_updated"`
}

type PetRecord struct {
	XP int64 `bson:"xp"`
}

type StreakRecord struct {
	Current        int    `bson:"current"`
	Longest        int    `bson:"longest"`
	LastActiveDate string `bson:"last_active_date,omitempty"`
}

// ActivityRecord is one append-only completion entry in the activity_log
// collection. IDs are time-ordered snowflakes so recency queries can sort
// by _id alone.
type ActivityRecord struct {
	ID          snowflake.ID `bson:"_id"`
	UserID      string       `bson:"user_id"`
	Kind        string       `bson:"kind"`
	Difficulty  int          `bson:"difficulty"`
	XP          int          `bson:"xp"`
	PetXP       int          `bson:"pet_xp"`
	CompletedAt time.Time    `bson:"completed_at"`
}
