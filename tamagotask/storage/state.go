package storage

import "time"

// Fixed storage keys. There is no schema version field; unknown fields are
// dropped and missing fields take their zero value on load, which keeps old
// payloads readable.
const (
	KeyProgress      = "progress"
	KeyStreak        = "streak"
	sessionKeyPrefix = "session_"
)

// ProgressState is the device-local source of truth for the player's
// persistent progress. The remote record mirrors it eventually.
type ProgressState struct {
	XP        int64    `json:"xp"`
	Gems      int64    `json:"gems"`
	PetXP     int64    `json:"pet_xp"`
	Purchases []string `json:"purchases,omitempty"`
	Tasks     int64    `json:"tasks"`
}

// HasPurchase reports whether the item ID is already owned.
func (p ProgressState) HasPurchase(itemID string) bool {
	for _, id := range p.Purchases {
		if id == itemID {
			return true
		}
	}
	return false
}

// StreakState tracks consecutive active days. Longest never drops below
// Current.
type StreakState struct {
	Current        int    `json:"current"`
	Longest        int    `json:"longest"`
	LastActiveDate string `json:"last_active_date,omitempty"`
}

// SessionState is the durable part of the session gate for one activity
// class. CompletedToday is only meaningful together with LastResetDate: a
// stored date other than today means the counter is stale and reads as zero.
type SessionState struct {
	LastActivityAt time.Time `json:"last_activity_at,omitempty"`
	CompletedToday int       `json:"completed_today"`
	LastResetDate  string    `json:"last_reset_date,omitempty"`
}

func sessionKey(class string) string {
	return sessionKeyPrefix + class
}
