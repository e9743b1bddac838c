package progression

import (
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/storage"
	"github.com/tamagotask/tamagotask/tamagotask/utils"
)

// StreakTracker maintains the consecutive-active-days counter. RecordToday
// is idempotent per calendar day: calling it twice on the same day never
// double-increments.
type StreakTracker struct {
	store *storage.ProgressStore
	now   func() time.Time
}

func NewStreakTracker(store *storage.ProgressStore) *StreakTracker {
	return &StreakTracker{store: store, now: time.Now}
}

// SetClock overrides the tracker's clock for tests.
func (t *StreakTracker) SetClock(now func() time.Time) {
	t.now = now
}

// RecordToday marks today as active. A same-day repeat is a no-op, an
// active yesterday extends the streak, anything else restarts it at 1.
// It returns the resulting state and whether the streak advanced.
func (t *StreakTracker) RecordToday() (storage.StreakState, bool, error) {
	streak := t.store.Streak()
	now := t.now()
	today := utils.LocalDate(now)

	switch {
	case streak.LastActiveDate == today:
		return streak, false, nil
	case utils.IsYesterday(streak.LastActiveDate, now):
		streak.Current++
	default:
		streak.Current = 1
	}

	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastActiveDate = today

	if err := t.store.SetStreak(streak); err != nil {
		return storage.StreakState{}, false, err
	}
	return streak, true, nil
}

// Current returns the streak state without recording anything.
func (t *StreakTracker) Current() storage.StreakState {
	return t.store.Streak()
}
