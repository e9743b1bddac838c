package progression

import (
	"testing"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/storage"
)

func newTestTracker(t *testing.T) (*StreakTracker, *time.Time) {
	t.Helper()

	tracker := NewStreakTracker(storage.NewProgressStore(storage.NewMemoryBackend()))
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local)
	tracker.SetClock(func() time.Time { return current })
	return tracker, &current
}

func TestStreakTracker_RecordToday(t *testing.T) {
	tracker, current := newTestTracker(t)

	streak, advanced, err := tracker.RecordToday()
	if err != nil {
		t.Fatalf("RecordToday() error = %v", err)
	}
	if !advanced || streak.Current != 1 || streak.Longest != 1 {
		t.Fatalf("RecordToday() = %+v advanced=%v, want current=1 longest=1 advanced", streak, advanced)
	}

	// Same calendar day is a no-op no matter how often it fires.
	for i := 0; i < 3; i++ {
		streak, advanced, err = tracker.RecordToday()
		if err != nil {
			t.Fatalf("RecordToday() error = %v", err)
		}
		if advanced || streak.Current != 1 {
			t.Fatalf("RecordToday() same day = %+v advanced=%v, want unchanged", streak, advanced)
		}
	}

	*current = current.Add(24 * time.Hour)
	streak, advanced, err = tracker.RecordToday()
	if err != nil {
		t.Fatalf("RecordToday() error = %v", err)
	}
	if !advanced || streak.Current != 2 {
		t.Fatalf("RecordToday() next day = %+v advanced=%v, want current=2", streak, advanced)
	}
}

func TestStreakTracker_GapResets(t *testing.T) {
	tracker, current := newTestTracker(t)

	// Build three consecutive days.
	for i := 0; i < 3; i++ {
		if _, _, err := tracker.RecordToday(); err != nil {
			t.Fatalf("RecordToday() error = %v", err)
		}
		*current = current.Add(24 * time.Hour)
	}
	if got := tracker.Current(); got.Current != 3 || got.Longest != 3 {
		t.Fatalf("Current() = %+v, want 3/3", got)
	}

	// Skip a day; the streak restarts but the record stays.
	*current = current.Add(24 * time.Hour)
	streak, advanced, err := tracker.RecordToday()
	if err != nil {
		t.Fatalf("RecordToday() error = %v", err)
	}
	if !advanced || streak.Current != 1 {
		t.Fatalf("RecordToday() after gap = %+v advanced=%v, want current=1", streak, advanced)
	}
	if streak.Longest != 3 {
		t.Errorf("RecordToday() longest = %d, want 3 preserved", streak.Longest)
	}

	*current = current.Add(24 * time.Hour)
	streak, _, err = tracker.RecordToday()
	if err != nil {
		t.Fatalf("RecordToday() error = %v", err)
	}
	if streak.Current != 2 || streak.Longest != 3 {
		t.Errorf("RecordToday() = %+v, want 2 current, 3 longest", streak)
	}
}
