package progression

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/remote"
	"github.com/tamagotask/tamagotask/tamagotask/storage"
)

type fakePusher struct {
	deltas     []remote.ProgressDelta
	activities []string
}

func (p *fakePusher) Push(delta remote.ProgressDelta) {
	p.deltas = append(p.deltas, delta)
}

func (p *fakePusher) RecordActivity(kind string, difficulty, xp, petXP int) {
	p.activities = append(p.activities, kind)
}

func newTestEngine(t *testing.T) (*Engine, *storage.ProgressStore, *fakePusher) {
	t.Helper()

	store := storage.NewProgressStore(storage.NewMemoryBackend())
	pusher := &fakePusher{}
	engine := NewEngine(store, NewCalculator(nil), pusher, []GateConfig{
		{Class: "sequence_recall", Cooldown: 30 * time.Second, DailyCap: 3},
	})
	return engine, store, pusher
}

func TestEngine_CompleteActivity(t *testing.T) {
	engine, store, pusher := newTestEngine(t)

	var events []Event
	engine.Subscribe(func(ev Event) { events = append(events, ev) })

	reward, err := engine.CompleteActivity(ActivitySequenceRecall, 3, 5)
	if err != nil {
		t.Fatalf("CompleteActivity() error = %v", err)
	}
	if want := (Reward{XP: 42, PetXP: 7}); reward != want {
		t.Fatalf("CompleteActivity() = %+v, want %+v", reward, want)
	}

	progress := store.Progress()
	if progress.XP != 42 || progress.PetXP != 7 {
		t.Errorf("Progress() = xp %d pet %d, want 42/7", progress.XP, progress.PetXP)
	}

	// The push carries the absolute totals, not the increment.
	if len(pusher.deltas) != 1 {
		t.Fatalf("pushed %d deltas, want 1", len(pusher.deltas))
	}
	delta := pusher.deltas[0]
	if delta.XP == nil || *delta.XP != 42 {
		t.Errorf("pushed xp = %v, want 42", delta.XP)
	}
	if delta.Streak == nil || delta.Streak.Current != 1 {
		t.Errorf("pushed streak = %+v, want current 1", delta.Streak)
	}
	if len(pusher.activities) != 1 || pusher.activities[0] != "sequence_recall" {
		t.Errorf("recorded activities = %v, want one sequence_recall", pusher.activities)
	}

	wantKinds := []EventKind{EventProgressUpdated, EventPetXPGained, EventStreakAdvanced}
	if len(events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d", len(events), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if events[i].Kind != kind {
			t.Errorf("event[%d] = %q, want %q", i, events[i].Kind, kind)
		}
	}
}

func TestEngine_CompleteActivity_GateRejection(t *testing.T) {
	engine, store, pusher := newTestEngine(t)

	if _, err := engine.CompleteActivity(ActivitySequenceRecall, 1, 3); err != nil {
		t.Fatalf("CompleteActivity() error = %v", err)
	}
	before := store.Progress()
	pushed := len(pusher.deltas)

	var events []Event
	engine.Subscribe(func(ev Event) { events = append(events, ev) })

	// Second attempt lands inside the cooldown window.
	_, err := engine.CompleteActivity(ActivitySequenceRecall, 1, 3)
	var gerr *GateError
	if !errors.As(err, &gerr) {
		t.Fatalf("CompleteActivity() error = %v, want *GateError", err)
	}
	if gerr.Reason != ReasonCooldown {
		t.Errorf("CompleteActivity() reason = %q, want %q", gerr.Reason, ReasonCooldown)
	}

	if after := store.Progress(); after.XP != before.XP || after.PetXP != before.PetXP {
		t.Errorf("Progress() changed on rejection: %+v -> %+v", before, after)
	}
	if len(pusher.deltas) != pushed {
		t.Errorf("pushed %d deltas after rejection, want %d", len(pusher.deltas), pushed)
	}

	if len(events) != 1 || events[0].Kind != EventSessionRejected {
		t.Fatalf("events = %+v, want one session_rejected", events)
	}
	if events[0].Reason != ReasonCooldown || events[0].SecondsRemaining <= 0 {
		t.Errorf("rejection event = %+v, want cooldown with seconds", events[0])
	}
}

// faultyBackend fails writes for keys under one prefix and delegates the
// rest, to exercise partial-commit error branches.
type faultyBackend struct {
	inner      *storage.MemoryBackend
	failPrefix string
}

func (b *faultyBackend) Load(key string) ([]byte, bool, error) {
	return b.inner.Load(key)
}

func (b *faultyBackend) Save(key string, data []byte) error {
	if strings.HasPrefix(key, b.failPrefix) {
		return errors.New("disk full")
	}
	return b.inner.Save(key, data)
}

func TestEngine_CompleteActivity_SessionCommitFailureRollsBack(t *testing.T) {
	backend := &faultyBackend{inner: storage.NewMemoryBackend(), failPrefix: "session_"}
	store := storage.NewProgressStore(backend)
	pusher := &fakePusher{}
	engine := NewEngine(store, NewCalculator(nil), pusher, []GateConfig{
		{Class: "sequence_recall", Cooldown: 30 * time.Second, DailyCap: 3},
	})

	if _, err := engine.CompleteActivity(ActivitySequenceRecall, 3, 5); err == nil {
		t.Fatal("CompleteActivity() error = nil, want session commit failure")
	}

	// The XP credit must not survive a failed session commit.
	if progress := store.Progress(); progress.XP != 0 || progress.PetXP != 0 {
		t.Errorf("Progress() = xp %d pet %d after failed commit, want 0/0", progress.XP, progress.PetXP)
	}
	if len(pusher.deltas) != 0 || len(pusher.activities) != 0 {
		t.Errorf("pushed %d deltas %d activities after failed commit, want none",
			len(pusher.deltas), len(pusher.activities))
	}
}

func TestEngine_CompleteActivity_UnknownKind(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if _, err := engine.CompleteActivity(ActivityKind("juggling"), 1, 1); err == nil {
		t.Fatal("CompleteActivity() error = nil, want unknown kind error")
	}
}

func TestEngine_Purchase(t *testing.T) {
	engine, store, pusher := newTestEngine(t)

	if err := store.SetProgress(storage.ProgressState{Gems: 100}); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}

	if err := engine.Purchase("hat_red", 40); err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}

	progress := store.Progress()
	if progress.Gems != 60 {
		t.Errorf("Gems = %d, want 60", progress.Gems)
	}
	if !progress.HasPurchase("hat_red") {
		t.Error("HasPurchase(hat_red) = false, want true")
	}

	if err := engine.Purchase("hat_red", 40); err == nil {
		t.Error("Purchase() repeat error = nil, want already owned")
	}
	if err := engine.Purchase("castle", 500); err == nil {
		t.Error("Purchase() error = nil, want insufficient gems")
	}

	// Only the successful purchase pushed.
	if len(pusher.deltas) != 1 {
		t.Fatalf("pushed %d deltas, want 1", len(pusher.deltas))
	}
	if got := pusher.deltas[0].Purchases; len(got) != 1 || got[0] != "hat_red" {
		t.Errorf("pushed purchases = %v, want [hat_red]", got)
	}
}

func TestEngine_RecordActivityToday(t *testing.T) {
	engine, _, pusher := newTestEngine(t)

	streak, err := engine.RecordActivityToday()
	if err != nil {
		t.Fatalf("RecordActivityToday() error = %v", err)
	}
	if streak.Current != 1 {
		t.Errorf("RecordActivityToday() current = %d, want 1", streak.Current)
	}
	if len(pusher.deltas) != 1 || pusher.deltas[0].Streak == nil {
		t.Fatalf("pushed deltas = %+v, want one streak delta", pusher.deltas)
	}

	// Same-day repeat records nothing and pushes nothing.
	if _, err := engine.RecordActivityToday(); err != nil {
		t.Fatalf("RecordActivityToday() error = %v", err)
	}
	if len(pusher.deltas) != 1 {
		t.Errorf("pushed %d deltas after repeat, want 1", len(pusher.deltas))
	}
}
