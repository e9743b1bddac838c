package progression

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/logger"
	"github.com/tamagotask/tamagotask/tamagotask/remote"
	"github.com/tamagotask/tamagotask/tamagotask/storage"
)

// Pusher is the engine's view of the progress synchronizer. Pushes are
// fire-and-forget: the engine commits locally first and never waits.
type Pusher interface {
	Push(delta remote.ProgressDelta)
	RecordActivity(kind string, difficulty, xp, petXP int)
}

// Engine is the boundary the UI layer consumes. It owns the session gates,
// the reward calculator, the streak tracker and the local store; internal
// counters are never touched directly by callers.
type Engine struct {
	store  *storage.ProgressStore
	calc   *Calculator
	streak *StreakTracker
	pusher Pusher

	mu        sync.Mutex
	gates     map[ActivityKind]*Gate
	listeners []Listener
	now       func() time.Time
}

func NewEngine(store *storage.ProgressStore, calc *Calculator, pusher Pusher, gateConfigs []GateConfig) *Engine {
	e := &Engine{
		store:  store,
		calc:   calc,
		streak: NewStreakTracker(store),
		pusher: pusher,
		gates:  make(map[ActivityKind]*Gate),
		now:    time.Now,
	}
	for _, cfg := range gateConfigs {
		e.gates[ActivityKind(cfg.Class)] = NewGate(cfg, store)
	}
	return e
}

// Subscribe registers a listener for engine events.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// CheckSessionAvailability evaluates the gate for an activity kind.
func (e *Engine) CheckSessionAvailability(kind ActivityKind) (Status, error) {
	gate, err := e.gate(kind)
	if err != nil {
		return Status{}, err
	}
	return gate.Check(), nil
}

// RemainingToday returns how many activities of this kind may still run
// today.
func (e *Engine) RemainingToday(kind ActivityKind) (int, error) {
	gate, err := e.gate(kind)
	if err != nil {
		return 0, err
	}
	return gate.RemainingToday(), nil
}

// CooldownSecondsRemaining returns the seconds left on this kind's
// cooldown, or 0 when none is running.
func (e *Engine) CooldownSecondsRemaining(kind ActivityKind) (int, error) {
	gate, err := e.gate(kind)
	if err != nil {
		return 0, err
	}
	return gate.CooldownSecondsRemaining(), nil
}

// CompleteActivity runs the full completion flow: gate check, reward
// calculation, synchronous local commit, streak update, then asynchronous
// remote push. A gate rejection returns a *GateError and mutates nothing.
func (e *Engine) CompleteActivity(kind ActivityKind, difficulty int, outcome float64) (Reward, error) {
	start := e.now()

	gate, err := e.gate(kind)
	if err != nil {
		return Reward{}, err
	}

	if err := gate.Begin(); err != nil {
		var gerr *GateError
		if errors.As(err, &gerr) {
			e.emit(Event{
				Kind:             EventSessionRejected,
				At:               e.now(),
				Activity:         kind,
				Reason:           gerr.Reason,
				SecondsRemaining: gerr.SecondsRemaining,
			})
		}
		logger.LogActivity(string(kind), e.now().Sub(start), err)
		return Reward{}, err
	}

	reward, err := e.calc.Compute(kind, difficulty, outcome)
	if err != nil {
		return Reward{}, err
	}

	// Local commit happens first and synchronously; everything after is
	// best-effort.
	before := e.store.Progress()
	progress := before
	progress.XP += int64(reward.XP)
	progress.PetXP += int64(reward.PetXP)
	if err := e.store.SetProgress(progress); err != nil {
		return Reward{}, fmt.Errorf("failed to commit progress: %w", err)
	}
	if err := gate.Complete(); err != nil {
		// Undo the XP credit so a failed session commit cannot leave
		// rewards granted without a consumed session.
		if rbErr := e.store.SetProgress(before); rbErr != nil {
			logger.LogError("Failed to roll back progress after session commit failure", rbErr)
		}
		return Reward{}, fmt.Errorf("failed to commit session state: %w", err)
	}

	streak, advanced, err := e.streak.RecordToday()
	if err != nil {
		return Reward{}, fmt.Errorf("failed to commit streak: %w", err)
	}

	e.pusher.Push(remote.ProgressDelta{
		XP:     remote.Int64(progress.XP),
		PetXP:  remote.Int64(progress.PetXP),
		Streak: &remote.StreakRecord{Current: streak.Current, Longest: streak.Longest, LastActiveDate: streak.LastActiveDate},
	})
	e.pusher.RecordActivity(string(kind), difficulty, reward.XP, reward.PetXP)

	e.emit(Event{
		Kind:     EventProgressUpdated,
		At:       e.now(),
		Activity: kind,
		Reward:   reward,
		Progress: progress,
	})
	if reward.PetXP > 0 {
		e.emit(Event{
			Kind:     EventPetXPGained,
			At:       e.now(),
			Activity: kind,
			Reward:   reward,
			Progress: progress,
		})
	}
	if advanced {
		e.emit(Event{Kind: EventStreakAdvanced, At: e.now(), Streak: streak})
	}

	logger.LogActivity(string(kind), e.now().Sub(start), nil)
	return reward, nil
}

// RecordActivityToday marks today as active for streak purposes without a
// mini-game session, e.g. when a task is completed. Idempotent per day.
func (e *Engine) RecordActivityToday() (storage.StreakState, error) {
	streak, advanced, err := e.streak.RecordToday()
	if err != nil {
		return storage.StreakState{}, err
	}
	if advanced {
		e.pusher.Push(remote.ProgressDelta{
			Streak: &remote.StreakRecord{Current: streak.Current, Longest: streak.Longest, LastActiveDate: streak.LastActiveDate},
		})
		e.emit(Event{Kind: EventStreakAdvanced, At: e.now(), Streak: streak})
	}
	return streak, nil
}

// Purchase records a store purchase locally and pushes the new balances.
func (e *Engine) Purchase(itemID string, cost int64) error {
	progress := e.store.Progress()
	if progress.HasPurchase(itemID) {
		return fmt.Errorf("item %s already owned", itemID)
	}
	if progress.Gems < cost {
		return fmt.Errorf("insufficient gems: have %d, need %d", progress.Gems, cost)
	}

	progress.Gems -= cost
	progress.Purchases = append(progress.Purchases, itemID)
	if err := e.store.SetProgress(progress); err != nil {
		return fmt.Errorf("failed to commit purchase: %w", err)
	}

	e.pusher.Push(remote.ProgressDelta{
		Gems:      remote.Int64(progress.Gems),
		Purchases: []string{itemID},
	})
	e.emit(Event{Kind: EventProgressUpdated, At: e.now(), Progress: progress})
	return nil
}

// Gate exposes the gate for one activity kind, e.g. for Watch countdowns.
func (e *Engine) Gate(kind ActivityKind) (*Gate, error) {
	return e.gate(kind)
}

func (e *Engine) gate(kind ActivityKind) (*Gate, error) {
	gate, ok := e.gates[kind]
	if !ok {
		return nil, fmt.Errorf("no session gate configured for activity kind %q", kind)
	}
	return gate, nil
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}
