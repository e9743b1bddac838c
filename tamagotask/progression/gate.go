package progression

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/storage"
	"github.com/tamagotask/tamagotask/tamagotask/utils"
)

// Gate decides whether a new activity of one class may start, based on the
// elapsed cooldown and a rolling daily counter. The daily counter is keyed
// by the local calendar date: any evaluation on a new date resets it before
// the cap is checked.
type Gate struct {
	class    string
	cooldown time.Duration
	dailyCap int
	store    *storage.ProgressStore
	now      func() time.Time

	mu         sync.Mutex
	session    storage.SessionState
	loaded     bool
	loadWarned bool
}

// GateConfig holds the per-class constants.
type GateConfig struct {
	Class    string
	Cooldown time.Duration
	DailyCap int
}

func NewGate(cfg GateConfig, store *storage.ProgressStore) *Gate {
	return &Gate{
		class:    cfg.Class,
		cooldown: cfg.Cooldown,
		dailyCap: cfg.DailyCap,
		store:    store,
		now:      time.Now,
	}
}

// SetClock overrides the gate's clock. Tests use this to simulate elapsed
// time and date rollovers.
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Check evaluates the gate without mutating any counters.
func (g *Gate) Check() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.evaluate()
}

// Begin rejects with a typed GateError unless the gate is available. It
// never mutates state: a rejected attempt earns no partial credit.
func (g *Gate) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch st := g.evaluate(); st.State {
	case StateDailyCapReached:
		return &GateError{Reason: ReasonDailyCap}
	case StateOnCooldown:
		return &GateError{Reason: ReasonCooldown, SecondsRemaining: st.SecondsRemaining}
	default:
		return nil
	}
}

// Complete records a finished activity: the daily counter advances and the
// cooldown window restarts. The updated state is persisted synchronously.
func (g *Gate) Complete() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.ensureLoaded(); err != nil {
		return err
	}
	g.rollover()

	g.session.CompletedToday++
	g.session.LastActivityAt = g.now()
	g.session.LastResetDate = utils.LocalDate(g.now())
	return g.store.SetSession(g.class, g.session)
}

// RemainingToday returns how many activities may still be completed today.
func (g *Gate) RemainingToday() int {
	return g.Check().RemainingToday
}

// CooldownSecondsRemaining returns the seconds until the cooldown clears,
// or 0 when no cooldown is active.
func (g *Gate) CooldownSecondsRemaining() int {
	st := g.Check()
	if st.State != StateOnCooldown {
		return 0
	}
	return st.SecondsRemaining
}

// Watch re-evaluates the gate at the given interval and reports each status
// to fn. It returns when ctx is cancelled; the UI owning the countdown
// cancels the context when it goes away.
func (g *Gate) Watch(ctx context.Context, interval time.Duration, fn func(Status)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(g.Check())
		}
	}
}

func (g *Gate) evaluate() Status {
	if err := g.ensureLoaded(); err != nil {
		// An unreadable session file degrades to "available": the gate is
		// a convenience limiter, not a trust boundary. Warned once so a
		// corrupt file shows up without flooding every poll.
		if !g.loadWarned {
			slog.Warn("Failed to load session state, treating gate as available",
				slog.String("type", "game"),
				slog.String("class", g.class),
				slog.Any("error", err))
			g.loadWarned = true
		}
		return Status{State: StateAvailable, RemainingToday: g.dailyCap}
	}
	g.rollover()

	remaining := g.dailyCap - g.session.CompletedToday
	if remaining <= 0 {
		return Status{State: StateDailyCapReached, RemainingToday: 0}
	}

	if !g.session.LastActivityAt.IsZero() {
		elapsed := g.now().Sub(g.session.LastActivityAt)
		if elapsed < g.cooldown {
			secs := int(math.Ceil((g.cooldown - elapsed).Seconds()))
			return Status{
				State:            StateOnCooldown,
				SecondsRemaining: secs,
				RemainingToday:   remaining,
			}
		}
	}

	return Status{State: StateAvailable, RemainingToday: remaining}
}

// rollover clears the daily counter when the stored date is not today. The
// cleared state is not persisted here; it is written with the next
// completion, and a restart re-derives the same answer from the stored date.
func (g *Gate) rollover() {
	today := utils.LocalDate(g.now())
	if g.session.LastResetDate != today {
		g.session.CompletedToday = 0
		g.session.LastResetDate = today
	}
}

func (g *Gate) ensureLoaded() error {
	if g.loaded {
		return nil
	}
	session, err := g.store.Session(g.class)
	if err != nil {
		return err
	}
	g.session = session
	g.loaded = true
	return nil
}
