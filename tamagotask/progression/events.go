package progression

import (
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/storage"
)

// EventKind enumerates the typed notifications the engine emits toward its
// UI consumer. This replaces string-keyed broadcast events: a subscriber
// switches on the kind and reads only the fields that kind populates.
type EventKind string

const (
	EventProgressUpdated EventKind = "progress_updated"
	EventStreakAdvanced  EventKind = "streak_advanced"
	EventPetXPGained     EventKind = "pet_xp_gained"
	EventSessionRejected EventKind = "session_rejected"
)

type Event struct {
	Kind EventKind
	At   time.Time

	// EventProgressUpdated / EventPetXPGained
	Activity ActivityKind
	Reward   Reward
	Progress storage.ProgressState

	// EventStreakAdvanced
	Streak storage.StreakState

	// EventSessionRejected
	Reason           RejectReason
	SecondsRemaining int
}

// Listener receives engine events. Listeners run synchronously on the
// caller's goroutine and must not block.
type Listener func(Event)
