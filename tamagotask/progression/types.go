package progression

import "fmt"

// ActivityKind identifies a reward-granting activity class.
type ActivityKind string

const (
	// ActivitySequenceRecall is the memory mini-game; outcome is the
	// longest sequence recalled.
	ActivitySequenceRecall ActivityKind = "sequence_recall"
	// ActivityReflexTiming is the reaction mini-game; outcome is the
	// reaction time in milliseconds, lower is better.
	ActivityReflexTiming ActivityKind = "reflex_timing"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Reward is the outcome of a completed activity. PetXP is the companion's
// share, credited alongside the player's XP.
type Reward struct {
	XP    int
	PetXP int
}

// GateState is the session gate's decision for an activity class.
type GateState string

const (
	StateIdle            GateState = "idle"
	StateAvailable       GateState = "available"
	StateOnCooldown      GateState = "on_cooldown"
	StateDailyCapReached GateState = "daily_cap_reached"
)

// Status is a point-in-time evaluation of the gate.
type Status struct {
	State            GateState
	SecondsRemaining int
	RemainingToday   int
}

// RejectReason classifies a gate rejection.
type RejectReason string

const (
	ReasonCooldown RejectReason = "cooldown"
	ReasonDailyCap RejectReason = "daily-cap"
)

// GateError is returned when an activity is attempted while the gate is not
// available. It never accompanies a state mutation.
type GateError struct {
	Reason           RejectReason
	SecondsRemaining int
}

func (e *GateError) Error() string {
	if e.Reason == ReasonCooldown {
		return fmt.Sprintf("activity on cooldown for %ds", e.SecondsRemaining)
	}
	return "daily activity cap reached"
}
