package progression

import (
	"fmt"
	"math"
	"math/rand"
)

// RewardConfig carries the XP tuning knobs.
type RewardConfig struct {
	// Sequence recall: base + per-difficulty, plus a bonus per unit of
	// outcome beyond the threshold.
	SequenceBase           int
	SequencePerDifficulty  int
	SequenceBonusThreshold float64
	SequenceBonusPerUnit   float64

	// Reflex timing: stepped base by reaction time (ms), fastest first.
	ReflexTiers []ReflexTier
	ReflexFloor int

	// Shared multipliers and limits.
	DifficultyStep float64
	MaxXP          int
	MinXP          int
	PetShare       float64

	// Critical rewards (opt-in path only).
	CriticalChance float64
	CriticalBonus  float64
}

type ReflexTier struct {
	UnderMillis float64
	XP          int
}

func NewDefaultRewardConfig() *RewardConfig {
	return &RewardConfig{
		SequenceBase:           20,
		SequencePerDifficulty:  5,
		SequenceBonusThreshold: 5,
		SequenceBonusPerUnit:   2,
		ReflexTiers: []ReflexTier{
			{UnderMillis: 200, XP: 50},
			{UnderMillis: 300, XP: 40},
			{UnderMillis: 400, XP: 35},
		},
		ReflexFloor:    30,
		DifficultyStep: 0.1,
		MaxXP:          50,
		MinXP:          1,
		PetShare:       0.15,
		CriticalChance: 0.10,
		CriticalBonus:  1.5,
	}
}

// Calculator maps a completed activity to its reward. Compute is pure and
// deterministic; randomness only enters through ComputeWithCritical.
type Calculator struct {
	config *RewardConfig
}

func NewCalculator(config *RewardConfig) *Calculator {
	if config == nil {
		config = NewDefaultRewardConfig()
	}
	return &Calculator{config: config}
}

// Compute returns the reward for an activity. XP is clamped to
// [MinXP, MaxXP] and is non-decreasing in difficulty for a fixed outcome.
func (c *Calculator) Compute(kind ActivityKind, difficulty int, outcome float64) (Reward, error) {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return Reward{}, fmt.Errorf("difficulty %d out of range [%d,%d]", difficulty, MinDifficulty, MaxDifficulty)
	}

	var base float64
	switch kind {
	case ActivitySequenceRecall:
		base = float64(c.config.SequenceBase + c.config.SequencePerDifficulty*difficulty)
		if outcome > c.config.SequenceBonusThreshold {
			base += c.config.SequenceBonusPerUnit * (outcome - c.config.SequenceBonusThreshold)
		}
	case ActivityReflexTiming:
		base = float64(c.reflexBase(outcome))
	default:
		return Reward{}, fmt.Errorf("unknown activity kind %q", kind)
	}

	multiplier := 1 + c.config.DifficultyStep*float64(difficulty-1)
	// Round away float noise before the ceiling, otherwise 30 * 1.1
	// ceils to 34.
	xp := int(math.Ceil(math.Round(base*multiplier*1e9) / 1e9))
	if xp > c.config.MaxXP {
		xp = c.config.MaxXP
	}
	if xp < c.config.MinXP {
		xp = c.config.MinXP
	}

	return Reward{
		XP:    xp,
		PetXP: int(math.Ceil(float64(xp) * c.config.PetShare)),
	}, nil
}

// ComputeWithCritical rolls a critical bonus on top of Compute. The bonus
// applies before the XP ceiling, so a critical near the cap can be a no-op.
func (c *Calculator) ComputeWithCritical(kind ActivityKind, difficulty int, outcome float64, rng *rand.Rand) (Reward, bool, error) {
	reward, err := c.Compute(kind, difficulty, outcome)
	if err != nil {
		return Reward{}, false, err
	}

	if rng.Float64() >= c.config.CriticalChance {
		return reward, false, nil
	}

	xp := int(math.Ceil(float64(reward.XP) * c.config.CriticalBonus))
	if xp > c.config.MaxXP {
		xp = c.config.MaxXP
	}
	reward.XP = xp
	reward.PetXP = int(math.Ceil(float64(xp) * c.config.PetShare))
	return reward, true, nil
}

func (c *Calculator) reflexBase(reactionMillis float64) int {
	for _, tier := range c.config.ReflexTiers {
		if reactionMillis < tier.UnderMillis {
			return tier.XP
		}
	}
	return c.config.ReflexFloor
}
