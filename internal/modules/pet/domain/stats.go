package domain

import (
	"time"

	activitydomain "dinod/internal/modules/activity/domain"
)

// ReferenceTick is the sampling interval the per-tick effect values are
// calibrated for. Longer or shorter elapsed intervals scale linearly.
const ReferenceTick = 3 * time.Second

// Stats are the pet's vital signs, each clamped to [0,100].
type Stats struct {
	Health    float64 `json:"health"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`
}

func DefaultStats() Stats {
	return Stats{Health: 100, Happiness: 50, Energy: 50}
}

// ApplyTick applies one sampled interval of the given category effect. Idle
// intervals regenerate health while the pet is rested and fed, and slowly
// drain energy and happiness.
func (s Stats) ApplyTick(category activitydomain.Category, effect activitydomain.Effect, elapsed time.Duration) Stats {
	if elapsed <= 0 {
		return s
	}
	if category == activitydomain.CategoryIdle {
		return s.applyIdle(elapsed)
	}
	scale := float64(elapsed) / float64(ReferenceTick)
	s.Health += effect.HealthPerTick * scale
	s.Happiness += effect.HappinessPerTick * scale
	return s.clamped()
}

func (s Stats) applyIdle(elapsed time.Duration) Stats {
	hours := elapsed.Hours()
	s.Energy -= 2 * hours
	s.Happiness -= 1 * hours
	if s.Energy >= 20 && s.Happiness >= 20 {
		s.Health += 1 * hours
	} else {
		s.Health -= 5 * hours
	}
	return s.clamped()
}

// Nudge shifts happiness and energy by the settlement side effect of an
// earning interval.
func (s Stats) Nudge(happiness, energy float64) Stats {
	s.Happiness += happiness
	s.Energy += energy
	return s.clamped()
}

// Feed, Pet and Break are the manual care actions. Costs and bonuses are the
// caller's concern; these only move the stats.

func (s Stats) Feed() Stats {
	s.Health += 20
	s.Happiness += 15
	return s.clamped()
}

func (s Stats) Pet() Stats {
	s.Health += 5
	s.Happiness += 10
	return s.clamped()
}

func (s Stats) Break() Stats {
	s.Health += 15
	s.Energy += 20
	s.Happiness += 10
	return s.clamped()
}

func (s Stats) clamped() Stats {
	s.Health = clamp(s.Health)
	s.Happiness = clamp(s.Happiness)
	s.Energy = clamp(s.Energy)
	return s
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
