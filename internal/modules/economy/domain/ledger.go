package domain

import (
	apperrors "dinod/internal/platform/errors"
)

// Milestones are total-earned levels, ascending. Each fires exactly once per
// ledger lifetime, including across day rollovers.
var Milestones = []int{10, 25, 50, 100, 200, 500, 1000}

// Earning multipliers. They apply only to positive base amounts; losses are
// felt at full strength regardless of the pet's condition.
const (
	StreakMultiplier        = 1.5
	HealthBonusMultiplier   = 1.2
	HealthPenaltyMultiplier = 0.5

	HealthBonusAbove   = 80.0
	HealthPenaltyBelow = 30.0
)

// Ledger is the dumpling account. Balance never goes below zero and
// TotalEarned only grows.
type Ledger struct {
	Balance       float64      `json:"balance"`
	TotalEarned   float64      `json:"total_earned"`
	SessionEarned float64      `json:"session_earned"`
	Fired         map[int]bool `json:"fired_milestones"`
}

func NewLedger() Ledger {
	return Ledger{Fired: map[int]bool{}}
}

// Settlement is the outcome of one earning interval.
type Settlement struct {
	Applied    float64
	Milestones []int
}

// Settle books rate×minutes against the ledger. Positive amounts run through
// the multiplier stack in fixed order (streak, health bonus, health penalty);
// negative amounts bypass it and are clamped so the balance stays at zero.
func (l Ledger) Settle(ratePerMinute, health float64, streakBonus bool, minutes float64) (Ledger, Settlement) {
	base := ratePerMinute * minutes
	if base > 0 {
		if streakBonus {
			base *= StreakMultiplier
		}
		if health > HealthBonusAbove {
			base *= HealthBonusMultiplier
		}
		if health < HealthPenaltyBelow {
			base *= HealthPenaltyMultiplier
		}
	}
	return l.apply(base)
}

// Award books a positive manual bonus, bypassing the multiplier stack.
func (l Ledger) Award(amount float64) (Ledger, Settlement) {
	if amount <= 0 {
		return l, Settlement{}
	}
	return l.apply(amount)
}

// Spend deducts cost atomically. The ledger is unchanged when funds are
// short. Spending does not touch TotalEarned or SessionEarned.
func (l Ledger) Spend(cost float64) (Ledger, error) {
	if cost < 0 {
		cost = 0
	}
	if l.Balance < cost {
		return l, apperrors.ErrInsufficientFunds
	}
	l.Balance -= cost
	return l, nil
}

// ResetSession zeroes the per-day counter. Fired milestones and the running
// totals survive.
func (l Ledger) ResetSession() Ledger {
	l.SessionEarned = 0
	return l
}

func (l Ledger) apply(delta float64) (Ledger, Settlement) {
	fired := make(map[int]bool, len(l.Fired))
	for level, done := range l.Fired {
		fired[level] = done
	}
	l.Fired = fired
	if delta >= 0 {
		l.Balance += delta
		l.TotalEarned += delta
		l.SessionEarned += delta
		return l, Settlement{Applied: delta, Milestones: l.crossMilestones()}
	}

	loss := -delta
	if loss > l.Balance {
		loss = l.Balance
	}
	l.Balance -= loss
	l.SessionEarned -= loss
	return l, Settlement{Applied: -loss}
}

func (l *Ledger) crossMilestones() []int {
	var crossed []int
	for _, level := range Milestones {
		if l.TotalEarned >= float64(level) && !l.Fired[level] {
			l.Fired[level] = true
			crossed = append(crossed, level)
		}
	}
	return crossed
}
