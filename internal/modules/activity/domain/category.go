package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category is the taxonomy bucket an observed activity falls into.
type Category string

const (
	CategoryCoding        Category = "coding"
	CategoryWork          Category = "work"
	CategoryLearning      Category = "learning"
	CategoryDesigning     Category = "designing"
	CategorySocial        Category = "social"
	CategoryNews          Category = "news"
	CategoryEntertainment Category = "entertainment"
	CategoryGaming        Category = "gaming"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
	CategoryIdle          Category = "idle"
)

func Categories() []Category {
	return []Category{
		CategoryCoding, CategoryWork, CategoryLearning, CategoryDesigning,
		CategorySocial, CategoryNews, CategoryEntertainment, CategoryGaming,
		CategoryShopping, CategoryOther, CategoryIdle,
	}
}

func (c Category) Validate() error {
	for _, known := range Categories() {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCategory, c)
}

// Productive categories advance streaks and the break-due counter.
func (c Category) Productive() bool {
	switch c {
	case CategoryCoding, CategoryWork, CategoryLearning, CategoryDesigning:
		return true
	default:
		return false
	}
}

// Effect holds the per-category tick modifiers and earning rate. Health and
// happiness modifiers are per reference tick (3s); the currency rate is per
// minute and may be negative.
type Effect struct {
	HealthPerTick    float64 `yaml:"health_per_tick"`
	HappinessPerTick float64 `yaml:"happiness_per_tick"`
	RatePerMinute    float64 `yaml:"rate_per_minute"`
}

func DefaultEffects() map[Category]Effect {
	return map[Category]Effect{
		CategoryCoding:        {HealthPerTick: 1.0, HappinessPerTick: 1.0, RatePerMinute: 2.0},
		CategoryWork:          {HealthPerTick: 0.5, HappinessPerTick: 0.5, RatePerMinute: 1.0},
		CategoryLearning:      {HealthPerTick: 0.5, HappinessPerTick: 0.45, RatePerMinute: 1.8},
		CategoryDesigning:     {HealthPerTick: 0.5, HappinessPerTick: 1.0, RatePerMinute: 1.5},
		CategorySocial:        {HealthPerTick: -0.5, HappinessPerTick: 0.15, RatePerMinute: -0.2},
		CategoryNews:          {HealthPerTick: -0.25, HappinessPerTick: 0, RatePerMinute: -0.1},
		CategoryEntertainment: {HealthPerTick: -0.75, HappinessPerTick: 0.6, RatePerMinute: -0.3},
		CategoryGaming:        {HealthPerTick: -0.25, HappinessPerTick: 0.9, RatePerMinute: -0.4},
		CategoryShopping:      {HealthPerTick: -0.25, HappinessPerTick: 0.3, RatePerMinute: -0.15},
		CategoryOther:         {},
		CategoryIdle:          {},
	}
}

// DinoState is the display state derived from a category plus health. It is
// never stored independently of the classification that produced it.
type DinoState string

const (
	StateIdle      DinoState = "idle"
	StateWorking   DinoState = "working"
	StateCoding    DinoState = "coding"
	StateDesigning DinoState = "designing"
	StateGaming    DinoState = "gaming"
	StateEating    DinoState = "eating"
	StateExcited   DinoState = "excited"
	StateSick      DinoState = "sick"
	StateDead      DinoState = "dead"
)

func BrowsingState(c Category) DinoState {
	return DinoState("browsing_" + string(c))
}

// DeriveState maps a classification to its display state. Low health overrides
// the category-derived state for display only; the category itself is
// untouched and stat/economy math keeps using it.
func DeriveState(c Category, browsing bool, health float64) DinoState {
	if health <= 0 {
		return StateDead
	}
	if health < 20 {
		return StateSick
	}
	if browsing {
		return BrowsingState(c)
	}
	switch c {
	case CategoryCoding:
		return StateCoding
	case CategoryWork, CategoryLearning:
		return StateWorking
	case CategoryDesigning:
		return StateDesigning
	case CategoryGaming:
		return StateGaming
	default:
		return StateIdle
	}
}
