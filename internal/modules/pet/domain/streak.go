package domain

import (
	"time"

	activitydomain "dinod/internal/modules/activity/domain"
)

// Streak thresholds. Crossing one is a one-shot trigger; the counter resets
// so the reward cannot refire every tick.
const (
	CodingStreakThreshold = 30 * time.Minute
	SocialStreakThreshold = 15 * time.Minute
)

// Streaks counts consecutive seconds in a category group. Leaving the group
// resets its counter to zero. CodingBonus survives the one-shot counter reset
// and marks the earning multiplier active until the coding run ends.
type Streaks struct {
	Coding             float64 `json:"coding"`
	ProductiveBrowsing float64 `json:"productive_browsing"`
	Social             float64 `json:"social"`
	Browsing           float64 `json:"browsing"`
	CodingBonus        bool    `json:"coding_bonus"`
}

// StreakEvent is emitted when a counter crosses its threshold.
type StreakEvent string

const (
	StreakEventNone       StreakEvent = ""
	StreakEventCoding     StreakEvent = "coding"
	StreakEventSocialWarn StreakEvent = "social"
)

// Update advances the counters for one sampled interval and reports a
// threshold crossing, if any. The crossed counter resets.
func (s Streaks) Update(category activitydomain.Category, browsing bool, elapsed time.Duration) (Streaks, StreakEvent) {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return s, StreakEventNone
	}

	if category == activitydomain.CategoryCoding {
		s.Coding += seconds
	} else {
		s.Coding = 0
		s.CodingBonus = false
	}
	if category == activitydomain.CategorySocial {
		s.Social += seconds
	} else {
		s.Social = 0
	}
	if browsing {
		s.Browsing += seconds
		if category.Productive() {
			s.ProductiveBrowsing += seconds
		} else {
			s.ProductiveBrowsing = 0
		}
	} else {
		s.Browsing = 0
		s.ProductiveBrowsing = 0
	}

	if s.Coding >= CodingStreakThreshold.Seconds() {
		s.Coding = 0
		s.CodingBonus = true
		return s, StreakEventCoding
	}
	if s.Social >= SocialStreakThreshold.Seconds() {
		s.Social = 0
		return s, StreakEventSocialWarn
	}
	return s, StreakEventNone
}

// ResetDistractions clears the social and browsing counters. Taking a break
// forgives a doomscrolling run.
func (s Streaks) ResetDistractions() Streaks {
	s.Social = 0
	s.Browsing = 0
	return s
}

// Reset zeroes every counter. Used on day rollover.
func (s Streaks) Reset() Streaks {
	return Streaks{}
}
