package domain

import "time"

// EventKind names a notification trigger.
type EventKind string

const (
	EventHealthCritical  EventKind = "health_critical"
	EventHealthWarning   EventKind = "health_warning"
	EventBreakDue        EventKind = "break_due"
	EventMilestone       EventKind = "milestone"
	EventSocialOvertaken EventKind = "social_overtaken"
	EventWebsiteChanged  EventKind = "website_changed"
	EventStreakReward    EventKind = "streak_reward"
)

// Trigger thresholds.
const (
	HealthCriticalBelow = 30.0
	HealthWarningBelow  = 50.0
	BreakInterval       = 45 * time.Minute
	OvertakeMargin      = 1.0
)

// minInterval is the minimum gap between two notifications of the same kind.
// A zero entry means the kind is edge-triggered and never throttled.
var minInterval = map[EventKind]time.Duration{
	EventHealthCritical:  10 * time.Minute,
	EventHealthWarning:   15 * time.Minute,
	EventBreakDue:        45 * time.Minute,
	EventSocialOvertaken: 5 * time.Minute,
	EventMilestone:       0,
	EventWebsiteChanged:  0,
	EventStreakReward:    0,
}

// Allow reports whether a notification of the given kind may fire at now.
// lastFired is the zero time when the kind has never fired. Recording the
// fire is the caller's job, after dispatch succeeds.
func Allow(kind EventKind, lastFired, now time.Time) bool {
	interval, ok := minInterval[kind]
	if !ok || interval == 0 {
		return true
	}
	if lastFired.IsZero() {
		return true
	}
	return now.Sub(lastFired) >= interval
}

// BreakDue reports whether productive time since the last break has crossed
// another 45-minute multiple.
func BreakDue(productiveSinceBreak, elapsed time.Duration) bool {
	if elapsed <= 0 {
		return false
	}
	before := int(productiveSinceBreak / BreakInterval)
	after := int((productiveSinceBreak + elapsed) / BreakInterval)
	return after > before
}
