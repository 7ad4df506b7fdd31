package domain

import (
	"testing"
	"time"
)

func TestAllowThrottlesByKind(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if !Allow(EventHealthCritical, time.Time{}, start) {
		t.Fatal("first critical must be allowed")
	}
	if Allow(EventHealthCritical, start, start.Add(9*time.Minute)) {
		t.Fatal("critical refired inside 10 minutes")
	}
	if !Allow(EventHealthCritical, start, start.Add(10*time.Minute)) {
		t.Fatal("critical blocked at the 10 minute boundary")
	}
	if Allow(EventHealthWarning, start, start.Add(14*time.Minute)) {
		t.Fatal("warning refired inside 15 minutes")
	}
}

func TestAllowSinglePermittedWithinWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	lastFired := time.Time{}
	fired := 0
	for i := 0; i < 20; i++ {
		now := start.Add(time.Duration(i) * 30 * time.Second)
		if Allow(EventHealthCritical, lastFired, now) {
			fired++
			lastFired = now
		}
	}
	// 20 ticks cover 9.5 minutes: exactly one notification fits.
	if fired != 1 {
		t.Fatalf("fired %d criticals in under 10 minutes, want 1", fired)
	}
}

func TestAllowEdgeTriggeredKinds(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, kind := range []EventKind{EventMilestone, EventWebsiteChanged, EventStreakReward} {
		if !Allow(kind, now.Add(-time.Second), now) {
			t.Fatalf("%s must never be throttled", kind)
		}
	}
}

func TestBreakDue(t *testing.T) {
	t.Parallel()

	if BreakDue(44*time.Minute, 30*time.Second) {
		t.Fatal("break due before the 45 minute mark")
	}
	if !BreakDue(44*time.Minute+45*time.Second, 30*time.Second) {
		t.Fatal("break not due crossing 45 minutes")
	}
	if !BreakDue(89*time.Minute+45*time.Second, 30*time.Second) {
		t.Fatal("break not due crossing the second multiple")
	}
	if BreakDue(50*time.Minute, 0) {
		t.Fatal("zero elapsed must not trigger")
	}
}
