package domain

import (
	"testing"
	"time"

	activitydomain "dinod/internal/modules/activity/domain"
)

func TestApplyTickScalesByElapsed(t *testing.T) {
	t.Parallel()

	effect := activitydomain.Effect{HealthPerTick: 1.0, HappinessPerTick: 1.0}
	stats := Stats{Health: 50, Happiness: 50, Energy: 50}

	got := stats.ApplyTick(activitydomain.CategoryCoding, effect, 3*time.Second)
	if got.Health != 51 || got.Happiness != 51 {
		t.Fatalf("reference tick: health=%v happiness=%v, want 51/51", got.Health, got.Happiness)
	}

	got = stats.ApplyTick(activitydomain.CategoryCoding, effect, 6*time.Second)
	if got.Health != 52 || got.Happiness != 52 {
		t.Fatalf("double tick: health=%v happiness=%v, want 52/52", got.Health, got.Happiness)
	}
}

func TestApplyTickClampsToRange(t *testing.T) {
	t.Parallel()

	up := activitydomain.Effect{HealthPerTick: 50, HappinessPerTick: 50}
	got := Stats{Health: 90, Happiness: 90, Energy: 50}.ApplyTick(activitydomain.CategoryCoding, up, 6*time.Second)
	if got.Health != 100 || got.Happiness != 100 {
		t.Fatalf("upper clamp: %+v", got)
	}

	down := activitydomain.Effect{HealthPerTick: -50, HappinessPerTick: -50}
	got = Stats{Health: 10, Happiness: 10, Energy: 50}.ApplyTick(activitydomain.CategorySocial, down, 6*time.Second)
	if got.Health != 0 || got.Happiness != 0 {
		t.Fatalf("lower clamp: %+v", got)
	}
}

func TestApplyTickIdleDecay(t *testing.T) {
	t.Parallel()

	rested := Stats{Health: 50, Happiness: 50, Energy: 50}
	got := rested.ApplyTick(activitydomain.CategoryIdle, activitydomain.Effect{}, time.Hour)
	if got.Energy != 48 || got.Happiness != 49 || got.Health != 51 {
		t.Fatalf("rested idle hour: %+v, want energy 48 happiness 49 health 51", got)
	}

	drained := Stats{Health: 50, Happiness: 10, Energy: 50}
	got = drained.ApplyTick(activitydomain.CategoryIdle, activitydomain.Effect{}, time.Hour)
	if got.Health != 45 {
		t.Fatalf("drained idle hour: health=%v, want 45", got.Health)
	}
}

func TestCareActions(t *testing.T) {
	t.Parallel()

	base := Stats{Health: 40, Happiness: 40, Energy: 40}
	if got := base.Feed(); got.Health != 60 || got.Happiness != 55 {
		t.Fatalf("Feed: %+v", got)
	}
	if got := base.Pet(); got.Health != 45 || got.Happiness != 50 {
		t.Fatalf("Pet: %+v", got)
	}
	if got := base.Break(); got.Health != 55 || got.Energy != 60 || got.Happiness != 50 {
		t.Fatalf("Break: %+v", got)
	}
}

func TestNudgeClamps(t *testing.T) {
	t.Parallel()

	got := Stats{Health: 50, Happiness: 99.8, Energy: 0.1}.Nudge(1, -0.2)
	if got.Happiness != 100 || got.Energy != 0 {
		t.Fatalf("Nudge: %+v", got)
	}
}
