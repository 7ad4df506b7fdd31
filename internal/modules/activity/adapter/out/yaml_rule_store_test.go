package out

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dinod/internal/modules/activity/domain"
)

func TestYAMLRuleStoreWritesDefaultsOnFirstLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	store := NewYAMLRuleStore(path)

	rules, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rules.Domains) == 0 {
		t.Fatal("expected built-in domain rules")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected rules file on disk: %v", err)
	}

	again, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load again: %v", err)
	}
	if len(again.Domains) != len(rules.Domains) {
		t.Fatalf("reloaded %d domain rules, want %d", len(again.Domains), len(rules.Domains))
	}
}

func TestYAMLRuleStoreMergesUserOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	user := `overrides:
  - match: domain
    pattern: github.com
    category: social
effects:
  coding:
    health_per_tick: 2.0
    happiness_per_tick: 1.0
    rate_per_minute: 4.0
`
	if err := os.WriteFile(path, []byte(user), 0o644); err != nil {
		t.Fatalf("write user file: %v", err)
	}

	rules, err := NewYAMLRuleStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rules.Overrides) != 1 || rules.Overrides[0].Category != domain.CategorySocial {
		t.Fatalf("overrides = %+v, want github.com->social", rules.Overrides)
	}
	if got := rules.Effects[domain.CategoryCoding].RatePerMinute; got != 4.0 {
		t.Fatalf("coding rate = %v, want user value 4.0", got)
	}
	if _, ok := rules.Effects[domain.CategoryGaming]; !ok {
		t.Fatal("expected default effects to backfill missing categories")
	}
	if len(rules.Browsers) == 0 || len(rules.Domains) == 0 {
		t.Fatal("expected default tables to backfill missing sections")
	}
}

func TestYAMLRuleStoreRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("browsers: {not: [a, list"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewYAMLRuleStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}
