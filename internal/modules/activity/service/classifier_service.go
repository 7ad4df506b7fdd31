package service

import (
	"context"
	"fmt"
	"sync"

	"dinod/internal/modules/activity/domain"
	activityout "dinod/internal/modules/activity/port/out"
)

// ClassifierService holds the active ruleset and answers classification
// queries. Reload swaps the table atomically so the daemon never restarts for
// a rules change.
type ClassifierService struct {
	mu    sync.RWMutex
	rules domain.Ruleset
	store activityout.RuleStore
}

func NewClassifierService(store activityout.RuleStore) (*ClassifierService, error) {
	s := &ClassifierService{store: store, rules: domain.DefaultRuleset()}
	if store != nil {
		if err := s.Reload(context.Background()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *ClassifierService) Reload(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	rules, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	for _, rule := range rules.Overrides {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("override %q: %w", rule.Pattern, err)
		}
	}
	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
	return nil
}

func (s *ClassifierService) Classify(_ context.Context, sig domain.Signal, health float64) domain.Classification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.Classify(sig, health)
}

func (s *ClassifierService) Effect(category domain.Category) domain.Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if effect, ok := s.rules.Effects[category]; ok {
		return effect
	}
	return domain.Effect{}
}

func (s *ClassifierService) Overrides() []domain.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Rule, len(s.rules.Overrides))
	copy(out, s.rules.Overrides)
	return out
}
