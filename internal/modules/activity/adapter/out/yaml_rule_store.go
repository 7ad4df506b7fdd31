package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dinod/internal/modules/activity/domain"
	activityout "dinod/internal/modules/activity/port/out"
)

// YAMLRuleStore persists the classification table as a YAML file. On first
// load it writes the built-in defaults so users have a file to edit.
type YAMLRuleStore struct {
	path string
}

var _ activityout.RuleStore = (*YAMLRuleStore)(nil)

func NewYAMLRuleStore(path string) *YAMLRuleStore {
	return &YAMLRuleStore{path: path}
}

func (s *YAMLRuleStore) Load(_ context.Context) (domain.Ruleset, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		rules := domain.DefaultRuleset()
		if err := s.write(rules); err != nil {
			return domain.Ruleset{}, err
		}
		return rules, nil
	}
	if err != nil {
		return domain.Ruleset{}, fmt.Errorf("read rules file: %w", err)
	}

	var loaded domain.Ruleset
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return domain.Ruleset{}, fmt.Errorf("parse rules file: %w", err)
	}
	return merged(loaded), nil
}

func (s *YAMLRuleStore) write(rules domain.Ruleset) error {
	raw, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write rules file: %w", err)
	}
	return nil
}

// merged fills gaps in a user file with built-in defaults. Sections the user
// wrote replace the defaults wholesale; absent sections fall through.
func merged(loaded domain.Ruleset) domain.Ruleset {
	defaults := domain.DefaultRuleset()
	if len(loaded.Browsers) == 0 {
		loaded.Browsers = defaults.Browsers
	}
	if len(loaded.Apps) == 0 {
		loaded.Apps = defaults.Apps
	}
	if len(loaded.Domains) == 0 {
		loaded.Domains = defaults.Domains
	}
	if len(loaded.Keywords) == 0 {
		loaded.Keywords = defaults.Keywords
	}
	if loaded.Effects == nil {
		loaded.Effects = defaults.Effects
	} else {
		for category, effect := range defaults.Effects {
			if _, ok := loaded.Effects[category]; !ok {
				loaded.Effects[category] = effect
			}
		}
	}
	return loaded
}
