package out

import (
	"context"

	"dinod/internal/modules/activity/domain"
)

// RuleStore loads the classification table. Load merges user configuration
// over the built-in defaults.
type RuleStore interface {
	Load(ctx context.Context) (domain.Ruleset, error)
}

// Provider samples the foreground activity. Implementations may block on
// external I/O and must return apperrors.ErrActivityUnavailable (wrapped or
// not) when no signal can be obtained.
type Provider interface {
	Sample(ctx context.Context) (domain.Signal, error)
}
