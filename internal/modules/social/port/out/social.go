package out

import (
	"context"

	"dinod/internal/modules/social/domain"
)

// PresenceClient talks to the shared leaderboard. A nil client means
// local-only mode.
type PresenceClient interface {
	Push(ctx context.Context, presence domain.Presence) error
	List(ctx context.Context) ([]domain.Presence, error)
}
