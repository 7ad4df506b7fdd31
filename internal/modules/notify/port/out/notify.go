package out

import (
	"context"

	"dinod/internal/modules/notify/domain"
)

// Notifier delivers a notification to the user. Failures are advisory; the
// caller logs and moves on.
type Notifier interface {
	Notify(ctx context.Context, kind domain.EventKind, title, subtitle, body string) error
}
