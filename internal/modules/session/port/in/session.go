package in

import (
	"context"

	"dinod/internal/modules/session/dto"
)

// Usecase is the application surface behind the CLI and the TUI. Mutating
// operations go through the daemon when it is running.
type Usecase interface {
	Status(ctx context.Context) (dto.StatusOutput, error)
	Feed(ctx context.Context) (dto.ActionOutput, error)
	Pet(ctx context.Context) (dto.ActionOutput, error)
	Break(ctx context.Context) (dto.ActionOutput, error)
	SyncNow(ctx context.Context) (int, error)
	RulesReload(ctx context.Context) error

	RunDaemon(ctx context.Context) error
	StartDaemon(ctx context.Context) error
	StopDaemon(ctx context.Context) error
	DaemonStatus(ctx context.Context) (dto.DaemonStatusOutput, error)
	DaemonLogs(ctx context.Context, tail int) (string, error)
}
