package in

import (
	"context"

	"dinod/internal/modules/session/dto"
	sessionin "dinod/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) Feed(ctx context.Context) (dto.ActionOutput, error) {
	return h.usecase.Feed(ctx)
}

func (h CLIHandler) Pet(ctx context.Context) (dto.ActionOutput, error) {
	return h.usecase.Pet(ctx)
}

func (h CLIHandler) Break(ctx context.Context) (dto.ActionOutput, error) {
	return h.usecase.Break(ctx)
}

func (h CLIHandler) SyncNow(ctx context.Context) (int, error) {
	return h.usecase.SyncNow(ctx)
}

func (h CLIHandler) RulesReload(ctx context.Context) error {
	return h.usecase.RulesReload(ctx)
}

func (h CLIHandler) RunDaemon(ctx context.Context) error {
	return h.usecase.RunDaemon(ctx)
}

func (h CLIHandler) StartDaemon(ctx context.Context) error {
	return h.usecase.StartDaemon(ctx)
}

func (h CLIHandler) StopDaemon(ctx context.Context) error {
	return h.usecase.StopDaemon(ctx)
}

func (h CLIHandler) DaemonStatus(ctx context.Context) (dto.DaemonStatusOutput, error) {
	return h.usecase.DaemonStatus(ctx)
}

func (h CLIHandler) DaemonLogs(ctx context.Context, tail int) (string, error) {
	return h.usecase.DaemonLogs(ctx, tail)
}
