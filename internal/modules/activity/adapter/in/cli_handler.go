package in

import (
	"context"

	"dinod/internal/modules/activity/dto"
	activityin "dinod/internal/modules/activity/port/in"
)

type CLIHandler struct {
	usecase activityin.Usecase
}

func NewCLIHandler(usecase activityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Classify(ctx context.Context, input dto.SignalInput, health float64) (dto.ClassificationOutput, error) {
	return h.usecase.Classify(ctx, input, health)
}

func (h CLIHandler) Reload(ctx context.Context) error {
	return h.usecase.Reload(ctx)
}

func (h CLIHandler) Overrides(ctx context.Context) ([]dto.RuleOutput, error) {
	return h.usecase.Overrides(ctx)
}
