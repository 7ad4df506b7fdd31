package in

import (
	"context"

	"dinod/internal/modules/activity/dto"
)

type Usecase interface {
	Classify(ctx context.Context, input dto.SignalInput, health float64) (dto.ClassificationOutput, error)
	Reload(ctx context.Context) error
	Overrides(ctx context.Context) ([]dto.RuleOutput, error)
}
