package usecase

import (
	"context"

	"dinod/internal/modules/activity/domain"
	"dinod/internal/modules/activity/dto"
	activityin "dinod/internal/modules/activity/port/in"
	"dinod/internal/modules/activity/service"
)

type Interactor struct {
	svc *service.ClassifierService
}

func NewInteractor(svc *service.ClassifierService) activityin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Classify(ctx context.Context, input dto.SignalInput, health float64) (dto.ClassificationOutput, error) {
	classification := i.svc.Classify(ctx, domain.Signal{
		AppName: input.AppName,
		URL:     input.URL,
		Title:   input.Title,
	}, health)
	effect := i.svc.Effect(classification.Category)
	return dto.ClassificationOutput{
		Category:         string(classification.Category),
		State:            string(classification.State),
		Browsing:         classification.Browsing,
		Domain:           classification.Domain,
		Productive:       classification.Category.Productive(),
		HealthPerTick:    effect.HealthPerTick,
		HappinessPerTick: effect.HappinessPerTick,
		RatePerMinute:    effect.RatePerMinute,
	}, nil
}

func (i *Interactor) Reload(ctx context.Context) error {
	return i.svc.Reload(ctx)
}

func (i *Interactor) Overrides(_ context.Context) ([]dto.RuleOutput, error) {
	rules := i.svc.Overrides()
	out := make([]dto.RuleOutput, 0, len(rules))
	for _, rule := range rules {
		out = append(out, dto.RuleOutput{
			Match:    string(rule.Match),
			Pattern:  rule.Pattern,
			Category: string(rule.Category),
		})
	}
	return out, nil
}
