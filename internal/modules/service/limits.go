package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridspace-io/gridspace/internal/config"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
)

// Limits resolves the effective plan of a user and its quotas.
type Limits interface {
	For(ctx context.Context, userID string) (model.Plan, model.PlanLimits, error)
	Of(plan model.Plan) model.PlanLimits
}

type limits struct {
	subs  repo.SubscriptionRepo
	plans map[model.Plan]model.PlanLimits
}

func NewLimits(subs repo.SubscriptionRepo, cfg *config.Config) Limits {
	return &limits{subs: subs, plans: PlanLimitsFromConfig(cfg)}
}

func PlanLimitsFromConfig(cfg *config.Config) map[model.Plan]model.PlanLimits {
	conv := func(c config.PlanLimitCfg) model.PlanLimits {
		return model.PlanLimits{Workspaces: c.Workspaces, Tables: c.Tables, RowsPerTable: c.RowsPerTable}
	}
	return map[model.Plan]model.PlanLimits{
		model.PlanFree:  conv(cfg.Plans.Free),
		model.PlanBasic: conv(cfg.Plans.Basic),
		model.PlanPro:   conv(cfg.Plans.Pro),
	}
}

func (l *limits) For(ctx context.Context, userID string) (model.Plan, model.PlanLimits, error) {
	sub, err := l.subs.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return "", model.PlanLimits{}, fmt.Errorf("load subscription: %w", err)
	}
	plan := sub.EffectivePlan()
	return plan, l.Of(plan), nil
}

// Of returns the quotas of plan; unknown plans get the free quotas.
func (l *limits) Of(plan model.Plan) model.PlanLimits {
	if pl, ok := l.plans[plan]; ok {
		return pl
	}
	return l.plans[model.PlanFree]
}

func planLimitErr(plan model.Plan, what string, limit int) error {
	return fmt.Errorf("%w: the %s plan allows %d %s", ErrPlanLimit, plan, limit, what)
}
