package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gridspace-io/gridspace/internal/config"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Plans.Free = config.PlanLimitCfg{Workspaces: 1, Tables: 3, RowsPerTable: 100}
	cfg.Plans.Basic = config.PlanLimitCfg{Workspaces: 5, Tables: 20, RowsPerTable: 10000}
	cfg.Plans.Pro = config.PlanLimitCfg{Workspaces: -1, Tables: -1, RowsPerTable: -1}
	return cfg
}

func TestLimits_For(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		sub      *model.Subscription
		err      error
		wantPlan model.Plan
		wantRows int
	}{
		{"no subscription", nil, repo.ErrNotFound, model.PlanFree, 100},
		{"active basic", &model.Subscription{Plan: model.PlanBasic, Status: "active"}, nil, model.PlanBasic, 10000},
		{"trialing pro", &model.Subscription{Plan: model.PlanPro, Status: "trialing"}, nil, model.PlanPro, model.Unlimited},
		{"past due pro", &model.Subscription{Plan: model.PlanPro, Status: "past_due"}, nil, model.PlanFree, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &MockSubscriptionRepo{}
			if tt.sub == nil {
				subs.On("GetByUserID", ctx, "u1").Return(nil, tt.err)
			} else {
				subs.On("GetByUserID", ctx, "u1").Return(tt.sub, tt.err)
			}

			plan, pl, err := NewLimits(subs, testConfig()).For(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlan, plan)
			assert.Equal(t, tt.wantRows, pl.RowsPerTable)
		})
	}

	t.Run("store error", func(t *testing.T) {
		subs := &MockSubscriptionRepo{}
		subs.On("GetByUserID", ctx, "u1").Return(nil, errors.New("db down"))

		_, _, err := NewLimits(subs, testConfig()).For(ctx, "u1")
		assert.Error(t, err)
	})
}
