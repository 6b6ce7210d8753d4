package repo

import (
	"context"

	"github.com/gridspace-io/gridspace/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepo interface {
	GetByUserID(ctx context.Context, userID string) (*model.Subscription, error)
	// Upsert inserts s or, when a subscription for s.UserID exists, overwrites only columns.
	Upsert(ctx context.Context, s *model.Subscription, columns ...string) error
	HasEvent(ctx context.Context, eventID string) (bool, error)
	RecordEvent(ctx context.Context, ev *model.BillingEvent) error
}

type subscriptionRepo struct{ db *gorm.DB }

func NewSubscriptionRepo(db *gorm.DB) SubscriptionRepo {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	var s model.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, s *model.Subscription, columns ...string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(s).Error
}

func (r *subscriptionRepo) HasEvent(ctx context.Context, eventID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.BillingEvent{}).Where("id = ?", eventID).Limit(1).Count(&n).Error
	return n > 0, err
}

// RecordEvent stores ev; a concurrent delivery of the same event is ignored.
func (r *subscriptionRepo) RecordEvent(ctx context.Context, ev *model.BillingEvent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(ev).Error
}
