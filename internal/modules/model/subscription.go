package model

import (
	"time"

	"gorm.io/datatypes"
)

type Plan string

const (
	PlanFree  Plan = "free"
	PlanBasic Plan = "basic"
	PlanPro   Plan = "pro"
)

// Subscription statuses we set ourselves; the rest come verbatim from Stripe.
const (
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusCanceled = "canceled"
)

type Subscription struct {
	UserID               string     `gorm:"type:text;primaryKey" json:"userId"`
	StripeCustomerID     string     `gorm:"type:text;not null;uniqueIndex" json:"stripeCustomerId"`
	StripeSubscriptionID *string    `gorm:"type:text;uniqueIndex" json:"stripeSubscriptionId"`
	StripePriceID        *string    `gorm:"type:text" json:"stripePriceId"`
	Plan                 Plan       `gorm:"type:text;not null;default:'free';check:plan IN ('free','basic','pro')" json:"plan"`
	Status               string     `gorm:"type:text;not null;default:'inactive'" json:"status"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Subscription) TableName() string { return "subscriptions" }

// EffectivePlan is the plan used for quota checks: paid plans only count while
// the subscription is active or trialing.
func (s *Subscription) EffectivePlan() Plan {
	if s == nil {
		return PlanFree
	}
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return s.Plan
	default:
		return PlanFree
	}
}

// BillingEvent records a provider event that has been applied, keyed by the provider event id.
type BillingEvent struct {
	ID          string         `gorm:"type:text;primaryKey" json:"id"`
	Type        string         `gorm:"type:text;not null;index" json:"type"`
	Payload     datatypes.JSON `gorm:"type:jsonb" swaggertype:"object" json:"payload"`
	ProcessedAt time.Time      `gorm:"autoCreateTime" json:"processedAt"`
}

func (BillingEvent) TableName() string { return "billing_events" }
