package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridspace-io/gridspace/internal/infra/payments"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type BillingService interface {
	// Checkout returns the hosted checkout URL for plan ("BASIC" or "PRO").
	Checkout(ctx context.Context, userID, email, plan string) (string, error)
	// HandleEvent verifies and applies one provider webhook delivery.
	HandleEvent(ctx context.Context, payload []byte, signature string) error
	Subscription(ctx context.Context, userID string) (*SubscriptionSummary, error)
}

type BillingOptions struct {
	WebhookSecret string
	PriceIDBasic  string
	PriceIDPro    string
	PublicURL     string
}

type SubscriptionSummary struct {
	Subscription  *model.Subscription `json:"subscription"`
	EffectivePlan model.Plan          `json:"effectivePlan"`
	Limits        model.PlanLimits    `json:"limits"`
}

const RoutingKeySubscriptionChanged = "subscription.changed"

type SubscriptionChangedEvent struct {
	UserID    string     `json:"userId"`
	Plan      model.Plan `json:"plan"`
	Status    string     `json:"status"`
	EventID   string     `json:"eventId"`
	EventType string     `json:"eventType"`
	ChangedAt time.Time  `json:"changedAt"`
}

type billingService struct {
	subs     repo.SubscriptionRepo
	provider payments.Provider
	limits   Limits
	events   EventPublisher
	opts     BillingOptions
	prices   model.PriceMap
	log      *zap.Logger
}

func NewBillingService(subs repo.SubscriptionRepo, provider payments.Provider, limits Limits, events EventPublisher, opts BillingOptions, log *zap.Logger) BillingService {
	prices := model.PriceMap{}
	if opts.PriceIDBasic != "" {
		prices[opts.PriceIDBasic] = model.PlanBasic
	}
	if opts.PriceIDPro != "" {
		prices[opts.PriceIDPro] = model.PlanPro
	}
	return &billingService{
		subs:     subs,
		provider: provider,
		limits:   limits,
		events:   events,
		opts:     opts,
		prices:   prices,
		log:      log,
	}
}

func (s *billingService) priceFor(plan string) (string, error) {
	var price string
	switch strings.ToUpper(strings.TrimSpace(plan)) {
	case "BASIC":
		price = s.opts.PriceIDBasic
	case "PRO":
		price = s.opts.PriceIDPro
	default:
		return "", invalid("plan", "must be BASIC or PRO")
	}
	if price == "" {
		return "", fmt.Errorf("%w: price id for plan %s is not set", ErrConfig, strings.ToUpper(plan))
	}
	return price, nil
}

func providerErr(err error) error {
	if errors.Is(err, payments.ErrNotConfigured) {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return err
}

func (s *billingService) Checkout(ctx context.Context, userID, email, plan string) (string, error) {
	priceID, err := s.priceFor(plan)
	if err != nil {
		return "", err
	}

	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("load subscription: %w", err)
	}

	var customerID string
	if sub != nil {
		customerID = sub.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, email, userID)
		if err != nil {
			return "", providerErr(err)
		}
		err = s.subs.Upsert(ctx, &model.Subscription{
			UserID:           userID,
			StripeCustomerID: customerID,
			Plan:             model.PlanFree,
			Status:           model.SubscriptionStatusInactive,
		}, "stripe_customer_id")
		if err != nil {
			return "", fmt.Errorf("store customer: %w", err)
		}
		s.log.Sugar().Infow("stripe customer created", "user_id", userID, "customer_id", customerID)
	}

	base := strings.TrimRight(s.opts.PublicURL, "/")
	url, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutInput{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: base + "/dashboard?success=true",
		CancelURL:  base + "/pricing?canceled=true",
		Metadata:   map[string]string{"userId": userID},
	})
	if err != nil {
		return "", providerErr(err)
	}
	return url, nil
}

func (s *billingService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	if s.opts.WebhookSecret == "" {
		return fmt.Errorf("%w: webhook secret is not set", ErrConfig)
	}
	if strings.TrimSpace(signature) == "" {
		return fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}
	ev, err := s.provider.ConstructEvent(payload, signature, s.opts.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	seen, err := s.subs.HasEvent(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("check event %s: %w", ev.ID, err)
	}
	if seen {
		s.log.Sugar().Infow("stripe event already processed", "event_id", ev.ID, "type", ev.Type)
		return nil
	}

	var changed *model.Subscription
	switch ev.Type {
	case payments.EventCheckoutCompleted:
		changed, err = s.onCheckoutCompleted(ctx, ev)
	case payments.EventSubscriptionUpdated:
		changed, err = s.onSubscriptionChanged(ctx, ev, applyUpdate)
	case payments.EventSubscriptionDeleted:
		changed, err = s.onSubscriptionChanged(ctx, ev, applyDelete)
	default:
		s.log.Sugar().Debugw("stripe event ignored", "event_id", ev.ID, "type", ev.Type)
	}
	if err != nil {
		return fmt.Errorf("handle %s %s: %w", ev.Type, ev.ID, err)
	}

	if err := s.subs.RecordEvent(ctx, &model.BillingEvent{
		ID:      ev.ID,
		Type:    ev.Type,
		Payload: datatypes.JSON(ev.Object),
	}); err != nil {
		return fmt.Errorf("record event %s: %w", ev.ID, err)
	}

	if changed != nil {
		if err := s.events.Publish(ctx, RoutingKeySubscriptionChanged, SubscriptionChangedEvent{
			UserID:    changed.UserID,
			Plan:      changed.Plan,
			Status:    changed.Status,
			EventID:   ev.ID,
			EventType: ev.Type,
			ChangedAt: time.Now().UTC(),
		}); err != nil {
			s.log.Sugar().Warnw("publish subscription.changed failed", "user_id", changed.UserID, "err", err)
		}
	}
	return nil
}

func (s *billingService) onCheckoutCompleted(ctx context.Context, ev *payments.Event) (*model.Subscription, error) {
	cs, err := payments.ParseCheckoutSession(ev.Object)
	if err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	userID := strings.TrimSpace(cs.Metadata["userId"])
	if userID == "" {
		return nil, errors.New("checkout session has no userId metadata")
	}
	if cs.Subscription == "" {
		return nil, errors.New("checkout session has no subscription")
	}

	live, err := s.provider.GetSubscription(ctx, cs.Subscription)
	if err != nil {
		return nil, providerErr(err)
	}

	customerID := cs.Customer
	if customerID == "" {
		customerID = live.CustomerID
	}
	return s.apply(ctx, userID, customerID, live, applyCheckout)
}

func (s *billingService) onSubscriptionChanged(ctx context.Context, ev *payments.Event, mode applyMode) (*model.Subscription, error) {
	sub, err := payments.ParseSubscription(ev.Object)
	if err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}

	cust, err := s.provider.GetCustomer(ctx, sub.CustomerID)
	if err != nil {
		return nil, providerErr(err)
	}
	userID := strings.TrimSpace(cust.Metadata["userId"])
	if cust.Deleted || userID == "" {
		s.log.Sugar().Infow("stripe event skipped, customer not correlated", "event_id", ev.ID, "customer_id", sub.CustomerID, "deleted", cust.Deleted)
		return nil, nil
	}
	return s.apply(ctx, userID, sub.CustomerID, sub, mode)
}

type applyMode int

const (
	// applyCheckout binds the customer and subscription ids to the user.
	applyCheckout applyMode = iota
	// applyUpdate refreshes plan state only; ids bound at checkout are kept.
	applyUpdate
	applyDelete
)

// apply writes provider state onto the user's subscription row, creating it if needed.
// On conflict only the columns owned by mode are overwritten.
func (s *billingService) apply(ctx context.Context, userID, customerID string, sub *payments.Subscription, mode applyMode) (*model.Subscription, error) {
	row := &model.Subscription{
		UserID:           userID,
		StripeCustomerID: customerID,
	}
	var columns []string
	switch mode {
	case applyDelete:
		row.Status = model.SubscriptionStatusCanceled
		row.Plan = model.PlanFree
		columns = []string{"status", "plan"}
	default:
		subID, priceID := sub.ID, sub.PriceID
		row.StripeSubscriptionID = &subID
		row.StripePriceID = &priceID
		row.CurrentPeriodEnd = sub.CurrentPeriodEnd
		row.Status = sub.Status
		row.Plan = s.prices.PlanFor(priceID)
		columns = []string{"stripe_price_id", "current_period_end", "status", "plan"}
		if mode == applyCheckout {
			columns = append([]string{"stripe_customer_id", "stripe_subscription_id"}, columns...)
		}
	}

	if err := s.subs.Upsert(ctx, row, columns...); err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}
	s.log.Sugar().Infow("subscription reconciled", "user_id", userID, "plan", row.Plan, "status", row.Status)
	return row, nil
}

func (s *billingService) Subscription(ctx context.Context, userID string) (*SubscriptionSummary, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	plan := sub.EffectivePlan()
	return &SubscriptionSummary{
		Subscription:  sub,
		EffectivePlan: plan,
		Limits:        s.limits.Of(plan),
	}, nil
}
