package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrNotConfigured is returned by API calls when no secret key is set.
var ErrNotConfigured = errors.New("stripe secret key is not configured")

type StripeProvider struct {
	configured bool
}

// NewStripeProvider sets the process-wide Stripe key. An empty key yields a provider whose
// API calls fail with ErrNotConfigured; webhook verification still works.
func NewStripeProvider(secretKey string) *StripeProvider {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &StripeProvider{configured: secretKey != ""}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	if !p.configured {
		return "", ErrNotConfigured
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{"userId": userID},
	}
	params.Context = ctx

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	if !p.configured {
		return "", ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:           stripe.String(in.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: in.Metadata,
	}
	params.Context = ctx

	s, err := stripesession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

func (p *StripeProvider) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	if !p.configured {
		return nil, ErrNotConfigured
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", id, err)
	}

	out := &Subscription{ID: sub.ID, Status: string(sub.Status)}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
		out.CurrentPeriodEnd = unixTime(item.CurrentPeriodEnd)
	}
	return out, nil
}

func (p *StripeProvider) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	if !p.configured {
		return nil, ErrNotConfigured
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := customer.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return &Customer{ID: c.ID, Deleted: c.Deleted, Metadata: c.Metadata}, nil
}

func (p *StripeProvider) ConstructEvent(payload []byte, signature, secret string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	ev := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil {
		ev.Object = event.Data.Raw
	}
	return ev, nil
}
