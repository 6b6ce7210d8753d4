// Package payments talks to the payment provider (Stripe) and decodes its webhook payloads.
package payments

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
)

// Provider is the subset of the payment provider the billing service uses.
type Provider interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	// ConstructEvent verifies signature against secret and returns the decoded event.
	ConstructEvent(payload []byte, signature, secret string) (*Event, error)
}

type CheckoutInput struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type Event struct {
	ID   string
	Type string
	// Object is the raw JSON of event.data.object.
	Object []byte
}

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type Customer struct {
	ID       string
	Deleted  bool
	Metadata map[string]string
}

// Subscription is a provider subscription reduced to what we persist.
type Subscription struct {
	ID               string
	CustomerID       string
	Status           string
	PriceID          string
	CurrentPeriodEnd *time.Time
}

// CheckoutSession is the part of a checkout.session.completed object we use.
type CheckoutSession struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

func ParseCheckoutSession(raw []byte) (*CheckoutSession, error) {
	var s CheckoutSession
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type subscriptionObject struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	// Older API versions carry the period on the subscription itself.
	CurrentPeriodEnd int64 `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// ParseSubscription decodes a customer.subscription.* event object.
func ParseSubscription(raw []byte) (*Subscription, error) {
	var o subscriptionObject
	if err := sonic.Unmarshal(raw, &o); err != nil {
		return nil, err
	}

	s := &Subscription{ID: o.ID, CustomerID: o.Customer, Status: o.Status}
	periodEnd := o.CurrentPeriodEnd
	if len(o.Items.Data) > 0 {
		s.PriceID = o.Items.Data[0].Price.ID
		if o.Items.Data[0].CurrentPeriodEnd > 0 {
			periodEnd = o.Items.Data[0].CurrentPeriodEnd
		}
	}
	s.CurrentPeriodEnd = unixTime(periodEnd)
	return s, nil
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
