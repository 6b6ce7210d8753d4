package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

func TestBillingHandler_Checkout(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*MockBillingService)
		expectedStatus int
		expectedURL    string
	}{
		{
			name: "checkout url",
			body: `{"plan":"PRO"}`,
			setup: func(m *MockBillingService) {
				m.On("Checkout", mock.Anything, testUserID, "ann@example.com", "PRO").
					Return("https://checkout.stripe.com/c/pay/cs_test_1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedURL:    "https://checkout.stripe.com/c/pay/cs_test_1",
		},
		{
			name:           "plan missing",
			body:           `{}`,
			setup:          func(*MockBillingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown plan",
			body: `{"plan":"GOLD"}`,
			setup: func(m *MockBillingService) {
				m.On("Checkout", mock.Anything, testUserID, "ann@example.com", "GOLD").Return("",
					&service.ValidationError{Fields: []service.FieldError{{Field: "plan", Message: "must be BASIC or PRO"}}})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "price not configured",
			body: `{"plan":"BASIC"}`,
			setup: func(m *MockBillingService) {
				m.On("Checkout", mock.Anything, testUserID, "ann@example.com", "BASIC").Return("", service.ErrConfig)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBillingService{}
			tt.setup(svc)
			r := setupRouter(true)
			r.POST("/billing/checkout", NewBillingHandler(svc).Checkout)

			req := httptest.NewRequest(http.MethodPost, "/billing/checkout", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := do(r, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedURL != "" {
				var out CheckoutResp
				require.NoError(t, sonic.Unmarshal(decode(t, w).Data, &out))
				assert.Equal(t, tt.expectedURL, out.URL)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBillingHandler_GetSubscription(t *testing.T) {
	svc := &MockBillingService{}
	svc.On("Subscription", mock.Anything, testUserID).Return(&service.SubscriptionSummary{
		EffectivePlan: model.PlanFree,
		Limits:        model.PlanLimits{Workspaces: 1, Tables: 3, RowsPerTable: 100},
	}, nil)
	r := setupRouter(true)
	r.GET("/billing/subscription", NewBillingHandler(svc).GetSubscription)

	w := do(r, httptest.NewRequest(http.MethodGet, "/billing/subscription", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var out service.SubscriptionSummary
	require.NoError(t, sonic.Unmarshal(decode(t, w).Data, &out))
	assert.Equal(t, model.PlanFree, out.EffectivePlan)
	assert.Equal(t, 100, out.Limits.RowsPerTable)
}

func TestBillingHandler_Webhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "accepted", expectedStatus: http.StatusOK},
		{name: "bad signature", err: service.ErrInvalidSignature, expectedStatus: http.StatusBadRequest},
		{name: "secret missing", err: service.ErrConfig, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBillingService{}
			svc.On("HandleEvent", mock.Anything, payload, "t=1,v1=abc").Return(tt.err)
			// no principal: the webhook is authenticated by signature only
			r := setupRouter(false)
			r.POST("/billing/webhook", NewBillingHandler(svc).Webhook)

			req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewReader(payload))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			w := do(r, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var out map[string]bool
				require.NoError(t, sonic.Unmarshal(decode(t, w).Data, &out))
				assert.True(t, out["received"])
			}
			svc.AssertExpectations(t)
		})
	}
}
