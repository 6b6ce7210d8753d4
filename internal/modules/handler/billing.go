package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

const maxWebhookBytes = 1 << 20

type BillingHandler struct {
	svc service.BillingService
}

func NewBillingHandler(s service.BillingService) *BillingHandler {
	return &BillingHandler{svc: s}
}

type CheckoutReq struct {
	Plan string `json:"plan" binding:"required" example:"PRO" enums:"BASIC,PRO"`
}

type CheckoutResp struct {
	URL string `json:"url"`
}

// Checkout godoc
//
//	@Summary		Start checkout
//	@Description	Create a hosted checkout session for the BASIC or PRO plan
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CheckoutReq	true	"Checkout payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.CheckoutResp}
//	@Failure		400	{object}	serializer.Response
//	@Router			/billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	req := CheckoutReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	url, err := h.svc.Checkout(c.Request.Context(), p.UserID, p.Email, req.Plan)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: CheckoutResp{URL: url}})
}

// GetSubscription godoc
//
//	@Summary		Get subscription
//	@Description	Get the caller's subscription, effective plan and limits
//	@Tags			billing
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.SubscriptionSummary}
//	@Router			/billing/subscription [get]
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	out, err := h.svc.Subscription(c.Request.Context(), p.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// Webhook godoc
//
//	@Summary		Billing webhook
//	@Description	Receive a signed payment provider event. Authenticated by signature only.
//	@Tags			billing
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header	string	true	"Webhook signature"
//	@Success		200	{object}	serializer.Response{data=map[string]bool}
//	@Failure		400	{object}	serializer.Response
//	@Router			/billing/webhook [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "payload too large", nil))
			return
		}
		c.JSON(http.StatusBadRequest, serializer.ParamErr("cannot read body", err))
		return
	}

	if err := h.svc.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"received": true}})
}
