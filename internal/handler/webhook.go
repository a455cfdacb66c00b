package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/checkout"
	"github.com/iliyamo/bookmarket/internal/payment"
)

// maxWebhookBody caps how much of the gateway payload is read.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asynchronous gateway notifications. It is the
// second trigger for reconciliation next to the success-page verify call.
type WebhookHandler struct {
	Gateway    payment.Gateway
	Reconciler *checkout.Reconciler
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(gw payment.Gateway, rec *checkout.Reconciler) *WebhookHandler {
	if gw == nil || rec == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Gateway: gw, Reconciler: rec}
}

// Handle processes POST /v1/webhook/payment. Signature verification runs
// over the
// raw body before anything else; an unverified payload never reaches the
// reconciler. Unknown event types are acknowledged so the gateway does not
// retry them forever.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}

	ev, err := h.Gateway.ParseWebhook(body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook signature"})
	}

	if ev.Type == payment.EventCheckoutCompleted {
		if _, err := h.Reconciler.Apply(c.Request().Context(), ev.Session); err != nil {
			// ErrNotPaid here means a completed event for an unpaid
			// session; acknowledge it, there is nothing to redo.
			if !errors.Is(err, checkout.ErrNotPaid) {
				log.Printf("webhook: reconcile session %s failed: %v", ev.Session.ID, err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process event"})
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
