package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/checkout"
	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/payment"
	"github.com/iliyamo/bookmarket/internal/repository"
)

// shippingCountries is the allow-list the gateway collects shipping
// addresses for.
var shippingCountries = []string{"US", "CA", "GB", "AU"}

// CheckoutHandler opens payment sessions and verifies them after the
// customer returns from the gateway. The webhook path lives in
// WebhookHandler; both feed the same reconciler.
type CheckoutHandler struct {
	Listings   ListingStore
	Gateway    payment.Gateway
	Reconciler *checkout.Reconciler
	SiteOrigin string
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(listings ListingStore, gw payment.Gateway, rec *checkout.Reconciler, siteOrigin string) *CheckoutHandler {
	if listings == nil || gw == nil || rec == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Listings: listings, Gateway: gw, Reconciler: rec, SiteOrigin: siteOrigin}
}

type createSessionReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateSession handles POST /v1/checkout-session. The unit amount is the
// product price in minor units, rounded so 19.99 becomes exactly 1999.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	product, err := h.Listings.GetByID(ctx, req.ProductID)
	if err != nil || product.Kind != model.KindProduct {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}

	qty := strconv.Itoa(req.Quantity)
	params := payment.SessionParams{
		Item: payment.Item{
			Name:        product.Title,
			Description: "by " + product.Author,
			UnitAmount:  checkout.UnitAmount(product.Price),
			Quantity:    int64(req.Quantity),
		},
		SuccessURL: fmt.Sprintf("%s/success?session_id={CHECKOUT_SESSION_ID}&product_id=%d&quantity=%s",
			h.SiteOrigin, product.ID, qty),
		CancelURL:        fmt.Sprintf("%s/product/%d", h.SiteOrigin, product.ID),
		AllowedCountries: shippingCountries,
		Metadata: map[string]string{
			payment.MetaProductID: strconv.FormatUint(product.ID, 10),
			payment.MetaQuantity:  qty,
		},
	}

	sess, err := h.Gateway.CreateSession(c.Request().Context(), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create checkout session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": sess.ID})
}

type verifyPaymentReq struct {
	SessionID string `json:"session_id"`
}

// sessionSummary is the slice of the gateway session echoed back to the
// success page.
type sessionSummary struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Total         string `json:"total"`
}

// VerifyPayment handles POST /v1/verify-payment, the redirect-triggered
// half of reconciliation. Calling it again for the same session returns the
// same order.
func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	var req verifyPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}

	order, err := h.Reconciler.Reconcile(c.Request().Context(), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotPaid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment not completed"})
		case errors.Is(err, checkout.ErrBadMetadata):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify payment"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order": order,
		"session": sessionSummary{
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			Total:         order.Total,
		},
	})
}
