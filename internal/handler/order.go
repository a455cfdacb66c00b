package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/model"
)

// OrderHandler exposes order history. Orders are created only by the
// checkout reconciler, never through this handler.
type OrderHandler struct {
	Orders OrderStore
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders OrderStore) *OrderHandler {
	if orders == nil {
		panic("nil store passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

// ListAll handles GET /v1/orders (admin), newest first.
func (h *OrderHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	orders, err := h.Orders.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch orders"})
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// ListMine handles GET /v1/user/orders, scoped to the token email. Guest
// checkouts under a different email do not appear here.
func (h *OrderHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	orders, err := h.Orders.ListByEmail(ctx, getEmail(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch orders"})
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}
