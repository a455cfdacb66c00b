// Package checkout turns paid payment-gateway sessions into orders. The
// same reconciliation runs whether the trigger is the success page calling
// verify-payment or the asynchronous gateway webhook, so both paths always
// converge on one order per session.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/payment"
	"github.com/iliyamo/bookmarket/internal/queue"
	"github.com/iliyamo/bookmarket/internal/repository"
)

// ErrNotPaid is returned when the gateway session has not settled.
var ErrNotPaid = errors.New("payment not completed")

// ErrProductMissing is returned when a paid session references a product
// that no longer exists. This is a data-integrity fault: the reconciliation
// fails rather than writing an order with missing item data.
var ErrProductMissing = errors.New("product missing for paid session")

// ErrBadMetadata is returned when the session metadata does not carry a
// usable product id and quantity.
var ErrBadMetadata = errors.New("invalid session metadata")

// ListingStore is the slice of the listing repository the reconciler needs.
type ListingStore interface {
	GetByID(ctx context.Context, id uint64) (model.Listing, error)
}

// OrderStore persists reconciled orders. CreateWithStockDecrement must be
// atomic and must return repository.ErrDuplicateSession when an order for
// the same session already exists, leaving no side effect in that case.
type OrderStore interface {
	GetBySessionID(ctx context.Context, sessionID string) (model.Order, error)
	CreateWithStockDecrement(ctx context.Context, o *model.Order, productID uint64, quantity int) error
}

// Reconciler materializes orders from paid checkout sessions. Publish, when
// set, is invoked after a new order is created; publish failures are logged
// and never fail the reconciliation.
type Reconciler struct {
	Gateway  payment.Gateway
	Listings ListingStore
	Orders   OrderStore
	Publish  func(ctx context.Context, ev queue.OrderCompletedEvent) error
}

// NewReconciler constructs a Reconciler. Gateway, listings and orders must
// be non-nil; publish may be nil.
func NewReconciler(gw payment.Gateway, listings ListingStore, orders OrderStore) *Reconciler {
	if gw == nil || listings == nil || orders == nil {
		panic("nil dependency passed to NewReconciler")
	}
	return &Reconciler{Gateway: gw, Listings: listings, Orders: orders}
}

// Reconcile retrieves the session from the gateway and applies it.
func (r *Reconciler) Reconcile(ctx context.Context, sessionID string) (model.Order, error) {
	sess, err := r.Gateway.GetSession(ctx, sessionID)
	if err != nil {
		return model.Order{}, fmt.Errorf("retrieve session: %w", err)
	}
	return r.Apply(ctx, sess)
}

// Apply is the idempotent core: calling it any number of times for the same
// session yields exactly one order and exactly one stock decrement. The
// fast path is a lookup by session id; the race between two concurrent
// reconciliations is resolved by the unique index behind the order store,
// whose duplicate error is folded back into "return the existing order".
func (r *Reconciler) Apply(ctx context.Context, sess payment.Session) (model.Order, error) {
	if !sess.Paid() {
		return model.Order{}, ErrNotPaid
	}

	existing, err := r.Orders.GetBySessionID(ctx, sess.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Order{}, err
	}

	productID, quantity, err := sessionTarget(sess)
	if err != nil {
		return model.Order{}, err
	}

	product, err := r.Listings.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("checkout: paid session %s references missing product %d", sess.ID, productID)
			return model.Order{}, ErrProductMissing
		}
		return model.Order{}, err
	}

	order := model.Order{
		StripeSessionID: sess.ID,
		CustomerName:    sess.CustomerName,
		CustomerEmail:   sess.CustomerEmail,
		ShippingAddress: model.Address{
			Line1:      sess.ShippingAddress.Line1,
			Line2:      sess.ShippingAddress.Line2,
			City:       sess.ShippingAddress.City,
			State:      sess.ShippingAddress.State,
			PostalCode: sess.ShippingAddress.PostalCode,
			Country:    sess.ShippingAddress.Country,
		},
		Items: []model.OrderItem{
			{
				ProductID: product.ID,
				Title:     product.Title,
				Author:    product.Author,
				Price:     product.Price,
				Quantity:  quantity,
			},
		},
		// The gateway total is the source of truth; it may include tax or
		// shipping that price*quantity would miss.
		Total:  FormatTotal(sess.AmountTotal),
		Status: model.OrderCompleted,
	}

	if err := r.Orders.CreateWithStockDecrement(ctx, &order, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrDuplicateSession) {
			return r.Orders.GetBySessionID(ctx, sess.ID)
		}
		return model.Order{}, err
	}

	if r.Publish != nil {
		ev := queue.OrderCompletedEvent{
			OrderID:       order.ID,
			SessionID:     order.StripeSessionID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			Total:         order.Total,
			CompletedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		for _, it := range order.Items {
			ev.Items = append(ev.Items, queue.OrderLine{
				Title:    it.Title,
				Author:   it.Author,
				Price:    it.Price,
				Quantity: it.Quantity,
			})
		}
		if err := r.Publish(ctx, ev); err != nil {
			log.Printf("checkout: publish order.completed failed for order %d: %v", order.ID, err)
		}
	}

	return order, nil
}

func sessionTarget(sess payment.Session) (uint64, int, error) {
	productID, err := strconv.ParseUint(sess.Metadata[payment.MetaProductID], 10, 64)
	if err != nil || productID == 0 {
		return 0, 0, ErrBadMetadata
	}
	quantity, err := strconv.Atoi(sess.Metadata[payment.MetaQuantity])
	if err != nil || quantity < 1 {
		return 0, 0, ErrBadMetadata
	}
	return productID, quantity, nil
}

// FormatTotal renders a minor-unit amount as a two-decimal string, e.g.
// 3998 -> "39.98".
func FormatTotal(minor int64) string {
	return strconv.FormatFloat(float64(minor)/100, 'f', 2, 64)
}

// UnitAmount converts a price to minor units, rounding to avoid
// floating-point drift (19.99 -> 1999, never 1998).
func UnitAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}
