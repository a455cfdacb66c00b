// Package payment abstracts the external payment gateway behind a small
// interface so the checkout flow can be exercised without network access.
// The only concrete implementation talks to Stripe; tests use fakes.
package payment

import "context"

// StatusPaid is the payment_status value of a settled checkout session.
const StatusPaid = "paid"

// EventCheckoutCompleted is the webhook event type emitted when a checkout
// session finishes successfully.
const EventCheckoutCompleted = "checkout.session.completed"

// Metadata keys attached to checkout sessions so reconciliation can find
// the purchased product without trusting client input.
const (
	MetaProductID = "product_id"
	MetaQuantity  = "quantity"
)

// Item describes the single line item of a checkout session. UnitAmount is
// in minor currency units (cents).
type Item struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// SessionParams carries everything needed to open a checkout session.
type SessionParams struct {
	Item             Item
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	Metadata         map[string]string
}

// Address is the shipping address collected by the gateway.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Session is the gateway's view of a checkout attempt. AmountTotal is the
// authoritative total in minor units; it may include tax or shipping and
// must never be recomputed from item prices.
type Session struct {
	ID              string
	PaymentStatus   string
	AmountTotal     int64
	CustomerName    string
	CustomerEmail   string
	ShippingAddress Address
	Metadata        map[string]string
}

// Paid reports whether the session settled.
func (s Session) Paid() bool { return s.PaymentStatus == StatusPaid }

// Event is a verified webhook notification.
type Event struct {
	Type    string
	Session Session
}

// Gateway is the contract the checkout flow depends on. ParseWebhook must
// verify the cryptographic signature over the raw body before returning an
// event; a verification failure is an error and the caller must not apply
// any side effect.
type Gateway interface {
	CreateSession(ctx context.Context, p SessionParams) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}
