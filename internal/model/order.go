package model

import "time"

// Order statuses. Orders materialized by payment reconciliation are
// completed immediately; pending/cancelled exist for manual bookkeeping.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Address holds the shipping address captured by the payment gateway.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// OrderItem is a snapshot of a product at the time of sale. Title, author
// and price are copied from the listing so later catalog edits never
// rewrite order history.
type OrderItem struct {
	ProductID uint64  `json:"productId"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order records one completed checkout. StripeSessionID carries a unique
// index in the database; it is the idempotency key for reconciliation.
// Total is the gateway's authoritative amount formatted with two decimals,
// never recomputed from item prices.
type Order struct {
	ID              uint64      `json:"id"`
	StripeSessionID string      `json:"stripeSessionId"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	ShippingAddress Address     `json:"shippingAddress"`
	Items           []OrderItem `json:"items"`
	Total           string      `json:"total"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
}
