// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderLine is one snapshot item inside an OrderCompletedEvent.
type OrderLine struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderCompletedEvent is published when payment reconciliation materializes
// a new order. It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type OrderCompletedEvent struct {
	OrderID       uint64      `json:"order_id"`
	SessionID     string      `json:"session_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Items         []OrderLine `json:"items"`
	Total         string      `json:"total"`
	CompletedAt   string      `json:"completed_at"`
}
