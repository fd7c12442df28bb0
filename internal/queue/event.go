// Package queue defines message payloads exchanged over the message
// broker plus the publisher and background consumer that move them.
package queue

// MandalRegisteredEvent is published when a registration wizard
// submits successfully. It carries enough for downstream consumers to
// send the thank-you mail without querying the primary database.
type MandalRegisteredEvent struct {
	MandalID     uint64 `json:"mandal_id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	RegisteredAt string `json:"registered_at"`
}

// OrderCompletedEvent is published when a prasad order reaches
// COMPLETED.
type OrderCompletedEvent struct {
	OrderID     string      `json:"order_id"`
	UserID      uint64      `json:"user_id"`
	MandalID    uint64      `json:"mandal_id"`
	Items       []EventItem `json:"items"`
	Subtotal    uint32      `json:"subtotal"`
	DeliveryFee uint32      `json:"delivery_fee"`
	Total       uint32      `json:"total"`
	PayeeUpiID  string      `json:"payee_upi_id"`
	CompletedAt string      `json:"completed_at"`
}

// EventItem is one order line inside an OrderCompletedEvent.
type EventItem struct {
	Item  string `json:"item"`
	Qty   uint32 `json:"qty"`
	Price uint32 `json:"price"`
}
