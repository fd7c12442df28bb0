package model

import "time"

// Order status values.  Transitions are monotonic and irreversible:
// CREATED -> PROCESSING -> COMPLETED.  There is no cancellation or
// refund state.
const (
	OrderStatusCreated    = "CREATED"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
)

// Order records a prasad pre-order placed against a mandal.  The
// payment itself is mocked: the order walks through its statuses with
// simulated latency and never touches a real payment gateway.  Money
// amounts are whole rupees, matching the catalog prices.
//
// Fields:
//  ID          – UUID string identifying the order.
//  UserID      – user who placed the order.
//  MandalID    – mandal the prasad is ordered from.
//  Subtotal    – sum of item price × quantity in rupees.
//  DeliveryFee – delivery fee in rupees (0 when picked up).
//  Total       – subtotal plus delivery fee.
//  PayeeUpiID  – UPI identifier of the receiving mandal.
//  Status      – CREATED, PROCESSING or COMPLETED.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last status change timestamp.
type Order struct {
	ID          string    // orders.id (uuid)
	UserID      uint64    // orders.user_id
	MandalID    uint64    // orders.mandal_id
	Subtotal    uint32    // orders.subtotal_rupees
	DeliveryFee uint32    // orders.delivery_fee_rupees
	Total       uint32    // orders.total_rupees
	PayeeUpiID  string    // orders.payee_upi_id
	Status      string    // orders.status
	CreatedAt   time.Time // orders.created_at
	UpdatedAt   time.Time // orders.updated_at
}

// OrderItem is a single line of an order: one catalog item and the
// quantity purchased, with the unit price frozen at order time.
//
// Fields:
//  ID       – primary key identifier.
//  OrderID  – reference to the parent order.
//  ItemID   – catalog identifier (modak, ladoo, special).
//  ItemName – display name frozen at order time.
//  Quantity – units ordered, always >= 1.
//  Price    – unit price in rupees at order time.
type OrderItem struct {
	ID       uint64 // order_items.id
	OrderID  string // order_items.order_id
	ItemID   string // order_items.item_id
	ItemName string // order_items.item_name
	Quantity uint32 // order_items.quantity
	Price    uint32 // order_items.price_rupees
}
