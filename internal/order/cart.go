package order

import "errors"

// ErrUnknownItem is returned when an item id is not in the catalog.
var ErrUnknownItem = errors.New("unknown prasad item")

// MaxItemQuantity caps the units of a single item one cart may hold.
// The cap also keeps every possible subtotal far below the uint32
// range, so totals can never wrap.
const MaxItemQuantity uint32 = 99

// ErrQuantityLimit is returned when adding units would push an item
// past MaxItemQuantity.
var ErrQuantityLimit = errors.New("item quantity limit exceeded")

// Line is one cart row presented to the client.
type Line struct {
	Item     PrasadItem `json:"item"`
	Quantity uint32     `json:"qty"`
}

// Cart accumulates prasad quantities for one mandal. Quantities are
// strictly positive: removing the last unit of an item deletes its
// entry instead of leaving a zero. Not safe for concurrent use.
type Cart struct {
	quantities map[string]uint32
	delivery   bool
}

func NewCart() *Cart {
	return &Cart{quantities: make(map[string]uint32)}
}

// Add puts one more unit of the item into the cart.
func (c *Cart) Add(itemID string) error { return c.AddN(itemID, 1) }

// AddN puts n units of the item into the cart. Quantities above
// MaxItemQuantity are rejected whole; the cart is left untouched.
func (c *Cart) AddN(itemID string, n uint32) error {
	if _, ok := ItemByID(itemID); !ok {
		return ErrUnknownItem
	}
	if n == 0 {
		return nil
	}
	if n > MaxItemQuantity || c.quantities[itemID] > MaxItemQuantity-n {
		return ErrQuantityLimit
	}
	c.quantities[itemID] += n
	return nil
}

// Remove takes one unit out; the entry disappears with its last unit.
func (c *Cart) Remove(itemID string) {
	q, ok := c.quantities[itemID]
	if !ok {
		return
	}
	if q <= 1 {
		delete(c.quantities, itemID)
		return
	}
	c.quantities[itemID] = q - 1
}

// Quantity reports how many units of an item are in the cart.
func (c *Cart) Quantity(itemID string) uint32 { return c.quantities[itemID] }

// Contains reports whether the item has an entry at all.
func (c *Cart) Contains(itemID string) bool {
	_, ok := c.quantities[itemID]
	return ok
}

// Empty reports whether no items are in the cart.
func (c *Cart) Empty() bool { return len(c.quantities) == 0 }

// SetDelivery opts in or out of home delivery.
func (c *Cart) SetDelivery(on bool) { c.delivery = on }

// Delivery reports whether home delivery is opted in.
func (c *Cart) Delivery() bool { return c.delivery }

// Lines returns the cart rows in catalog order, which makes summaries
// deterministic regardless of insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.quantities))
	for _, it := range catalog {
		if q, ok := c.quantities[it.ID]; ok {
			lines = append(lines, Line{Item: it, Quantity: q})
		}
	}
	return lines
}

// Subtotal is the item total in rupees, before delivery.
func (c *Cart) Subtotal() uint32 {
	var sum uint32
	for _, it := range catalog {
		sum += it.Price * c.quantities[it.ID]
	}
	return sum
}

// Total is subtotal plus the delivery fee when delivery is opted in.
func (c *Cart) Total() uint32 {
	t := c.Subtotal()
	if c.delivery {
		t += DeliveryFee
	}
	return t
}
