// Package order implements the prasad cart and the mock payment
// checkout: cart accumulation, simulated payment latency and the
// one-way has-ordered flag on the buyer's profile.
package order

// PrasadItem is a purchasable catalog entry. Prices are whole rupees.
type PrasadItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       uint32 `json:"price"`
	Description string `json:"description"`
}

// DeliveryFee is the flat home-delivery charge in rupees.
const DeliveryFee uint32 = 200

// catalog is the fixed prasad menu. Order matters: listings and cart
// summaries follow it.
var catalog = []PrasadItem{
	{
		ID:          "modak",
		Name:        "Traditional Modak",
		Price:       30,
		Description: "Steamed rice dumplings filled with jaggery and coconut",
	},
	{
		ID:          "ladoo",
		Name:        "Sacred Ladoo",
		Price:       50,
		Description: "Sweet coconut and sesame balls blessed by Ganpati Bappa",
	},
	{
		ID:          "special",
		Name:        "Special Prasad",
		Price:       100,
		Description: "Premium blessed offering with dry fruits and pure ghee",
	},
}

// Catalog returns a copy of the prasad menu.
func Catalog() []PrasadItem {
	out := make([]PrasadItem, len(catalog))
	copy(out, catalog)
	return out
}

// ItemByID looks up a catalog entry.
func ItemByID(id string) (PrasadItem, bool) {
	for _, it := range catalog {
		if it.ID == id {
			return it, true
		}
	}
	return PrasadItem{}, false
}
