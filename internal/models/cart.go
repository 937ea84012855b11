package models

// CartLine is one distinct menu in the local cart with its accumulated quantity.
// Price is the display snapshot taken when the line was added, e.g. "₹120".
type CartLine struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	Image           *string `json:"image"`
	RemainingOrders int     `json:"remaining_orders"`
	Quantity        int     `json:"quantity"`
}
