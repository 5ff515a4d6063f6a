package domain

// FoodItem is immutable menu reference data.
type FoodItem struct {
	ItemID int
	Name   string
	Price  float64
}

// OrderLine is one persisted line of a finalized order. At most one row
// exists per (OrderID, ItemID); repeated items accumulate into it.
type OrderLine struct {
	OrderID    int
	ItemID     int
	Quantity   int
	TotalPrice float64
}

type OrderTracking struct {
	OrderID int
	Status  string
}

// StatusInTransit is the status every new order starts in. A downstream
// fulfillment process mutates it later.
const StatusInTransit = "in transit"
