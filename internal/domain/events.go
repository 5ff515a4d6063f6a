package domain

type OrderPlacedItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderPlacedEvent is published after a finalization commits, for
// fulfillment consumers downstream.
type OrderPlacedEvent struct {
	OrderID     int               `json:"order_id"`
	Items       []OrderPlacedItem `json:"items"`
	TotalAmount float64           `json:"total_amount"`
	Status      string            `json:"status"`
}
