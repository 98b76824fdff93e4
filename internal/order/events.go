package order

import "time"

// EventOrderPlaced is published after an order is persisted.
const EventOrderPlaced = "order.placed"

// PlacedEvent is the payload of an EventOrderPlaced message.
type PlacedEvent struct {
	OrderID  string      `json:"orderId"`
	UserID   string      `json:"userId"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Items    []OrderItem `json:"items"`
	Total    float64     `json:"total"`
	PlacedAt time.Time   `json:"placedAt"`
}
