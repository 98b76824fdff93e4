package order

import (
	"errors"
	"time"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("order not found")
)

// Status of an order. Confirmed is currently terminal.
type Status string

const StatusConfirmed Status = "Confirmed"

// CustomerInfo is the shipping contact captured at checkout.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ProductSnapshot freezes the product identity and price at order time, so
// later catalog changes never alter an order.
type ProductSnapshot struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderItem is one ordered line.
type OrderItem struct {
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
	ItemTotal float64         `json:"itemTotal"`
}

// Order is immutable once created.
type Order struct {
	ID       string       `json:"id"`
	UserID   string       `json:"userId"`
	Date     time.Time    `json:"date"`
	Customer CustomerInfo `json:"customer"`
	Items    []OrderItem  `json:"items"`
	Total    float64      `json:"total"`
	Status   Status       `json:"status"`
}
