package cart

import (
	"errors"
	"time"

	"github.com/example/shopmate/internal/catalog"
)

// Resource limits on a single cart.
const (
	MaxDistinctItems = 50
	MaxItemQuantity  = 99
)

var (
	ErrInvalidProduct    = errors.New("invalid product id")
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 99")
	ErrCartFull          = errors.New("cart is full")
	ErrItemQuantityCap   = errors.New("maximum quantity per item reached")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Item is one cart line. Every unit counted by Quantity has already been
// deducted from the product's stock.
type Item struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// Cart is the persisted per-user cart document. Created implicitly on first
// access, emptied (not deleted) on checkout.
type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CapPolicy decides what Add does when an item would exceed MaxItemQuantity.
type CapPolicy int

const (
	// CapReject fails the add outright.
	CapReject CapPolicy = iota
	// CapClamp adds only the remaining headroom, failing only when there
	// is none.
	CapClamp
)

// ViewItem is a cart line resolved against the catalog.
type ViewItem struct {
	catalog.Product
	Quantity  int     `json:"quantity"`
	ItemTotal float64 `json:"itemTotal"`
}

// View is the cart as presented to the client.
type View struct {
	Items []ViewItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}

// stockAdjustment is the durable record of a stock change whose dependent
// cart write has not committed yet. Delta is the amount already applied to
// the product's stock; undoing the adjustment subtracts it again.
type stockAdjustment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID int       `json:"productId"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"createdAt"`
}
