package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopmate/internal/cart"
	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/infrastructure/store"
)

// CartSource reads and empties a user's cart. Emptying at checkout must not
// restore stock; the deductions made at add time become final.
type CartSource interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Empty(ctx context.Context, userID string) error
}

// ProductSource resolves products for price snapshotting.
type ProductSource interface {
	GetByID(ctx context.Context, id int) (*catalog.Product, error)
}

// EventPublisher publishes domain events. Publishing is best-effort; a
// failed publish never fails the order.
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, data any) error
}

// Service converts carts into immutable orders.
type Service struct {
	store     store.Store
	carts     CartSource
	products  ProductSource
	publisher EventPublisher
}

// NewService creates an order service. publisher may be nil when no broker
// is configured.
func NewService(s store.Store, carts CartSource, products ProductSource, publisher EventPublisher) *Service {
	return &Service{store: s, carts: carts, products: products, publisher: publisher}
}

// Checkout verifies the user has something to order.
func (s *Service) Checkout(ctx context.Context, userID string) error {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}
	return nil
}

// Place creates an order from the user's cart, snapshotting current product
// prices, then empties the cart without restoring stock.
func (s *Service) Place(ctx context.Context, userID string, customer CustomerInfo) (*Order, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		ID:       uuid.NewString(),
		UserID:   userID,
		Date:     time.Now(),
		Customer: customer,
		Items:    make([]OrderItem, 0, len(items)),
		Status:   StatusConfirmed,
	}
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %d: %w", item.ProductID, err)
		}
		itemTotal := product.Price * float64(item.Quantity)
		o.Items = append(o.Items, OrderItem{
			Product:   ProductSnapshot{ID: product.ID, Name: product.Name, Price: product.Price},
			Quantity:  item.Quantity,
			ItemTotal: itemTotal,
		})
		o.Total += itemTotal
	}

	if err := s.store.Put(ctx, store.CollectionOrders, o); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if err := s.carts.Empty(ctx, userID); err != nil {
		log.Printf("[Order] Order %s saved but cart for %s was not emptied: %v", o.ID, userID, err)
	}

	s.publishPlaced(ctx, o)

	log.Printf("[Order] Placed order %s for %s, total %.2f", o.ID, userID, o.Total)
	return o, nil
}

// GetByID loads an order, treating another user's order as missing.
func (s *Service) GetByID(ctx context.Context, userID, orderID string) (*Order, error) {
	var o Order
	found, err := s.store.Get(ctx, store.CollectionOrders, store.Key{"id": orderID}, &o)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !found || o.UserID != userID {
		return nil, ErrNotFound
	}
	return &o, nil
}

// ListForUser scans the user's orders. Bounded only by the store scan limit.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	filter := &store.Filter{Field: "userId", Equals: userID}
	if err := s.store.Scan(ctx, store.CollectionOrders, filter, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// ClearForUser deletes all of the user's orders. Demo-only.
func (s *Service) ClearForUser(ctx context.Context, userID string) error {
	orders, err := s.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if err := s.store.Delete(ctx, store.CollectionOrders, store.Key{"id": o.ID}); err != nil {
			return fmt.Errorf("failed to delete order %s: %w", o.ID, err)
		}
	}
	return nil
}

func (s *Service) publishPlaced(ctx context.Context, o *Order) {
	if s.publisher == nil {
		return
	}
	event := PlacedEvent{
		OrderID:  o.ID,
		UserID:   o.UserID,
		Name:     o.Customer.Name,
		Email:    o.Customer.Email,
		Items:    o.Items,
		Total:    o.Total,
		PlacedAt: o.Date,
	}
	if err := s.publisher.Publish(ctx, o.ID, EventOrderPlaced, event); err != nil {
		log.Printf("[Order] Failed to publish %s for order %s: %v", EventOrderPlaced, o.ID, err)
	}
}
