package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/infrastructure/store"
)

// ProductSource resolves products and adjusts their stock. The monolith
// binds the local catalog repository; the cart service binds an HTTP client
// for the product service.
type ProductSource interface {
	GetByID(ctx context.Context, id int) (*catalog.Product, error)
	UpdateStock(ctx context.Context, id, newStock int) (*catalog.Product, error)
}

// Service owns all cart mutations and their stock side-effects. Adding an
// item deducts product stock, removing or reducing one restores it, and an
// order makes the deduction permanent.
type Service struct {
	store    store.Store
	products ProductSource
	policy   CapPolicy
}

func NewService(s store.Store, products ProductSource, policy CapPolicy) *Service {
	return &Service{store: s, products: products, policy: policy}
}

func (s *Service) load(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	found, err := s.store.Get(ctx, store.CollectionCarts, store.Key{"userId": userID}, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, store.CollectionCarts, c); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Items returns the raw cart lines for a user.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Items, nil
}

// View resolves the cart against the catalog and computes totals. Lines
// whose product can no longer be resolved are skipped.
func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: []ViewItem{}}
	for _, item := range c.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			log.Printf("[Cart] Skipping unresolvable product %d in cart for %s: %v", item.ProductID, userID, err)
			continue
		}
		itemTotal := product.Price * float64(item.Quantity)
		view.Items = append(view.Items, ViewItem{
			Product:   *product,
			Quantity:  item.Quantity,
			ItemTotal: itemTotal,
		})
		view.Total += itemTotal
	}
	view.Count = len(view.Items)
	return view, nil
}

// Add puts quantity units of a product into the cart, deducting them from
// the product's stock.
func (s *Service) Add(ctx context.Context, userID string, productID, quantity int) (*Cart, error) {
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(c.Items, productID)
	if idx < 0 && len(c.Items) >= MaxDistinctItems {
		return nil, ErrCartFull
	}
	if idx >= 0 && c.Items[idx].Quantity+quantity > MaxItemQuantity {
		if s.policy == CapReject {
			return nil, ErrItemQuantityCap
		}
		quantity = MaxItemQuantity - c.Items[idx].Quantity
		if quantity == 0 {
			return nil, ErrItemQuantityCap
		}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	adj, err := s.adjustStock(ctx, userID, productID, -quantity)
	if err != nil {
		return nil, err
	}

	if idx >= 0 {
		c.Items[idx].Quantity += quantity
	} else {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	}

	if err := s.save(ctx, c); err != nil {
		s.compensate(ctx, adj)
		return nil, err
	}
	s.commit(ctx, adj)

	log.Printf("[Cart] Added %d x product %d for %s", quantity, productID, userID)
	return c, nil
}

// Update sets an item's quantity, adjusting stock by the difference. A
// quantity of zero or less removes the item entirely. Updating an item that
// is not in the cart is a no-op.
func (s *Service) Update(ctx context.Context, userID string, productID, newQuantity int) (*Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(c.Items, productID)
	if idx < 0 {
		return c, nil
	}

	if newQuantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	if newQuantity > MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	delta := c.Items[idx].Quantity - newQuantity
	if delta == 0 {
		return c, nil
	}

	if delta < 0 {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product.Stock < -delta {
			return nil, ErrInsufficientStock
		}
	}

	adj, err := s.adjustStock(ctx, userID, productID, delta)
	if err != nil {
		return nil, err
	}

	c.Items[idx].Quantity = newQuantity
	if err := s.save(ctx, c); err != nil {
		s.compensate(ctx, adj)
		return nil, err
	}
	s.commit(ctx, adj)

	log.Printf("[Cart] Updated product %d to quantity %d for %s", productID, newQuantity, userID)
	return c, nil
}

// Remove drops an item and restores its quantity to the product's stock.
// Removing an item that is not in the cart is a no-op.
func (s *Service) Remove(ctx context.Context, userID string, productID int) (*Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(c.Items, productID)
	if idx < 0 {
		return c, nil
	}

	adj, err := s.restoreStock(ctx, userID, productID, c.Items[idx].Quantity)
	if err != nil {
		return nil, err
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if err := s.save(ctx, c); err != nil {
		s.compensate(ctx, adj...)
		return nil, err
	}
	s.commit(ctx, adj...)

	log.Printf("[Cart] Removed product %d for %s", productID, userID)
	return c, nil
}

// Clear restores every item's quantity to its product's stock and empties
// the cart.
func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var adjustments []stockAdjustment
	for _, item := range c.Items {
		adj, err := s.restoreStock(ctx, userID, item.ProductID, item.Quantity)
		if err != nil {
			s.compensate(ctx, adjustments...)
			return nil, err
		}
		adjustments = append(adjustments, adj...)
	}

	c.Items = []Item{}
	if err := s.save(ctx, c); err != nil {
		s.compensate(ctx, adjustments...)
		return nil, err
	}
	s.commit(ctx, adjustments...)

	log.Printf("[Cart] Cleared cart for %s", userID)
	return c, nil
}

// Empty persists an empty cart without touching stock. Used at checkout,
// where the deductions made at add time become permanent.
func (s *Service) Empty(ctx context.Context, userID string) error {
	return s.save(ctx, &Cart{UserID: userID, Items: []Item{}})
}

// restoreStock credits quantity units back to a product. A product that no
// longer exists is skipped; its units are gone with it.
func (s *Service) restoreStock(ctx context.Context, userID string, productID, quantity int) ([]stockAdjustment, error) {
	adj, err := s.adjustStock(ctx, userID, productID, quantity)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			log.Printf("[Cart] Product %d no longer exists, dropping %d units without restore", productID, quantity)
			return nil, nil
		}
		return nil, err
	}
	return []stockAdjustment{adj}, nil
}

// adjustStock applies delta to a product's stock, recording the adjustment
// durably first so a crash before the dependent cart write can be repaired
// by RecoverPending.
func (s *Service) adjustStock(ctx context.Context, userID string, productID, delta int) (stockAdjustment, error) {
	adj := stockAdjustment{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Delta:     delta,
		CreatedAt: time.Now(),
	}
	if err := s.store.Put(ctx, store.CollectionStockAdjustments, adj); err != nil {
		return adj, fmt.Errorf("failed to record stock adjustment: %w", err)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		s.discard(ctx, adj)
		return adj, err
	}
	if _, err := s.products.UpdateStock(ctx, productID, product.Stock+delta); err != nil {
		s.discard(ctx, adj)
		return adj, fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}
	return adj, nil
}

// commit deletes adjustment records once the dependent cart write is
// durable.
func (s *Service) commit(ctx context.Context, adjustments ...stockAdjustment) {
	for _, adj := range adjustments {
		s.discard(ctx, adj)
	}
}

// compensate undoes stock adjustments whose dependent cart write failed. An
// adjustment that cannot be undone here keeps its record so RecoverPending
// can finish the job.
func (s *Service) compensate(ctx context.Context, adjustments ...stockAdjustment) {
	for _, adj := range adjustments {
		product, err := s.products.GetByID(ctx, adj.ProductID)
		if err != nil {
			log.Printf("[Cart] Could not compensate adjustment %s (product %d): %v", adj.ID, adj.ProductID, err)
			continue
		}
		if _, err := s.products.UpdateStock(ctx, adj.ProductID, product.Stock-adj.Delta); err != nil {
			log.Printf("[Cart] Could not compensate adjustment %s (product %d), leaving record for recovery: %v", adj.ID, adj.ProductID, err)
			continue
		}
		s.discard(ctx, adj)
	}
}

// RecoverPending undoes stock adjustments left behind by a crash between
// the stock write and the cart write. Run at startup.
func (s *Service) RecoverPending(ctx context.Context) error {
	var pending []stockAdjustment
	if err := s.store.Scan(ctx, store.CollectionStockAdjustments, nil, &pending); err != nil {
		return fmt.Errorf("failed to scan pending stock adjustments: %w", err)
	}

	for _, adj := range pending {
		product, err := s.products.GetByID(ctx, adj.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				s.discard(ctx, adj)
				continue
			}
			return err
		}
		if _, err := s.products.UpdateStock(ctx, adj.ProductID, product.Stock-adj.Delta); err != nil {
			return fmt.Errorf("failed to recover adjustment %s: %w", adj.ID, err)
		}
		s.discard(ctx, adj)
		log.Printf("[Cart] Recovered pending stock adjustment %s (product %d, delta %d)", adj.ID, adj.ProductID, adj.Delta)
	}
	return nil
}

func (s *Service) discard(ctx context.Context, adj stockAdjustment) {
	if err := s.store.Delete(ctx, store.CollectionStockAdjustments, store.Key{"id": adj.ID}); err != nil {
		log.Printf("[Cart] Failed to delete stock adjustment %s: %v", adj.ID, err)
	}
}

func findItem(items []Item, productID int) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
