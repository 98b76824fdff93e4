package catalog

import (
	"context"
	"errors"
	"log"

	"github.com/example/shopmate/internal/infrastructure/store"
)

var ErrNotFound = errors.New("product not found")

// FallbackPolicy decides what catalog reads do when the store is
// unreachable.
type FallbackPolicy int

const (
	// FallbackSample serves the built-in sample catalog on store read
	// failure so the storefront stays browsable. Writes still fail.
	FallbackSample FallbackPolicy = iota
	// FallbackPropagate surfaces the store error to the caller.
	FallbackPropagate
)

// Repository is the authoritative source of products and their stock.
type Repository struct {
	store    store.Store
	fallback FallbackPolicy
}

func NewRepository(s store.Store, fallback FallbackPolicy) *Repository {
	return &Repository{store: s, fallback: fallback}
}

// GetAll lists the catalog. An empty store also yields the sample catalog so
// a fresh deployment has something to sell.
func (r *Repository) GetAll(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.store.Scan(ctx, store.CollectionProducts, nil, &products); err != nil {
		if r.fallback == FallbackSample {
			log.Printf("[Catalog] Store scan failed, serving sample catalog: %v", err)
			return SampleCatalog(), nil
		}
		return nil, err
	}
	if len(products) == 0 {
		return SampleCatalog(), nil
	}
	return products, nil
}

// GetByID loads one product. Under FallbackSample a store failure or miss
// falls back to the sample catalog before reporting ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int) (*Product, error) {
	var product Product
	found, err := r.store.Get(ctx, store.CollectionProducts, store.Key{"id": id}, &product)
	if err != nil {
		if r.fallback == FallbackSample {
			log.Printf("[Catalog] Store get failed for product %d, trying sample catalog: %v", id, err)
			if p, ok := sampleByID(id); ok {
				return p, nil
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !found {
		if r.fallback == FallbackSample {
			if p, ok := sampleByID(id); ok {
				return p, nil
			}
		}
		return nil, ErrNotFound
	}
	return &product, nil
}

// UpdateStock overwrites a product's stock by merging into the stored
// record. Read-modify-write, not atomic: a concurrent writer can be lost.
func (r *Repository) UpdateStock(ctx context.Context, id, newStock int) (*Product, error) {
	var product Product
	found, err := r.store.Get(ctx, store.CollectionProducts, store.Key{"id": id}, &product)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	product.Stock = newStock
	if err := r.store.Put(ctx, store.CollectionProducts, product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Seed writes the sample catalog when the products collection is empty.
func (r *Repository) Seed(ctx context.Context) error {
	var products []Product
	if err := r.store.Scan(ctx, store.CollectionProducts, nil, &products); err != nil {
		return err
	}
	if len(products) > 0 {
		return nil
	}

	log.Println("[Catalog] Initializing products")
	for _, p := range SampleCatalog() {
		if err := r.store.Put(ctx, store.CollectionProducts, p); err != nil {
			return err
		}
	}
	return nil
}
