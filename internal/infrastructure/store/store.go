package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Collection names used by the storefront.
const (
	CollectionProducts         = "products"
	CollectionCarts            = "carts"
	CollectionOrders           = "orders"
	CollectionStockAdjustments = "stock_adjustments"
)

// ScanLimit caps the number of items returned by a single Scan.
const ScanLimit = 1000

// Key addresses a single document within a collection.
type Key map[string]any

// Filter restricts Scan results to documents whose field equals the value.
// Filtering happens after the scan limit is applied, matching DynamoDB
// FilterExpression semantics.
type Filter struct {
	Field  string
	Equals any
}

// Store is the document store contract: schemaless records addressed by
// collection name and primary key. No transactions, no conditional writes.
type Store interface {
	// Get loads the document for key into out. Returns false when the
	// document does not exist.
	Get(ctx context.Context, collection string, key Key, out any) (bool, error)

	// Put writes item as a full-record upsert.
	Put(ctx context.Context, collection string, item any) error

	// Scan reads up to ScanLimit documents into out (a pointer to a slice),
	// optionally filtered.
	Scan(ctx context.Context, collection string, filter *Filter, out any) error

	// Delete removes the document for key. Deleting a missing document is
	// not an error.
	Delete(ctx context.Context, collection string, key Key) error

	// Update merges the fields in set into the document for key and loads
	// the updated document into out when out is non-nil. Returns false
	// when the document does not exist.
	Update(ctx context.Context, collection string, key Key, set map[string]any, out any) (bool, error)
}

// keyFields maps each collection to its primary key attribute.
var keyFields = map[string]string{
	CollectionProducts:         "id",
	CollectionCarts:            "userId",
	CollectionOrders:           "id",
	CollectionStockAdjustments: "id",
}

// KeyField returns the primary key attribute for a collection.
func KeyField(collection string) string {
	if f, ok := keyFields[collection]; ok {
		return f
	}
	return "id"
}

// canonicalKey renders a key as a stable string for backends that address
// documents by a single opaque key (Postgres, memory).
func canonicalKey(key Key) string {
	fields := make([]string, 0, len(key))
	for f := range key {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+"="+formatKeyValue(key[f]))
	}
	return strings.Join(parts, "&")
}

// formatKeyValue renders a key value identically whether it arrives as a Go
// int or as a float64 from a JSON round trip.
func formatKeyValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
