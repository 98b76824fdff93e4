// Package productapi is the HTTP client for the product service, used by
// the cart and order services in the decomposed deployment.
package productapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/shopmate/internal/catalog"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// GetByID fetches one product. A 404 maps to catalog.ErrNotFound so callers
// handle local and remote catalogs identically.
func (c *Client) GetByID(ctx context.Context, id int) (*catalog.Product, error) {
	url := fmt.Sprintf("%s/api/products/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, catalog.ErrNotFound
	default:
		return nil, fmt.Errorf("product service returned %d for product %d", resp.StatusCode, id)
	}

	var product catalog.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	return &product, nil
}

// UpdateStock sets a product's stock level.
func (c *Client) UpdateStock(ctx context.Context, id, newStock int) (*catalog.Product, error) {
	body, err := json.Marshal(map[string]int{"stock": newStock})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/products/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, catalog.ErrNotFound
	default:
		return nil, fmt.Errorf("product service returned %d updating product %d", resp.StatusCode, id)
	}

	var product catalog.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	return &product, nil
}
