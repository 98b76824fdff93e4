// Package cartapi is the HTTP client for the cart service, used by the
// order service in the decomposed deployment.
package cartapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/shopmate/internal/cart"
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

// Items fetches the user's cart lines.
func (c *Client) Items(ctx context.Context, userID string) ([]cart.Item, error) {
	url := fmt.Sprintf("%s/api/cart/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cart service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cart service returned %d for user %s", resp.StatusCode, userID)
	}

	var view struct {
		Items []struct {
			ID       int `json:"id"`
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode cart for %s: %w", userID, err)
	}

	items := make([]cart.Item, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, cart.Item{ProductID: item.ID, Quantity: item.Quantity})
	}
	return items, nil
}

// Empty clears the user's cart without restoring stock. Used after an order
// is placed.
func (c *Client) Empty(ctx context.Context, userID string) error {
	url := fmt.Sprintf("%s/api/cart/%s?restock=false", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cart service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cart service returned %d emptying cart for %s", resp.StatusCode, userID)
	}
	return nil
}
