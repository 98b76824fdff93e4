package productapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopmate/internal/catalog"
)

func newFakeProductService(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/products/1" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(catalog.Product{ID: 1, Name: "Widget", Price: 9.99, Stock: 12})
		case r.URL.Path == "/api/products/1" && r.Method == http.MethodPut:
			var req struct {
				Stock int `json:"stock"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			json.NewEncoder(w).Encode(catalog.Product{ID: 1, Name: "Widget", Price: 9.99, Stock: req.Stock})
		case r.URL.Path == "/api/products/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Product not found"})
		}
	}))
}

func TestClient_GetByID(t *testing.T) {
	srv := newFakeProductService(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	p, err := client.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, 12, p.Stock)
}

func TestClient_GetByID_NotFound(t *testing.T) {
	srv := newFakeProductService(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	_, err := client.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestClient_GetByID_ServerError(t *testing.T) {
	srv := newFakeProductService(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	_, err := client.GetByID(context.Background(), 500)
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}

func TestClient_GetByID_Unreachable(t *testing.T) {
	srv := newFakeProductService(t)
	srv.Close()
	client := NewClient(srv.URL)

	_, err := client.GetByID(context.Background(), 1)
	assert.Error(t, err)
}

func TestClient_UpdateStock(t *testing.T) {
	srv := newFakeProductService(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	p, err := client.UpdateStock(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestClient_UpdateStock_NotFound(t *testing.T) {
	srv := newFakeProductService(t)
	defer srv.Close()
	client := NewClient(srv.URL)

	_, err := client.UpdateStock(context.Background(), 42, 3)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
