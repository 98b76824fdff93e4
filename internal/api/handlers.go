package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/example/shopmate/internal/api/middleware"
	"github.com/example/shopmate/internal/cart"
	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/chat"
	"github.com/example/shopmate/internal/order"
)

// Handlers serves the monolithic storefront API.
type Handlers struct {
	products *catalog.Repository
	carts    *cart.Service
	orders   *order.Service
}

func NewHandlers(products *catalog.Repository, carts *cart.Service, orders *order.Service) *Handlers {
	return &Handlers{products: products, carts: carts, orders: orders}
}

// Product handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(extractPathParam(r.URL.Path, "/products/"))
	if err != nil || id <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Cart handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.carts.Add(r.Context(), middleware.SessionID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Item added to cart", "items": c.Items})
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(extractPathParam(r.URL.Path, "/cart/update/"))
	if err != nil || id <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.carts.Update(r.Context(), middleware.SessionID(r.Context()), id, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Cart updated", "items": c.Items})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(extractPathParam(r.URL.Path, "/cart/remove/"))
	if err != nil || id <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	c, err := h.carts.Remove(r.Context(), middleware.SessionID(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Item removed from cart", "items": c.Items})
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if _, err := h.carts.Clear(r.Context(), middleware.SessionID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// Order handlers

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionID(r.Context())
	if err := h.orders.Checkout(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.carts.View(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer order.CustomerInfo `json:"customer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.orders.Place(r.Context(), middleware.SessionID(r.Context()), req.Customer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForUser(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := extractPathParam(r.URL.Path, "/orders/")
	o, err := h.orders.GetByID(r.Context(), middleware.SessionID(r.Context()), orderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// ClearOrders bulk-deletes the session's order history. Demo-only, no
// authorization beyond the session cookie.
func (h *Handlers) ClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.ClearForUser(r.Context(), middleware.SessionID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Orders cleared"})
}

// Chat handlers

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid message format")
		return
	}

	reply, err := chat.Respond(req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(extractPathParam(r.URL.Path, "/api/ai/recommendations/"))
	respondJSON(w, http.StatusOK, map[string]any{"recommendations": chat.Recommendations(id)})
}

// Health

func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"service":   service,
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
