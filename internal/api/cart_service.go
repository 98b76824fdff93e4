package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/shopmate/internal/cart"
)

// CartServiceHandlers serves the cart microservice API. The caller names
// the user in the path; in the decomposed deployment the frontend owns the
// session cookie.
type CartServiceHandlers struct {
	carts *cart.Service
}

func NewCartServiceHandlers(carts *cart.Service) *CartServiceHandlers {
	return &CartServiceHandlers{carts: carts}
}

func (h *CartServiceHandlers) view(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := h.carts.View(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartServiceHandlers) add(w http.ResponseWriter, r *http.Request, userID string) {
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

	c, err := h.carts.Add(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Item added to cart", "items": c.Items})
}

func (h *CartServiceHandlers) update(w http.ResponseWriter, r *http.Request, userID string, productID int) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.carts.Update(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Cart updated", "items": c.Items})
}

func (h *CartServiceHandlers) remove(w http.ResponseWriter, r *http.Request, userID string, productID int) {
	c, err := h.carts.Remove(r.Context(), userID, productID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Item removed from cart", "items": c.Items})
}

// clear empties the cart. By default removed units are restored to stock;
// restock=false skips the restore and is used by the order service after
// checkout.
func (h *CartServiceHandlers) clear(w http.ResponseWriter, r *http.Request, userID string) {
	if r.URL.Query().Get("restock") == "false" {
		if err := h.carts.Empty(r.Context(), userID); err != nil {
			respondError(w, err)
			return
		}
	} else {
		if _, err := h.carts.Clear(r.Context(), userID); err != nil {
			respondError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// NewCartServiceRouter wires the cart microservice routes.
func NewCartServiceRouter(h *CartServiceHandlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		rest := extractPathParam(r.URL.Path, "/api/cart/")
		segments := strings.Split(strings.Trim(rest, "/"), "/")

		switch {
		case len(segments) == 1 && segments[0] != "":
			userID := segments[0]
			switch r.Method {
			case http.MethodGet:
				h.view(w, r, userID)
			case http.MethodDelete:
				h.clear(w, r, userID)
			default:
				respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		case len(segments) == 2 && segments[1] == "items":
			userID := segments[0]
			switch r.Method {
			case http.MethodPost:
				h.add(w, r, userID)
			default:
				respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		case len(segments) == 3 && segments[1] == "items":
			userID := segments[0]
			productID, err := strconv.Atoi(segments[2])
			if err != nil || productID <= 0 {
				respondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
				return
			}
			switch r.Method {
			case http.MethodPut:
				h.update(w, r, userID, productID)
			case http.MethodDelete:
				h.remove(w, r, userID, productID)
			default:
				respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		default:
			respondErrorMessage(w, http.StatusNotFound, "Not found")
		}
	})

	mux.HandleFunc("/health", Health("cart-service"))

	return wrapCommon(mux, cfg)
}
