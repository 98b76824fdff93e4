package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/shopmate/internal/cart"
	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/chat"
	"github.com/example/shopmate/internal/order"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain errors onto the HTTP error taxonomy. Store
// internals never reach the client.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondErrorMessage(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, order.ErrNotFound):
		respondErrorMessage(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrEmptyCart):
		respondErrorMessage(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, cart.ErrInsufficientStock):
		respondErrorMessage(w, http.StatusConflict, "Insufficient stock")
	case errors.Is(err, cart.ErrInvalidProduct):
		respondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondErrorMessage(w, http.StatusBadRequest, "Invalid quantity (1-99 allowed)")
	case errors.Is(err, cart.ErrCartFull):
		respondErrorMessage(w, http.StatusBadRequest, "Cart is full (maximum 50 items)")
	case errors.Is(err, cart.ErrItemQuantityCap):
		respondErrorMessage(w, http.StatusBadRequest, "Maximum quantity per item reached (99)")
	case errors.Is(err, chat.ErrEmptyMessage):
		respondErrorMessage(w, http.StatusBadRequest, "Invalid message format")
	case errors.Is(err, chat.ErrMessageTooLong):
		respondErrorMessage(w, http.StatusBadRequest, "Message too long (maximum 1000 characters)")
	default:
		log.Printf("[API] Internal error: %v", err)
		respondErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
