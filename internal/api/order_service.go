package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/shopmate/internal/order"
)

// OrderServiceHandlers serves the order microservice API.
type OrderServiceHandlers struct {
	orders *order.Service
}

func NewOrderServiceHandlers(orders *order.Service) *OrderServiceHandlers {
	return &OrderServiceHandlers{orders: orders}
}

func (h *OrderServiceHandlers) place(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string             `json:"userId"`
		Customer order.CustomerInfo `json:"customer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.orders.Place(r.Context(), req.UserID, req.Customer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *OrderServiceHandlers) list(w http.ResponseWriter, r *http.Request, userID string) {
	orders, err := h.orders.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderServiceHandlers) get(w http.ResponseWriter, r *http.Request, userID, orderID string) {
	o, err := h.orders.GetByID(r.Context(), userID, orderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderServiceHandlers) clear(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.orders.ClearForUser(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Orders cleared"})
}

// NewOrderServiceRouter wires the order microservice routes.
func NewOrderServiceRouter(h *OrderServiceHandlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.place(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		rest := extractPathParam(r.URL.Path, "/api/orders/")
		segments := strings.Split(strings.Trim(rest, "/"), "/")

		switch {
		case len(segments) == 1 && segments[0] != "":
			userID := segments[0]
			switch r.Method {
			case http.MethodGet:
				h.list(w, r, userID)
			case http.MethodDelete:
				h.clear(w, r, userID)
			default:
				respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		case len(segments) == 2:
			switch r.Method {
			case http.MethodGet:
				h.get(w, r, segments[0], segments[1])
			default:
				respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
			}

		default:
			respondErrorMessage(w, http.StatusNotFound, "Not found")
		}
	})

	mux.HandleFunc("/health", Health("order-service"))

	return wrapCommon(mux, cfg)
}
