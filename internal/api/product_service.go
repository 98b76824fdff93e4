package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/example/shopmate/internal/catalog"
)

// ProductServiceHandlers serves the product microservice API.
type ProductServiceHandlers struct {
	products *catalog.Repository
}

func NewProductServiceHandlers(products *catalog.Repository) *ProductServiceHandlers {
	return &ProductServiceHandlers{products: products}
}

func (h *ProductServiceHandlers) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductServiceHandlers) get(w http.ResponseWriter, r *http.Request, id int) {
	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductServiceHandlers) updateStock(w http.ResponseWriter, r *http.Request, id int) {
	var req struct {
		Stock *int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stock == nil {
		respondErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if *req.Stock < 0 {
		respondErrorMessage(w, http.StatusBadRequest, "Stock cannot be negative")
		return
	}

	product, err := h.products.UpdateStock(r.Context(), id, *req.Stock)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// NewProductServiceRouter wires the product microservice routes.
func NewProductServiceRouter(h *ProductServiceHandlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(extractPathParam(r.URL.Path, "/api/products/"))
		if err != nil || id <= 0 {
			respondErrorMessage(w, http.StatusBadRequest, "Invalid product ID")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.updateStock(w, r, id)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", Health("product-service"))

	return wrapCommon(mux, cfg)
}
