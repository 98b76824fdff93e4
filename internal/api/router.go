package api

import (
	"net/http"
	"time"

	"github.com/example/shopmate/internal/api/middleware"
	"github.com/example/shopmate/internal/ratelimit"
	"github.com/example/shopmate/internal/session"
)

// RouterConfig carries the middleware settings shared by every deployment
// shape.
type RouterConfig struct {
	Component      string
	BodyLimit      int64
	RequestTimeout time.Duration
	Limiter        ratelimit.Limiter
	Tokens         *session.TokenService
}

// NewRouter wires the monolithic storefront routes.
func NewRouter(handlers *Handlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Products
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProduct(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Cart
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/cart/add", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.AddToCart(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/cart/update/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.UpdateCartItem(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/cart/remove/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/cart/clear", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodDelete:
			handlers.ClearCart(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Checkout and orders
	mux.HandleFunc("/checkout", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.Checkout(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.PlaceOrder(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orders/clear" {
			handlers.ClearOrders(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Chat
	mux.HandleFunc("/api/ai/chat", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.Chat(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/ai/recommendations/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.Recommendations(w, r)
		default:
			respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", Health("shopmate"))

	var h http.Handler = mux
	h = middleware.Session(cfg.Tokens)(h)
	return wrapCommon(h, cfg)
}

// wrapCommon applies the middleware shared by the monolith and the
// microservices: logging on the outside, then body and time limits, then
// rate limiting.
func wrapCommon(h http.Handler, cfg RouterConfig) http.Handler {
	if cfg.Limiter != nil {
		h = middleware.RateLimit(cfg.Limiter)(h)
	}
	if cfg.RequestTimeout > 0 {
		h = middleware.Timeout(cfg.RequestTimeout)(h)
	}
	if cfg.BodyLimit > 0 {
		h = middleware.BodyLimit(cfg.BodyLimit)(h)
	}
	return middleware.Logging(cfg.Component)(h)
}
