package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/shopmate/internal/api"
	"github.com/example/shopmate/internal/cart"
	"github.com/example/shopmate/internal/config"
	"github.com/example/shopmate/internal/infrastructure/store"
	"github.com/example/shopmate/internal/productapi"
	"github.com/example/shopmate/internal/ratelimit"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[CartService] Failed to load configuration: %v", err)
	}
	addr := getEnv("PORT_ADDR", ":3002")

	log.Println("[CartService] ShopMate - Cart Service")
	log.Printf("[CartService] Store driver: %s", cfg.Store.Driver)
	log.Printf("[CartService] Product service: %s", cfg.Services.ProductURL)

	st, closeStore, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.TablePrefix, cfg.Store.PostgresURL)
	if err != nil {
		log.Fatalf("[CartService] Failed to open store: %v", err)
	}
	defer closeStore()

	// Product data comes from the product service over HTTP. Quantity
	// caps reject here instead of clamping.
	products := productapi.NewClient(cfg.Services.ProductURL)
	carts := cart.NewService(st, products, cart.CapReject)

	if err := carts.RecoverPending(ctx); err != nil {
		log.Printf("[CartService] Stock recovery incomplete: %v", err)
	}

	handlers := api.NewCartServiceHandlers(carts)
	router := api.NewCartServiceRouter(handlers, api.RouterConfig{
		Component:      "CartService",
		BodyLimit:      cfg.HTTP.BodyLimit,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Limiter:        ratelimit.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.MaxClients),
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("[CartService] Server started on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[CartService] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[CartService] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
