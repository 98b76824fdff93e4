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
	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/config"
	"github.com/example/shopmate/internal/infrastructure/store"
	"github.com/example/shopmate/internal/ratelimit"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[ProductService] Failed to load configuration: %v", err)
	}
	addr := getEnv("PORT_ADDR", ":3001")

	log.Println("[ProductService] ShopMate - Product Service")
	log.Printf("[ProductService] Store driver: %s", cfg.Store.Driver)

	st, closeStore, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.TablePrefix, cfg.Store.PostgresURL)
	if err != nil {
		log.Fatalf("[ProductService] Failed to open store: %v", err)
	}
	defer closeStore()

	products := catalog.NewRepository(st, catalog.FallbackSample)
	if err := products.Seed(ctx); err != nil {
		log.Printf("[ProductService] Catalog seed skipped: %v", err)
	}

	handlers := api.NewProductServiceHandlers(products)
	router := api.NewProductServiceRouter(handlers, api.RouterConfig{
		Component:      "ProductService",
		BodyLimit:      cfg.HTTP.BodyLimit,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Limiter:        ratelimit.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.MaxClients),
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("[ProductService] Server started on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[ProductService] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[ProductService] Shutting down...")
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
