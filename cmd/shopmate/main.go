package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/shopmate/internal/api"
	"github.com/example/shopmate/internal/cart"
	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/config"
	"github.com/example/shopmate/internal/infrastructure/kafka"
	"github.com/example/shopmate/internal/infrastructure/store"
	"github.com/example/shopmate/internal/order"
	"github.com/example/shopmate/internal/ratelimit"
	"github.com/example/shopmate/internal/session"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[API] Failed to load configuration: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] ShopMate - Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Store driver: %s", cfg.Store.Driver)
	log.Printf("[API] Cart cap policy: %s", cfg.Cart.CapPolicy)

	// Document store backend
	st, closeStore, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.TablePrefix, cfg.Store.PostgresURL)
	if err != nil {
		log.Fatalf("[API] Failed to open store: %v", err)
	}
	defer closeStore()

	// Catalog with sample-data fallback, seeded so browsing works on a
	// fresh store.
	products := catalog.NewRepository(st, catalog.FallbackSample)
	if err := products.Seed(ctx); err != nil {
		log.Printf("[API] Catalog seed skipped: %v", err)
	}

	capPolicy := cart.CapClamp
	if cfg.Cart.CapPolicy == "reject" {
		capPolicy = cart.CapReject
	}
	carts := cart.NewService(st, products, capPolicy)

	// Undo stock adjustments left behind by a crash between the stock
	// write and the cart write.
	if err := carts.RecoverPending(ctx); err != nil {
		log.Printf("[API] Stock recovery incomplete: %v", err)
	}

	// Order events are optional: without brokers orders still work, they
	// just don't notify.
	var publisher order.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Printf("[API] Kafka: %v (topic %s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	orders := order.NewService(st, carts, products, publisher)

	// Rate limiter: in-process by default, shared Redis when configured.
	var limiter ratelimit.Limiter
	if cfg.RateLimit.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.Window, cfg.RateLimit.Max)
		log.Printf("[API] Rate limiter: redis (%s)", cfg.RateLimit.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.MaxClients)
		log.Println("[API] Rate limiter: in-process")
	}

	tokens := session.NewTokenService(cfg.Session.Secret, cfg.Session.TTL)

	handlers := api.NewHandlers(products, carts, orders)
	router := api.NewRouter(handlers, api.RouterConfig{
		Component:      "API",
		BodyLimit:      cfg.HTTP.BodyLimit,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Limiter:        limiter,
		Tokens:         tokens,
	})

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
