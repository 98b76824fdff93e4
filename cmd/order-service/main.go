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
	"github.com/example/shopmate/internal/cartapi"
	"github.com/example/shopmate/internal/config"
	"github.com/example/shopmate/internal/infrastructure/kafka"
	"github.com/example/shopmate/internal/infrastructure/store"
	"github.com/example/shopmate/internal/order"
	"github.com/example/shopmate/internal/productapi"
	"github.com/example/shopmate/internal/ratelimit"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[OrderService] Failed to load configuration: %v", err)
	}
	addr := getEnv("PORT_ADDR", ":3003")

	log.Println("[OrderService] ShopMate - Order Service")
	log.Printf("[OrderService] Store driver: %s", cfg.Store.Driver)
	log.Printf("[OrderService] Product service: %s", cfg.Services.ProductURL)
	log.Printf("[OrderService] Cart service: %s", cfg.Services.CartURL)

	st, closeStore, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.TablePrefix, cfg.Store.PostgresURL)
	if err != nil {
		log.Fatalf("[OrderService] Failed to open store: %v", err)
	}
	defer closeStore()

	products := productapi.NewClient(cfg.Services.ProductURL)
	carts := cartapi.NewClient(cfg.Services.CartURL)

	var publisher order.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Printf("[OrderService] Kafka: %v (topic %s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	orders := order.NewService(st, carts, products, publisher)

	handlers := api.NewOrderServiceHandlers(orders)
	router := api.NewOrderServiceRouter(handlers, api.RouterConfig{
		Component:      "OrderService",
		BodyLimit:      cfg.HTTP.BodyLimit,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Limiter:        ratelimit.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.MaxClients),
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("[OrderService] Server started on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[OrderService] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[OrderService] Shutting down...")
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
