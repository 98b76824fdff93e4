package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/shopmate/internal/email"
	"github.com/example/shopmate/internal/infrastructure/kafka"
	"github.com/example/shopmate/internal/order"
)

// Mailer sends order confirmations. Satisfied by email.Service.
type Mailer interface {
	SendOrderConfirmation(to, customerName, orderID string, total float64, items []email.OrderItem) error
}

// Handler turns order events into customer notifications.
type Handler struct {
	mailer Mailer
}

func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleMessage processes one event from Kafka. Unknown event types are
// ignored.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var envelope kafka.Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if envelope.Type != order.EventOrderPlaced {
		return nil
	}
	return h.handleOrderPlaced(envelope.Data)
}

func (h *Handler) handleOrderPlaced(data json.RawMessage) error {
	var e order.PlacedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal %s event: %v", order.EventOrderPlaced, err)
		return err
	}

	if e.Email == "" {
		log.Printf("[Notifier] Order %s has no customer email, skipping", e.OrderID)
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
			ItemTotal: item.ItemTotal,
		}
	}

	if err := h.mailer.SendOrderConfirmation(e.Email, e.Name, e.OrderID, e.Total, items); err != nil {
		log.Printf("[Notifier] Failed to send confirmation for order %s: %v", e.OrderID, err)
		return err
	}

	log.Printf("[Notifier] Sent confirmation for order %s to %s", e.OrderID, e.Email)
	return nil
}
