package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopmate/internal/email"
	"github.com/example/shopmate/internal/infrastructure/kafka"
	"github.com/example/shopmate/internal/order"
)

type stubMailer struct {
	err   error
	to    string
	name  string
	order string
	total float64
	items []email.OrderItem
	sent  int
}

func (m *stubMailer) SendOrderConfirmation(to, customerName, orderID string, total float64, items []email.OrderItem) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.name, m.order, m.total, m.items = to, customerName, orderID, total, items
	m.sent++
	return nil
}

func envelope(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(kafka.Envelope{Type: eventType, Data: raw})
	require.NoError(t, err)
	return msg
}

func placedEvent() order.PlacedEvent {
	return order.PlacedEvent{
		OrderID: "order-1",
		UserID:  "user-1",
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Items: []order.OrderItem{
			{
				Product:   order.ProductSnapshot{ID: 1, Name: "Widget", Price: 9.99},
				Quantity:  2,
				ItemTotal: 19.98,
			},
		},
		Total:    19.98,
		PlacedAt: time.Now(),
	}
}

func TestHandler_OrderPlaced_SendsConfirmation(t *testing.T) {
	mailer := &stubMailer{}
	h := NewHandler(mailer)

	msg := envelope(t, order.EventOrderPlaced, placedEvent())
	require.NoError(t, h.HandleMessage(context.Background(), []byte("order-1"), msg))

	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, "jane@example.com", mailer.to)
	assert.Equal(t, "Jane Doe", mailer.name)
	assert.Equal(t, "order-1", mailer.order)
	assert.InDelta(t, 19.98, mailer.total, 0.001)
	require.Len(t, mailer.items, 1)
	assert.Equal(t, "Widget", mailer.items[0].Name)
	assert.Equal(t, 2, mailer.items[0].Quantity)
}

func TestHandler_IgnoresOtherEventTypes(t *testing.T) {
	mailer := &stubMailer{}
	h := NewHandler(mailer)

	msg := envelope(t, "product.updated", map[string]any{"id": 1})
	require.NoError(t, h.HandleMessage(context.Background(), nil, msg))
	assert.Zero(t, mailer.sent)
}

func TestHandler_SkipsMissingEmail(t *testing.T) {
	mailer := &stubMailer{}
	h := NewHandler(mailer)

	event := placedEvent()
	event.Email = ""
	msg := envelope(t, order.EventOrderPlaced, event)

	require.NoError(t, h.HandleMessage(context.Background(), nil, msg))
	assert.Zero(t, mailer.sent)
}

func TestHandler_MalformedEnvelope(t *testing.T) {
	h := NewHandler(&stubMailer{})
	assert.Error(t, h.HandleMessage(context.Background(), nil, []byte("not json")))
}

func TestHandler_MailerFailure(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp down")}
	h := NewHandler(mailer)

	msg := envelope(t, order.EventOrderPlaced, placedEvent())
	assert.Error(t, h.HandleMessage(context.Background(), nil, msg))
}
