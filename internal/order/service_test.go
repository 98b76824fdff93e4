package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopmate/internal/cart"
	"github.com/example/shopmate/internal/catalog"
	"github.com/example/shopmate/internal/infrastructure/store"
)

// capturePublisher records published events, optionally failing.
type capturePublisher struct {
	events []string
	err    error
	last   any
}

func (p *capturePublisher) Publish(ctx context.Context, key, eventType string, data any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, eventType)
	p.last = data
	return nil
}

type orderTestEnv struct {
	orders    *Service
	carts     *cart.Service
	repo      *catalog.Repository
	store     *store.MemoryStore
	publisher *capturePublisher
}

func newTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	s := store.NewMemoryStore()
	repo := catalog.NewRepository(s, catalog.FallbackPropagate)
	require.NoError(t, repo.Seed(context.Background()))
	carts := cart.NewService(s, repo, cart.CapClamp)
	publisher := &capturePublisher{}
	return &orderTestEnv{
		orders:    NewService(s, carts, repo, publisher),
		carts:     carts,
		repo:      repo,
		store:     s,
		publisher: publisher,
	}
}

var testCustomer = CustomerInfo{Name: "Jane Doe", Email: "jane@example.com", Address: "1 Main St"}

func TestService_Checkout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.orders.Checkout(ctx, "user-1"), ErrEmptyCart)

	_, err := env.carts.Add(ctx, "user-1", 1, 2)
	require.NoError(t, err)
	assert.NoError(t, env.orders.Checkout(ctx, "user-1"))
}

func TestService_Place(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 2) // 699.99 each
	require.NoError(t, err)
	_, err = env.carts.Add(ctx, "user-1", 3, 1) // 199.99
	require.NoError(t, err)

	o, err := env.orders.Place(ctx, "user-1", testCustomer)
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	_, parseErr := uuid.Parse(o.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, testCustomer, o.Customer)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Smartphone X12 Pro", o.Items[0].Product.Name)
	assert.InDelta(t, 1399.98, o.Items[0].ItemTotal, 0.001)
	assert.InDelta(t, 1599.97, o.Total, 0.001)
}

func TestService_Place_EmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.Place(context.Background(), "user-1", testCustomer)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, env.publisher.events)
}

func TestService_Place_EmptiesCartWithoutRestoringStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 5)
	require.NoError(t, err)

	_, err = env.orders.Place(ctx, "user-1", testCustomer)
	require.NoError(t, err)

	items, err := env.carts.Items(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	// The ordered units stay deducted.
	p, err := env.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, p.Stock)
}

func TestService_Place_SnapshotsPriceAtOrderTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 1)
	require.NoError(t, err)

	o, err := env.orders.Place(ctx, "user-1", testCustomer)
	require.NoError(t, err)
	require.InDelta(t, 699.99, o.Items[0].Product.Price, 0.001)

	// A later catalog change must not leak into the stored order.
	p, err := env.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	p.Price = 1.00
	require.NoError(t, env.store.Put(ctx, store.CollectionProducts, *p))

	got, err := env.orders.GetByID(ctx, "user-1", o.ID)
	require.NoError(t, err)
	assert.InDelta(t, 699.99, got.Items[0].Product.Price, 0.001)
}

func TestService_Place_PublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 1)
	require.NoError(t, err)

	o, err := env.orders.Place(ctx, "user-1", testCustomer)
	require.NoError(t, err)

	require.Equal(t, []string{EventOrderPlaced}, env.publisher.events)
	event, ok := env.publisher.last.(PlacedEvent)
	require.True(t, ok)
	assert.Equal(t, o.ID, event.OrderID)
	assert.Equal(t, "jane@example.com", event.Email)
	assert.InDelta(t, o.Total, event.Total, 0.001)
}

func TestService_Place_PublishFailureDoesNotFailOrder(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 1)
	require.NoError(t, err)

	o, err := env.orders.Place(ctx, "user-1", testCustomer)
	require.NoError(t, err)

	got, err := env.orders.GetByID(ctx, "user-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestService_Place_NilPublisher(t *testing.T) {
	env := newTestEnv(t)
	env.orders = NewService(env.store, env.carts, env.repo, nil)
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 1)
	require.NoError(t, err)

	_, err = env.orders.Place(ctx, "user-1", testCustomer)
	assert.NoError(t, err)
}

func TestService_GetByID_OwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user-1", 1, 1)
	require.NoError(t, err)
	o, err := env.orders.Place(ctx, "user-1", testCustomer)
	require.NoError(t, err)

	// Another user probing the same ID sees nothing, not a permission
	// error.
	_, err = env.orders.GetByID(ctx, "user-2", o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := env.orders.GetByID(ctx, "user-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestService_GetByID_Unknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.GetByID(context.Background(), "user-1", uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, user := range []string{"user-1", "user-1", "user-2"} {
		_, err := env.carts.Add(ctx, user, 1, 1)
		require.NoError(t, err)
		_, err = env.orders.Place(ctx, user, testCustomer)
		require.NoError(t, err)
	}

	orders, err := env.orders.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, "user-1", o.UserID)
	}
}

func TestService_ListForUser_Empty(t *testing.T) {
	env := newTestEnv(t)

	orders, err := env.orders.ListForUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestService_ClearForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, user := range []string{"user-1", "user-2"} {
		_, err := env.carts.Add(ctx, user, 1, 1)
		require.NoError(t, err)
		_, err = env.orders.Place(ctx, user, testCustomer)
		require.NoError(t, err)
	}

	require.NoError(t, env.orders.ClearForUser(ctx, "user-1"))

	mine, err := env.orders.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, mine)

	// Other users' orders are untouched.
	theirs, err := env.orders.ListForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
