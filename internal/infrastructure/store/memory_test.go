package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Put(ctx, CollectionProducts, testDoc{ID: 1, Name: "Widget"})
	require.NoError(t, err)

	var got testDoc
	found, err := s.Get(ctx, CollectionProducts, Key{"id": 1}, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Widget", got.Name)
}

func TestMemoryStore_Get_Missing(t *testing.T) {
	s := NewMemoryStore()

	var got testDoc
	found, err := s.Get(context.Background(), CollectionProducts, Key{"id": 42}, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Put_Upsert(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, CollectionProducts, testDoc{ID: 1, Name: "Before"}))
	require.NoError(t, s.Put(ctx, CollectionProducts, testDoc{ID: 1, Name: "After"}))

	var got testDoc
	found, err := s.Get(ctx, CollectionProducts, Key{"id": 1}, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "After", got.Name)
	assert.Equal(t, 1, s.Len(CollectionProducts))
}

func TestMemoryStore_Scan_Filter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, CollectionOrders, testDoc{ID: 1, Owner: "alice"}))
	require.NoError(t, s.Put(ctx, CollectionOrders, testDoc{ID: 2, Owner: "bob"}))
	require.NoError(t, s.Put(ctx, CollectionOrders, testDoc{ID: 3, Owner: "alice"}))

	var got []testDoc
	err := s.Scan(ctx, CollectionOrders, &Filter{Field: "owner", Equals: "alice"}, &got)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, doc := range got {
		assert.Equal(t, "alice", doc.Owner)
	}
}

func TestMemoryStore_Scan_Empty(t *testing.T) {
	s := NewMemoryStore()

	var got []testDoc
	err := s.Scan(context.Background(), CollectionOrders, nil, &got)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore_Scan_Limit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < ScanLimit+10; i++ {
		require.NoError(t, s.Put(ctx, CollectionOrders, testDoc{ID: i}))
	}

	var got []testDoc
	err := s.Scan(ctx, CollectionOrders, nil, &got)
	require.NoError(t, err)
	assert.Len(t, got, ScanLimit)
}

func TestMemoryStore_Scan_LimitAppliesBeforeFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Fill the scan window with non-matching documents; the only match
	// sorts after all of them and so never enters the window.
	for i := 0; i < ScanLimit; i++ {
		require.NoError(t, s.Put(ctx, CollectionOrders, testDoc{ID: i, Owner: "alice"}))
	}
	require.NoError(t, s.Put(ctx, CollectionOrders, testDoc{ID: 9999999, Owner: "bob"}))

	var got []testDoc
	err := s.Scan(ctx, CollectionOrders, &Filter{Field: "owner", Equals: "bob"}, &got)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, CollectionProducts, testDoc{ID: 1}))
	require.NoError(t, s.Delete(ctx, CollectionProducts, Key{"id": 1}))

	var got testDoc
	found, err := s.Get(ctx, CollectionProducts, Key{"id": 1}, &got)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing document is not an error.
	assert.NoError(t, s.Delete(ctx, CollectionProducts, Key{"id": 1}))
}

func TestMemoryStore_Update(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, CollectionProducts, testDoc{ID: 1, Name: "Widget", Owner: "alice"}))

	var got testDoc
	found, err := s.Update(ctx, CollectionProducts, Key{"id": 1}, map[string]any{"name": "Gadget"}, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Gadget", got.Name)
	// Untouched fields survive the merge.
	assert.Equal(t, "alice", got.Owner)
}

func TestMemoryStore_Update_Missing(t *testing.T) {
	s := NewMemoryStore()

	found, err := s.Update(context.Background(), CollectionProducts, Key{"id": 99}, map[string]any{"name": "x"}, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_StringKeys(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type cartDoc struct {
		UserID string `json:"userId"`
		Count  int    `json:"count"`
	}
	require.NoError(t, s.Put(ctx, CollectionCarts, cartDoc{UserID: "user-1", Count: 3}))

	var got cartDoc
	found, err := s.Get(ctx, CollectionCarts, Key{"userId": "user-1"}, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.Count)
}

func TestCanonicalKey_NumericStability(t *testing.T) {
	// JSON round trips turn int keys into float64; both forms must
	// address the same document.
	assert.Equal(t, canonicalKey(Key{"id": 7}), canonicalKey(Key{"id": float64(7)}))
	assert.Equal(t, canonicalKey(Key{"id": 1000000}), canonicalKey(Key{"id": float64(1000000)}))
}

func TestKeyField(t *testing.T) {
	assert.Equal(t, "id", KeyField(CollectionProducts))
	assert.Equal(t, "userId", KeyField(CollectionCarts))
	assert.Equal(t, "id", KeyField(CollectionOrders))
	assert.Equal(t, "id", KeyField("unknown"))
}

func TestMemoryStore_ConcurrentPut(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				_ = s.Put(ctx, CollectionProducts, testDoc{ID: g*100 + i, Name: fmt.Sprintf("doc-%d-%d", g, i)})
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	assert.Equal(t, 200, s.Len(CollectionProducts))
}
