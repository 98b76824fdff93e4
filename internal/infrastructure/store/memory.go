package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps documents as JSON blobs in process memory. It backs
// local development and the test suites.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, collection string, key Key, out any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][canonicalKey(key)]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return true, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection string, item any) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	key, err := keyOf(collection, doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][key] = doc
	return nil
}

func (s *MemoryStore) Scan(ctx context.Context, collection string, filter *Filter, out any) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.collections[collection]))
	for k := range s.collections[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// The limit caps how many documents are scanned, not how many match;
	// the filter only narrows what the scan already read.
	docs := make([]json.RawMessage, 0, len(keys))
	for i, k := range keys {
		if i >= ScanLimit {
			break
		}
		doc := s.collections[collection][k]
		if filter != nil && !matchesFilter(doc, filter) {
			continue
		}
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	combined, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to combine scan result: %w", err)
	}
	if err := json.Unmarshal(combined, out); err != nil {
		return fmt.Errorf("failed to unmarshal scan result: %w", err)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], canonicalKey(key))
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, key Key, set map[string]any, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := canonicalKey(key)
	doc, ok := s.collections[collection][k]
	if !ok {
		return false, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	for field, value := range set {
		fields[field] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return false, fmt.Errorf("failed to marshal document: %w", err)
	}
	s.collections[collection][k] = merged

	if out != nil {
		if err := json.Unmarshal(merged, out); err != nil {
			return false, fmt.Errorf("failed to unmarshal updated document: %w", err)
		}
	}
	return true, nil
}

// Len reports the number of documents in a collection.
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func matchesFilter(doc []byte, filter *Filter) bool {
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false
	}
	value, ok := fields[filter.Field]
	if !ok {
		return false
	}
	return formatKeyValue(value) == formatKeyValue(filter.Equals)
}
