package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store. It is the zero-config default backend
// and doubles as the cache fake in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

// Get returns a copy of the stored document, or nil when absent.
func (s *MemoryStore) Get(ctx context.Context, collection, key string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return nil, nil
	}
	return copyDocument(doc)
}

// Merge upserts the given fields into the stored document, preserving any
// fields not present in the partial document.
func (s *MemoryStore) Merge(ctx context.Context, collection, key string, doc Document) error {
	incoming, err := copyDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]Document)
		s.collections[collection] = col
	}

	existing, ok := col[key]
	if !ok {
		col[key] = incoming
		return nil
	}
	for k, v := range incoming {
		existing[k] = v
	}
	return nil
}

// List returns copies of every document in the collection.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for _, doc := range col {
		copied, err := copyDocument(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, copied)
	}
	return docs, nil
}

// copyDocument deep-copies via a JSON round trip so callers never alias
// stored state. It also normalizes values to what the persistent backends
// would return (numbers as float64, byte slices rejected by json tags).
func copyDocument(doc Document) (Document, error) {
	if doc == nil {
		return nil, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("copy document: %w", err)
	}
	var copied Document
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, fmt.Errorf("copy document: %w", err)
	}
	return copied, nil
}
