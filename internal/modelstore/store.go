// Package modelstore holds the promoted classifier. Production keeps it
// in an S3-compatible bucket; tests and local runs use the in-memory or
// filesystem stores.
package modelstore

import (
	"context"
	"sync"
)

// Store is the single promoted-model slot the evaluation and promotion
// stages work against.
type Store interface {
	// Exists reports whether a promoted model is present.
	Exists(ctx context.Context) (bool, error)
	// Put replaces the promoted model.
	Put(ctx context.Context, raw []byte) error
	// Get returns the promoted model bytes.
	Get(ctx context.Context) ([]byte, error)
}

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu  sync.RWMutex
	raw []byte
}

func (s *MemoryStore) Exists(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw != nil, nil
}

func (s *MemoryStore) Put(_ context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = append([]byte(nil), raw...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.raw == nil {
		return nil, ErrNoModel
	}
	return append([]byte(nil), s.raw...), nil
}
