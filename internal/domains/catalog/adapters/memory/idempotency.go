package memory

import (
	"context"
	"sync"
	"time"

	"github.com/earthenstore/storefront-api/internal/domains/catalog/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps create-product idempotency records in memory.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	clone := record
	return &clone, nil
}

func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash || existing.ProductID != record.ProductID {
			return nil, ports.ErrIdempotencyConflict
		}
		clone := existing
		return &clone, nil
	}
	now := s.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records[record.Key] = record
	clone := record
	return &clone, nil
}
