package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in memory.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Get returns the stored record for the provided key, or nil when absent.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	copy := record
	return &copy, nil
}

// Save persists the record or returns the existing record if it matches.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.Key]; ok {
		copy := existing
		if existing.RequestHash != record.RequestHash {
			return &copy, ports.ErrIdempotencyConflict
		}
		return &copy, nil
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Response = append([]byte(nil), record.Response...)
	s.records[record.Key] = record
	saved := record
	return &saved, nil
}

// staged returns a copy that a unit of work can write to without publishing.
func (s *IdempotencyStore) staged() *IdempotencyStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make(map[string]ports.IdempotencyRecord, len(s.records))
	for key, record := range s.records {
		records[key] = record
	}
	return &IdempotencyStore{records: records, now: s.now}
}
