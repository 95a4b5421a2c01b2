package currency

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// RateStore persists exchange rates.
type RateStore interface {
	GetRate(ctx context.Context, code Code) (Rate, error)
	ListRates(ctx context.Context) ([]Rate, error)
	SetRate(ctx context.Context, rate Rate) error
	Ping(ctx context.Context) error
}

// MemoryStore is a RateStore kept in process memory. It is used when no
// database is configured and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	rates map[Code]Rate
}

// NewMemoryStore returns a store holding the given rates.
func NewMemoryStore(seed ...Rate) *MemoryStore {
	s := &MemoryStore{rates: make(map[Code]Rate, len(seed))}
	for _, r := range seed {
		s.rates[r.Code] = r
	}
	return s
}

func (s *MemoryStore) GetRate(_ context.Context, code Code) (Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rates[code]
	if !ok {
		return Rate{}, fmt.Errorf("%w: %s", ErrRateNotFound, code)
	}
	return r, nil
}

func (s *MemoryStore) ListRates(_ context.Context) ([]Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rate, 0, len(s.rates))
	for _, r := range s.rates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *MemoryStore) SetRate(_ context.Context, rate Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rates[rate.Code] = rate
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
