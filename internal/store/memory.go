package store

import (
	"context"
	"sync"
	"time"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// MemoryStore is a concurrency-safe in-memory Store. It backs tests and
// dry-run deployments where no durable database is wanted.
type MemoryStore struct {
	mu sync.RWMutex

	decisions []irrigation.Decision
	relay     *irrigation.Command

	// AppendErr and SetRelayErr, when set, are returned by the
	// corresponding writes. Tests use them to simulate storage failure.
	AppendErr   error
	SetRelayErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendDecision(_ context.Context, d irrigation.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.decisions = append(s.decisions, d)
	return nil
}

func (s *MemoryStore) LatestDecision(_ context.Context) (irrigation.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.decisions) == 0 {
		return irrigation.Decision{}, ErrNotFound
	}
	return s.decisions[len(s.decisions)-1], nil
}

func (s *MemoryStore) DecisionsInRange(_ context.Context, from, to time.Time) ([]irrigation.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []irrigation.Decision
	for _, d := range s.decisions {
		if !d.ProducedAt.Before(from) && !d.ProducedAt.After(to) {
			result = append(result, d)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

func (s *MemoryStore) SetRelayCommand(_ context.Context, c irrigation.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetRelayErr != nil {
		return s.SetRelayErr
	}
	s.relay = &c
	return nil
}

func (s *MemoryStore) RelayCommand(_ context.Context) (irrigation.Command, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.relay == nil {
		return irrigation.Command{}, ErrNotFound
	}
	return *s.relay, nil
}

// DecisionCount reports how many decisions have been appended.
func (s *MemoryStore) DecisionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decisions)
}

func (s *MemoryStore) Close() error {
	return nil
}
