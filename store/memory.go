package store

import (
	"context"
	"sync"

	"checkout-svc/models"
)

// MemoryStore is the in-process Store used by tests and single-node dev runs.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.CheckoutSession
	txRefs   map[string]string
	locks    map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.CheckoutSession),
		txRefs:   make(map[string]string),
		locks:    make(map[string]bool),
	}
}

func (s *MemoryStore) Save(ctx context.Context, session *models.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	s.txRefs[session.TxRef] = session.ID
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := session
	return &copied, nil
}

func (s *MemoryStore) GetByTxRef(ctx context.Context, txRef string) (*models.CheckoutSession, error) {
	s.mu.Lock()
	id, ok := s.txRefs[txRef]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *MemoryStore) AcquireLock(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[id] {
		return false, nil
	}
	s.locks[id] = true
	return true, nil
}

func (s *MemoryStore) ReleaseLock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}
