package store

import (
	"context"
	"errors"
	"testing"

	"checkout-svc/models"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	session := &models.CheckoutSession{
		ID:     "sess-1",
		TxRef:  "TX-1",
		Status: models.CheckoutStatusIdle,
	}
	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := s.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.TxRef != "TX-1" {
		t.Errorf("Expected TxRef TX-1, got %s", got.TxRef)
	}

	byRef, err := s.GetByTxRef(ctx, "TX-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if byRef.ID != "sess-1" {
		t.Errorf("Expected session sess-1, got %s", byRef.ID)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetByTxRef(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_LockIsExclusive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ok, err := s.AcquireLock(ctx, "sess-1")
	if err != nil || !ok {
		t.Fatalf("Expected to acquire lock, got ok=%v err=%v", ok, err)
	}

	ok, err = s.AcquireLock(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected second acquire to fail while lock is held")
	}

	if err := s.ReleaseLock(ctx, "sess-1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ok, err = s.AcquireLock(ctx, "sess-1")
	if err != nil || !ok {
		t.Errorf("Expected to reacquire after release, got ok=%v err=%v", ok, err)
	}
}
