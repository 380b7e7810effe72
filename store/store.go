package store

import (
	"context"
	"errors"

	"checkout-svc/models"
)

var ErrNotFound = errors.New("checkout session not found")

// Store holds checkout sessions for the lifetime of a checkout. Sessions
// expire; this is not a ledger, settled truth lives in the backend.
type Store interface {
	Save(ctx context.Context, session *models.CheckoutSession) error
	Get(ctx context.Context, id string) (*models.CheckoutSession, error)
	GetByTxRef(ctx context.Context, txRef string) (*models.CheckoutSession, error)

	// AcquireLock takes the session's submission lock. It returns false when
	// another submission already holds it.
	AcquireLock(ctx context.Context, id string) (bool, error)
	ReleaseLock(ctx context.Context, id string) error
}
