package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is the repository-level miss; the service wraps it into
// a NotFoundError before it reaches a handler.
var ErrNotFound = errors.New("order not found")

// ErrDuplicateNumber signals an order_number collision on insert. The
// random suffix makes these rare; the service retries with a fresh
// number.
var ErrDuplicateNumber = errors.New("duplicate order number")

type Repository interface {
	// Create persists the order row and its items as one unit.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)
	// ListByCustomer returns the customer's orders newest-first plus
	// the total count across all pages.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
	SetStripeSession(ctx context.Context, id uuid.UUID, sessionID string) error
}
