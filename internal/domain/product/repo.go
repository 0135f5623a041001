package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no product exists for the given id.
var ErrNotFound = errors.New("product not found")

// ErrStockConflict is returned by DecrementStock when the guarded update
// would drive stock negative.
var ErrStockConflict = errors.New("insufficient stock for decrement")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, category string, limit, offset int) ([]*Product, int, error)
	// DecrementStock atomically subtracts qty when stock covers it,
	// failing with ErrStockConflict otherwise.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}
