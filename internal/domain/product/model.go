package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product maps to the product table. Price and stock here are the
// authoritative values for checkout; client-submitted prices are never
// trusted.
type Product struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	SKU                  string          `db:"sku" json:"sku"`
	Name                 string          `db:"name" json:"name"`
	Description          *string         `db:"description" json:"description,omitempty"`
	Category             *string         `db:"category" json:"category,omitempty"`
	Price                decimal.Decimal `db:"price" json:"price"`
	Stock                int             `db:"stock" json:"stock"`
	RequiresPrescription bool            `db:"requires_prescription" json:"requires_prescription"`
	Active               bool            `db:"active" json:"active"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// InStock reports whether the product can satisfy the requested quantity.
func (p *Product) InStock(qty int) bool {
	return qty > 0 && qty <= p.Stock
}
