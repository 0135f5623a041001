package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	products Repository
}

func NewService(products Repository) *Service {
	return &Service{products: products}
}

func (s *Service) Create(ctx context.Context, p *Product) error {
	if p.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	p.Active = true
	return s.products.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.products.GetBySKU(ctx, sku)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return s.products.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*Product, int, error) {
	return s.products.List(ctx, category, limit, offset)
}

// Restock adds quantity to a product's stock.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, qty int) (*Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive")
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Stock += qty
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPrice changes the catalog price. Orders placed earlier keep their
// captured unit prices.
func (s *Service) SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*Product, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Price = price
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
