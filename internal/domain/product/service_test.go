package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -- Mock Repository --

type mockRepo struct {
	products map[uuid.UUID]*Product
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[uuid.UUID]*Product)}
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.products[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetBySKU(_ context.Context, sku string) (*Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, category string, limit, offset int) ([]*Product, int, error) {
	var result []*Product
	for _, p := range m.products {
		if category != "" && (p.Category == nil || *p.Category != category) {
			continue
		}
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrStockConflict
	}
	p.Stock -= qty
	return nil
}

// -- Tests --

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Price: decimal.NewFromInt(5), Stock: 100}
	err := svc.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Active {
		t.Error("expected new product to default to active")
	}
}

func TestCreateProduct_SKURequired(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{Name: "Paracetamol 500mg"}
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for missing sku")
	}
}

func TestCreateProduct_NameRequired(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001"}
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Price: decimal.NewFromInt(-1)}
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestCreateProduct_NegativeStock(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Stock: -5}
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for negative stock")
	}
}

func TestGetProduct(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg"}
	svc.Create(context.Background(), p)

	fetched, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.ID != p.ID {
		t.Error("unexpected ID mismatch")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), uuid.New())
	if err == nil {
		t.Error("expected error for not found")
	}
}

func TestGetProductBySKU(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg"}
	svc.Create(context.Background(), p)

	fetched, err := svc.GetBySKU(context.Background(), "MED-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.ID != p.ID {
		t.Error("unexpected ID mismatch")
	}
}

func TestUpdateProduct_NameRequired(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg"}
	svc.Create(context.Background(), p)

	p.Name = ""
	if err := svc.Update(context.Background(), p); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg"}
	svc.Create(context.Background(), p)

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); err == nil {
		t.Error("expected error after deletion")
	}
}

func TestListProducts_ByCategory(t *testing.T) {
	svc, _ := newTestService()
	analgesics := "analgesics"
	svc.Create(context.Background(), &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Category: &analgesics})
	svc.Create(context.Background(), &Product{SKU: "SUP-001", Name: "Bandages"})

	items, total, err := svc.List(context.Background(), "analgesics", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1, got %d", total)
	}
	if len(items) != 1 {
		t.Errorf("expected 1, got %d", len(items))
	}
}

func TestRestock(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Stock: 10}
	svc.Create(context.Background(), p)

	updated, err := svc.Restock(context.Background(), p.ID, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Stock != 50 {
		t.Errorf("expected stock 50, got %d", updated.Stock)
	}
}

func TestRestock_NonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Stock: 10}
	svc.Create(context.Background(), p)

	if _, err := svc.Restock(context.Background(), p.ID, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestSetPrice(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Price: decimal.NewFromInt(5)}
	svc.Create(context.Background(), p)

	updated, err := svc.SetPrice(context.Background(), p.ID, decimal.RequireFromString("7.25"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Price.Equal(decimal.RequireFromString("7.25")) {
		t.Errorf("expected price 7.25, got %s", updated.Price)
	}
}

func TestSetPrice_Negative(t *testing.T) {
	svc, _ := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg"}
	svc.Create(context.Background(), p)

	if _, err := svc.SetPrice(context.Background(), p.ID, decimal.NewFromInt(-1)); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestInStock(t *testing.T) {
	p := &Product{Stock: 3}
	if !p.InStock(3) {
		t.Error("expected quantity equal to stock to be in stock")
	}
	if p.InStock(4) {
		t.Error("expected quantity above stock to be out of stock")
	}
	if p.InStock(0) {
		t.Error("expected zero quantity to be rejected")
	}
}

func TestDecrementStock_Guarded(t *testing.T) {
	_, repo := newTestService()
	p := &Product{SKU: "MED-001", Name: "Paracetamol 500mg", Stock: 2}
	repo.Create(context.Background(), p)

	if err := repo.DecrementStock(context.Background(), p.ID, 3); err != ErrStockConflict {
		t.Errorf("expected ErrStockConflict, got %v", err)
	}
	if err := repo.DecrementStock(context.Background(), p.ID, 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if p.Stock != 0 {
		t.Errorf("expected stock 0, got %d", p.Stock)
	}
}
