package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo, *mockOrderRepo, *mockProductRepo, *mockProvider) {
	svc, orders, products, provider := newTestService()
	h := NewHandler(svc, "whsec_test")
	e := echo.New()
	return h, e, orders, products, provider
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uuid.UUID, email, role string) echo.Context {
	ctx := auth.WithIdentity(req.Context(), userID, email, role)
	req = req.WithContext(ctx)
	return e.NewContext(req, rec)
}

func TestHandler_CreateOrder(t *testing.T) {
	h, e, _, products, _ := newTestHandler()
	p := products.add("P1", "500", 10)

	body := `{"items":[{"product_id":"` + p.ID.String() + `","quantity":2}],` +
		`"shipping_address":{"name":"Jane Doe","street":"1 Main St"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "jane@example.com", "patient")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool           `json:"success"`
		Data    createResponse `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success {
		t.Error("expected success envelope")
	}
	if resp.Data.Total != "1000" {
		t.Errorf("expected total 1000, got %s", resp.Data.Total)
	}
	if resp.Data.Items != 1 {
		t.Errorf("expected 1 line, got %d", resp.Data.Items)
	}
	if resp.Data.PaymentURL == "" || resp.Data.StripeSessionID == "" {
		t.Error("expected payment session fields")
	}
	if resp.Data.Status != StatusPending {
		t.Errorf("expected pending, got %s", resp.Data.Status)
	}
}

func TestHandler_CreateOrder_EmptyCart(t *testing.T) {
	h, e, _, _, _ := newTestHandler()

	body := `{"items":[],"shipping_address":{"name":"Jane Doe"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "jane@example.com", "patient")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success {
		t.Error("expected failure envelope")
	}
	if resp.Message != "Cart is empty" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
}

func TestHandler_CreateOrder_InsufficientStock(t *testing.T) {
	h, e, orders, products, _ := newTestHandler()
	p := products.add("P1", "500", 10)

	body := `{"items":[{"product_id":"` + p.ID.String() + `","quantity":20}],` +
		`"shipping_address":{"name":"Jane Doe"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "jane@example.com", "patient")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(orders.orders) != 0 {
		t.Error("expected no order persisted")
	}
}

func TestHandler_CreateOrder_PaymentFailureStillReturnsOrder(t *testing.T) {
	h, e, orders, products, provider := newTestHandler()
	provider.fail = true
	p := products.add("P1", "500", 10)

	body := `{"items":[{"product_id":"` + p.ID.String() + `","quantity":1}],` +
		`"shipping_address":{"name":"Jane Doe"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "jane@example.com", "patient")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 partial success, got %d", rec.Code)
	}

	var resp struct {
		Data createResponse `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Data.StripeSessionID != "" || resp.Data.PaymentURL != "" {
		t.Error("expected no session fields on provider failure")
	}
	if len(orders.orders) != 1 {
		t.Error("expected order persisted despite provider failure")
	}
}

func TestHandler_GetOrder_NotFound(t *testing.T) {
	h, e, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "jane@example.com", "patient")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetOrder_ForeignOrderHidden(t *testing.T) {
	h, e, _, products, _ := newTestHandler()
	p := products.add("P1", "500", 10)
	owner := uuid.New()

	result, err := h.svc.Create(context.Background(), &CreateRequest{
		Items:           []CreateItem{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
	}, owner, "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "other@example.com", "patient")
	c.SetParamNames("id")
	c.SetParamValues(result.Order.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign order, got %d", rec.Code)
	}
}

func seedOrder(t *testing.T, h *Handler, products *mockProductRepo, owner uuid.UUID) *Order {
	t.Helper()
	p := products.add("P1", "500", 10)
	result, err := h.svc.Create(context.Background(), &CreateRequest{
		Items:           []CreateItem{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
	}, owner, "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result.Order
}

func TestHandler_GetOrder_AnonymousRejected(t *testing.T) {
	h, e, _, products, _ := newTestHandler()
	o := seedOrder(t, h, products, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(o.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous read, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), o.OrderNumber) {
		t.Error("response leaked order data to an anonymous caller")
	}
}

func TestHandler_Cancel_AnonymousRejected(t *testing.T) {
	h, e, orders, products, _ := newTestHandler()
	o := seedOrder(t, h, products, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(o.ID.String())

	if err := h.Cancel(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous cancel, got %d", rec.Code)
	}
	if orders.orders[o.ID].Status != StatusPending {
		t.Errorf("expected order untouched, got status %s", orders.orders[o.ID].Status)
	}
}

func TestHandler_RetryPayment_AnonymousRejected(t *testing.T) {
	h, e, _, products, provider := newTestHandler()
	o := seedOrder(t, h, products, uuid.New())
	sessionsBefore := provider.calls

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(o.ID.String())

	if err := h.RetryPayment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous retry, got %d", rec.Code)
	}
	if provider.calls != sessionsBefore {
		t.Error("expected no new payment session for an anonymous caller")
	}
}

func TestHandler_GetOrder_AdminRead(t *testing.T) {
	h, e, _, products, _ := newTestHandler()
	p := products.add("P1", "500", 10)

	result, err := h.svc.Create(context.Background(), &CreateRequest{
		Items:           []CreateItem{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
	}, uuid.New(), "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "admin@example.com", "admin")
	c.SetParamNames("id")
	c.SetParamValues(result.Order.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin read, got %d", rec.Code)
	}
}

func TestHandler_ListMine(t *testing.T) {
	h, e, _, products, _ := newTestHandler()
	p := products.add("P1", "500", 100)
	customerID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := h.svc.Create(context.Background(), &CreateRequest{
			Items:           []CreateItem{{ProductID: p.ID, Quantity: 1}},
			ShippingAddress: validAddress(),
		}, customerID, "jane@example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/?page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, customerID, "jane@example.com", "patient")

	if err := h.ListMine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Orders     []Order `json:"orders"`
			Pagination struct {
				Total      int `json:"total"`
				TotalPages int `json:"total_pages"`
			} `json:"pagination"`
		} `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Data.Orders) != 3 {
		t.Errorf("expected 3 orders, got %d", len(resp.Data.Orders))
	}
	if resp.Data.Pagination.Total != 3 || resp.Data.Pagination.TotalPages != 1 {
		t.Errorf("unexpected pagination meta: %+v", resp.Data.Pagination)
	}
}

func TestHandler_ListMine_EmptyPage(t *testing.T) {
	h, e, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, uuid.New(), "jane@example.com", "patient")

	if err := h.ListMine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for out-of-range page, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Orders []Order `json:"orders"`
		} `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Data.Orders) != 0 {
		t.Errorf("expected empty list, got %d", len(resp.Data.Orders))
	}
}

func TestHandler_RetryPayment(t *testing.T) {
	h, e, _, products, provider := newTestHandler()
	provider.fail = true
	p := products.add("P1", "500", 10)
	customerID := uuid.New()

	result, _ := h.svc.Create(context.Background(), &CreateRequest{
		Items:           []CreateItem{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: validAddress(),
	}, customerID, "jane@example.com")

	provider.fail = false
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, customerID, "jane@example.com", "patient")
	c.SetParamNames("id")
	c.SetParamValues(result.Order.ID.String())

	if err := h.RetryPayment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data createResponse `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Data.PaymentURL == "" {
		t.Error("expected a fresh payment url")
	}
}

func TestHandler_Webhook_BadSignature(t *testing.T) {
	h, e, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bogus")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Webhook(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad signature, got %d", rec.Code)
	}
}
