package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/clinicore/clinicore/internal/domain/product"
	"github.com/clinicore/clinicore/internal/platform/metrics"
	"github.com/clinicore/clinicore/internal/platform/payment"
)

// CreateRequest is the checkout submission. Prices are never read from
// it; the catalog is authoritative.
type CreateRequest struct {
	Items           []CreateItem    `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

type CreateItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateResult pairs the persisted order with its payment session.
// Session is nil when the provider call failed; the order is still
// persisted and payment can be retried.
type CreateResult struct {
	Order   *Order
	Session *payment.Session
}

// nowFunc is swapped in tests to pin the order-number date.
var nowFunc = time.Now

type Service struct {
	orders   Repository
	products product.Repository
	provider payment.Provider
	metrics  *metrics.Metrics

	currency   string
	successURL string
	cancelURL  string
}

func NewService(orders Repository, products product.Repository, provider payment.Provider,
	m *metrics.Metrics, currency, successURL, cancelURL string) *Service {
	return &Service{
		orders:     orders,
		products:   products,
		provider:   provider,
		metrics:    m,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// Create runs the checkout workflow. callerID is uuid.Nil for guest
// checkout, in which case the shipping address must carry an email.
//
// The stock check is a precondition, not a reservation. Two concurrent
// checkouts against the same low-stock product can both pass it; the
// race window between check and insert is an accepted limitation.
func (s *Service) Create(ctx context.Context, req *CreateRequest, callerID uuid.UUID, callerEmail string) (*CreateResult, error) {
	if len(req.Items) == 0 {
		s.reject("empty_cart")
		return nil, &ValidationError{Msg: "Cart is empty"}
	}
	if req.ShippingAddress.Name == "" {
		s.reject("missing_address")
		return nil, &ValidationError{Msg: "Shipping address is required"}
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			s.reject("invalid_quantity")
			return nil, &ValidationError{Msg: "Quantity must be at least 1"}
		}
	}

	email := callerEmail
	if email == "" {
		email = req.ShippingAddress.Email
	}
	if email == "" {
		s.reject("missing_email")
		return nil, &ValidationError{Msg: "Email is required for guest checkout"}
	}

	o := &Order{
		OrderNumber:     NewOrderNumber(nowFunc()),
		CustomerEmail:   email,
		ShippingAddress: req.ShippingAddress,
		TotalAmount:     decimal.Zero,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
	}
	if callerID != uuid.Nil {
		id := callerID
		o.CustomerID = &id
	}

	// Look up every product and check stock before persisting anything.
	// A single failing line rejects the whole cart.
	for _, it := range req.Items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				s.reject("product_not_found")
				return nil, &NotFoundError{Resource: "product", ID: it.ProductID.String()}
			}
			return nil, &PersistenceError{Err: err}
		}
		if !p.InStock(it.Quantity) {
			s.reject("insufficient_stock")
			return nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   it.Quantity,
				Available:   p.Stock,
			}
		}
		o.Items = append(o.Items, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		})
		o.TotalAmount = o.TotalAmount.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	// The random suffix keeps number collisions rare; retry a couple
	// of times before treating it as a store failure.
	for attempt := 0; ; attempt++ {
		err := s.orders.Create(ctx, o)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateNumber) && attempt < 2 {
			o.OrderNumber = NewOrderNumber(nowFunc())
			continue
		}
		return nil, &PersistenceError{Err: err}
	}
	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}

	session, err := s.createSession(ctx, o)
	if err != nil {
		// Partial success: the order stays pending with no session and
		// the client retries payment by order id.
		log.Warn().Err(err).
			Str("order_id", o.ID.String()).
			Str("order_number", o.OrderNumber).
			Msg("checkout session creation failed, order kept pending")
		if s.metrics != nil {
			s.metrics.PaymentFailures.Inc()
		}
		return &CreateResult{Order: o}, &PaymentProviderError{Err: err}
	}
	return &CreateResult{Order: o, Session: session}, nil
}

func (s *Service) createSession(ctx context.Context, o *Order) (*payment.Session, error) {
	lines := make([]payment.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, payment.LineItem{
			Name:       it.ProductName,
			UnitAmount: it.UnitPrice.Mul(decimal.NewFromInt(100)).IntPart(),
			Quantity:   int64(it.Quantity),
		})
	}
	session, err := s.provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerEmail: o.CustomerEmail,
		Currency:      s.currency,
		LineItems:     lines,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.orders.SetStripeSession(ctx, o.ID, session.ID); err != nil {
		return nil, err
	}
	o.StripeSessionID = &session.ID
	if s.metrics != nil {
		s.metrics.PaymentSessions.Inc()
	}
	return session, nil
}

// Get returns the order when it exists and the requester may see it.
// Admin reads pass uuid.Nil as requesterID to skip the ownership check.
// A foreign order reads as not-found, never as forbidden.
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: id.String()}
		}
		return nil, &PersistenceError{Err: err}
	}
	if requesterID != uuid.Nil && !o.OwnedBy(requesterID) {
		return nil, &NotFoundError{Resource: "order", ID: id.String()}
	}
	return o, nil
}

// ListByCustomer pages through a customer's orders newest-first.
// Out-of-range pages come back as an empty list with the real total.
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	orders, total, err := s.orders.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, 0, &PersistenceError{Err: err}
	}
	return orders, total, nil
}

// RetryPayment creates a fresh checkout session for an order that was
// persisted but never got one, or whose previous payment failed.
func (s *Service) RetryPayment(ctx context.Context, id, requesterID uuid.UUID) (*Order, *payment.Session, error) {
	o, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if o.PaymentStatus == PaymentPaid {
		return nil, nil, &ValidationError{Msg: "Order is already paid"}
	}
	if o.Status == StatusCancelled {
		return nil, nil, &ValidationError{Msg: "Order is cancelled"}
	}
	session, err := s.createSession(ctx, o)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PaymentFailures.Inc()
		}
		return o, nil, &PaymentProviderError{Err: err}
	}
	return o, session, nil
}

// MarkPaymentStatus records the webhook outcome for the order attached
// to a checkout session. A paid session also moves a pending order to
// confirmed.
func (s *Service) MarkPaymentStatus(ctx context.Context, sessionID, paymentStatus string) (*Order, error) {
	if !validPaymentStatuses[paymentStatus] {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid payment status %q", paymentStatus)}
	}
	o, err := s.orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: sessionID}
		}
		return nil, &PersistenceError{Err: err}
	}
	if err := s.orders.UpdatePaymentStatus(ctx, o.ID, paymentStatus); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	o.PaymentStatus = paymentStatus
	if paymentStatus == PaymentPaid && o.Status == StatusPending {
		if err := s.orders.UpdateStatus(ctx, o.ID, StatusConfirmed); err != nil {
			return nil, &PersistenceError{Err: err}
		}
		o.Status = StatusConfirmed
	}
	return o, nil
}

// UpdateStatus moves an order through the fulfillment lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	if !validStatuses[status] {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid status %q", status)}
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: id.String()}
		}
		return nil, &PersistenceError{Err: err}
	}
	if o.Status == StatusCancelled || o.Status == StatusDelivered {
		return nil, &ValidationError{Msg: fmt.Sprintf("order is %s and cannot change status", o.Status)}
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	o.Status = status
	return o, nil
}

// Cancel is a status transition, never a deletion.
func (s *Service) Cancel(ctx context.Context, id, requesterID uuid.UUID) (*Order, error) {
	o, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return nil, &ValidationError{Msg: fmt.Sprintf("order in status %s cannot be cancelled", o.Status)}
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	o.Status = StatusCancelled
	return o, nil
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.OrdersRejected.WithLabelValues(reason).Inc()
	}
}
