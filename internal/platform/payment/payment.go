// Package payment abstracts the hosted checkout provider. The order
// workflow only sees Provider; the Stripe implementation lives in
// stripe.go so tests can substitute a fake.
package payment

import (
	"context"

	"github.com/google/uuid"
)

// LineItem is one priced line passed to the checkout session. UnitAmount
// is in the smallest currency unit (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest carries everything the provider needs to host a
// checkout for one order. The redirect URLs embed the order id so the
// client can resume after payment.
type SessionRequest struct {
	OrderID       uuid.UUID
	OrderNumber   string
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
}

// Session identifies a created hosted checkout session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider creates hosted checkout sessions. A single failed attempt
// surfaces immediately; no retry or timeout policy is applied here.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
}
