package order

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports a malformed or incomplete checkout request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError covers both a missing record and a record the requester
// is not allowed to see. Callers cannot distinguish the two cases.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientStockError names the first product whose requested
// quantity exceeds availability. The whole checkout is rejected.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// PaymentProviderError means the hosted session could not be created.
// The order is already persisted when this is returned.
type PaymentProviderError struct {
	Err error
}

func (e *PaymentProviderError) Error() string {
	return fmt.Sprintf("payment provider: %v", e.Err)
}

func (e *PaymentProviderError) Unwrap() error { return e.Err }

// PersistenceError means the order store rejected the write. Nothing
// was persisted and the request is safe to retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
