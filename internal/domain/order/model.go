package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses follow the fulfillment lifecycle. Creation always
// starts at StatusPending; later transitions come from payment webhooks
// and fulfillment, never from the checkout flow itself.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

var validPaymentStatuses = map[string]bool{
	PaymentPending:  true,
	PaymentPaid:     true,
	PaymentFailed:   true,
	PaymentRefunded: true,
}

// Order is the aggregate root written by checkout. Items are captured
// with the unit price in effect at purchase time; later catalog price
// changes never alter a placed order.
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	OrderNumber     string          `db:"order_number" json:"order_number"`
	CustomerID      *uuid.UUID      `db:"customer_id" json:"customer_id,omitempty"`
	CustomerEmail   string          `db:"customer_email" json:"customer_email"`
	Items           []OrderItem     `db:"-" json:"items"`
	ShippingAddress ShippingAddress `db:"shipping_address" json:"shipping_address"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	PaymentStatus   string          `db:"payment_status" json:"payment_status"`
	StripeSessionID *string         `db:"stripe_session_id" json:"stripe_session_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsGuest reports whether the order was placed without an
// authenticated session.
func (o *Order) IsGuest() bool {
	return o.CustomerID == nil
}

// OwnedBy reports whether the given customer placed this order. Guest
// orders are not owned by any authenticated customer.
func (o *Order) OwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID != nil && *o.CustomerID == customerID
}

type OrderItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID   uuid.UUID       `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// Subtotal is unit price times quantity for this line.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is stored as a jsonb column on the order row.
type ShippingAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

// NewOrderNumber produces ORD-YYYYMMDD-XXXXXX where the suffix is
// three random bytes hex-encoded. Uniqueness is enforced by a unique
// index on the column; on the rare collision the insert fails and the
// caller generates a fresh number.
func NewOrderNumber(now time.Time) string {
	buf := make([]byte, 3)
	rand.Read(buf)
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
