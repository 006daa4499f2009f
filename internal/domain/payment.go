package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethodUnspecified is the sentinel the order report uses when
// an order has no payment record yet.
const PaymentMethodUnspecified = "UNSPECIFIED"

// Payment is the at-most-one payment record owned by an order. It is
// created after the order exists and lifecycle-managed independently.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	Method    string          `json:"method" db:"method"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    string          `json:"status" db:"status"`
	Reference string          `json:"reference" db:"reference"`
	PaidAt    *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
