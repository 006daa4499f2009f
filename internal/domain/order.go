package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatusInfo pairs a status with its human-readable description.
type OrderStatusInfo struct {
	Status      OrderStatus `json:"status"`
	Description string      `json:"description"`
}

// orderStatusCatalog is the ordered catalog of order states exposed to
// clients. The order matters: it is the canonical lifecycle sequence,
// with cancellation last.
var orderStatusCatalog = []OrderStatusInfo{
	{StatusPending, "Order received and awaiting confirmation"},
	{StatusConfirmed, "Order confirmed and being prepared"},
	{StatusShipped, "Order handed to the carrier"},
	{StatusDelivered, "Order delivered to the customer"},
	{StatusCancelled, "Order cancelled"},
}

// OrderStatuses returns the enumerable, ordered status catalog.
func OrderStatuses() []OrderStatusInfo {
	out := make([]OrderStatusInfo, len(orderStatusCatalog))
	copy(out, orderStatusCatalog)
	return out
}

// Valid reports whether s is one of the enumerated statuses.
func (s OrderStatus) Valid() bool {
	for _, info := range orderStatusCatalog {
		if info.Status == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo implements the documented, deliberately permissive
// transition function: any enumerated status may be set from any
// non-terminal status. Only the terminal states reject changes.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return !s.Terminal() && next.Valid()
}

// Order is a customer's purchase. The phone and address are snapshots
// captured at creation time so later profile edits never rewrite
// historical orders. The order exclusively owns its line items and its
// optional payment and shipment records.
type Order struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	CustomerID uuid.UUID   `json:"customer_id" db:"customer_id"`
	OrderDate  time.Time   `json:"order_date" db:"order_date"`
	Status     OrderStatus `json:"status" db:"status"`
	Phone      string      `json:"phone" db:"phone"`
	Address    string      `json:"address" db:"address"`
	Items      []LineItem  `json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// Total sums the subtotals of the order's line items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal())
	}
	return total
}

// ItemCount sums the quantities across the order's line items.
func (o *Order) ItemCount() int {
	n := 0
	for i := range o.Items {
		n += o.Items[i].Quantity
	}
	return n
}

// LineItem is one product/quantity entry within an order. UnitPrice is
// the price captured when stock was reserved, not a live read of the
// catalog; catalog price changes never alter historical orders.
type LineItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Subtotal is quantity times the captured unit price.
func (li *LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
