package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shipment is the at-most-one shipping record owned by an order, with
// its own destination address. Reports prefer this address over the
// order's creation-time snapshot when both exist.
type Shipment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderID        uuid.UUID       `json:"order_id" db:"order_id"`
	Method         string          `json:"method" db:"method"`
	Status         string          `json:"status" db:"status"`
	TrackingNumber string          `json:"tracking_number" db:"tracking_number"`
	ShippedAt      *time.Time      `json:"shipped_at,omitempty" db:"shipped_at"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	Address        string          `json:"address" db:"address"`
	Region         string          `json:"region" db:"region"`
	Province       string          `json:"province" db:"province"`
	District       string          `json:"district" db:"district"`
	Cost           decimal.Decimal `json:"cost" db:"cost"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
