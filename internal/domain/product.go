package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product with a finite stock count.
// Stock is only ever mutated through the inventory service; it must
// never be observable as negative.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Category    string          `json:"category" db:"category"`
	Subtype     string          `json:"subtype,omitempty" db:"subtype"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Product availability labels used by the product report.
const (
	ProductStatusAvailable = "AVAILABLE"
	ProductStatusDepleted  = "DEPLETED"
	ProductStatusInactive  = "INACTIVE"
)

// AvailabilityStatus derives the report label for the product. The
// inactive flag overrides the stock-based labels.
func (p *Product) AvailabilityStatus() string {
	switch {
	case !p.Active:
		return ProductStatusInactive
	case p.Stock == 0:
		return ProductStatusDepleted
	default:
		return ProductStatusAvailable
	}
}
