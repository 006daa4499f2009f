package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cafe-orders/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrShipmentNotFound      = errors.New("shipment not found")
	ErrShipmentAlreadyExists = errors.New("order already has a shipment")
)

// ShipmentRepository defines the interface for shipment data access.
// Same ownership shape as payments: at most one per order, enforced by
// the order_id UNIQUE constraint.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *domain.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error)
	List(ctx context.Context) ([]*domain.Shipment, error)
	Update(ctx context.Context, shipment *domain.Shipment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type shipmentRepository struct {
	db *sql.DB
}

// NewShipmentRepository creates a new instance of ShipmentRepository
func NewShipmentRepository(db *sql.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

const shipmentColumns = `id, order_id, method, status, tracking_number, shipped_at, delivered_at,
	address, region, province, district, cost, created_at, updated_at`

func scanShipment(row interface{ Scan(dest ...any) error }) (*domain.Shipment, error) {
	shipment := &domain.Shipment{}
	err := row.Scan(
		&shipment.ID,
		&shipment.OrderID,
		&shipment.Method,
		&shipment.Status,
		&shipment.TrackingNumber,
		&shipment.ShippedAt,
		&shipment.DeliveredAt,
		&shipment.Address,
		&shipment.Region,
		&shipment.Province,
		&shipment.District,
		&shipment.Cost,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// Create inserts a new shipment record
func (r *shipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (id, order_id, method, status, tracking_number, shipped_at, delivered_at,
			address, region, province, district, cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		shipment.ID,
		shipment.OrderID,
		shipment.Method,
		shipment.Status,
		shipment.TrackingNumber,
		shipment.ShippedAt,
		shipment.DeliveredAt,
		shipment.Address,
		shipment.Region,
		shipment.Province,
		shipment.District,
		shipment.Cost,
		shipment.CreatedAt,
		shipment.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "shipments_order_id_key") {
			return ErrShipmentAlreadyExists
		}
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	return nil
}

// FindByID retrieves a shipment by ID
func (r *shipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`

	shipment, err := scanShipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to find shipment by ID: %w", err)
	}

	return shipment, nil
}

// FindByOrderID retrieves the shipment owned by an order
func (r *shipmentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE order_id = $1`

	shipment, err := scanShipment(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to find shipment by order ID: %w", err)
	}

	return shipment, nil
}

// List retrieves all shipment records
func (r *shipmentRepository) List(ctx context.Context) ([]*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	defer rows.Close()

	shipments := []*domain.Shipment{}
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipment: %w", err)
		}
		shipments = append(shipments, shipment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipments: %w", err)
	}

	return shipments, nil
}

// Update replaces a shipment record
func (r *shipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		UPDATE shipments
		SET method = $2, status = $3, tracking_number = $4, shipped_at = $5, delivered_at = $6,
		    address = $7, region = $8, province = $9, district = $10, cost = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		shipment.ID,
		shipment.Method,
		shipment.Status,
		shipment.TrackingNumber,
		shipment.ShippedAt,
		shipment.DeliveredAt,
		shipment.Address,
		shipment.Region,
		shipment.Province,
		shipment.District,
		shipment.Cost,
		shipment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update shipment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrShipmentNotFound
	}

	return nil
}

// UpdateStatus patches only the shipment status
func (r *shipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE shipments SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrShipmentNotFound
	}

	return nil
}

// Delete removes a shipment record
func (r *shipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shipments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrShipmentNotFound
	}

	return nil
}
