package service

import (
	"context"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentInput carries the caller-supplied shipment fields.
type ShipmentInput struct {
	Method         string
	Status         string
	TrackingNumber string
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Address        string
	Region         string
	Province       string
	District       string
	Cost           decimal.Decimal
}

// ShipmentService manages the at-most-one shipment record per order.
// Shipment mutations are independent of the order's state and of the
// payment record.
type ShipmentService interface {
	Create(ctx context.Context, orderID uuid.UUID, input ShipmentInput) (*domain.Shipment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error)
	Update(ctx context.Context, id uuid.UUID, input ShipmentInput) (*domain.Shipment, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type shipmentService struct {
	shipmentRepo repository.ShipmentRepository
	orderRepo    repository.OrderRepository
}

// NewShipmentService creates a new instance of ShipmentService
func NewShipmentService(shipmentRepo repository.ShipmentRepository, orderRepo repository.OrderRepository) ShipmentService {
	return &shipmentService{
		shipmentRepo: shipmentRepo,
		orderRepo:    orderRepo,
	}
}

// Create attaches a shipment to an existing order
func (s *shipmentService) Create(ctx context.Context, orderID uuid.UUID, input ShipmentInput) (*domain.Shipment, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shipment := &domain.Shipment{
		ID:             uuid.New(),
		OrderID:        orderID,
		Method:         input.Method,
		Status:         input.Status,
		TrackingNumber: input.TrackingNumber,
		ShippedAt:      input.ShippedAt,
		DeliveredAt:    input.DeliveredAt,
		Address:        input.Address,
		Region:         input.Region,
		Province:       input.Province,
		District:       input.District,
		Cost:           input.Cost,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.shipmentRepo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	return shipment, nil
}

// FindByOrderID retrieves the shipment owned by an order
func (s *shipmentService) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	return s.shipmentRepo.FindByOrderID(ctx, orderID)
}

// Update replaces the shipment's caller-supplied fields
func (s *shipmentService) Update(ctx context.Context, id uuid.UUID, input ShipmentInput) (*domain.Shipment, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	shipment.Method = input.Method
	shipment.Status = input.Status
	shipment.TrackingNumber = input.TrackingNumber
	shipment.ShippedAt = input.ShippedAt
	shipment.DeliveredAt = input.DeliveredAt
	shipment.Address = input.Address
	shipment.Region = input.Region
	shipment.Province = input.Province
	shipment.District = input.District
	shipment.Cost = input.Cost
	shipment.UpdatedAt = time.Now().UTC()

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, err
	}

	return shipment, nil
}

// ChangeStatus patches only the shipment status
func (s *shipmentService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Shipment, error) {
	if err := s.shipmentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.shipmentRepo.FindByID(ctx, id)
}

// Delete removes a shipment record
func (s *shipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.shipmentRepo.Delete(ctx, id)
}
