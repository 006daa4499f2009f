package service

import (
	"context"
	"errors"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrTerminalStatus   = errors.New("order is in a terminal status")
	ErrNoItems          = errors.New("order must contain at least one item")
)

// OrderUpdate carries the replaceable order fields for a full update.
// The customer reference and the line items are immutable through this
// path.
type OrderUpdate struct {
	OrderDate time.Time
	Status    domain.OrderStatus
	Phone     string
	Address   string
}

// OrderService owns the order aggregate: creation composes the
// inventory engine inside one transaction, later mutations are
// independent single-order operations.
type OrderService interface {
	Create(ctx context.Context, customerID uuid.UUID, phone, address string, items []ItemRequest) (*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Update(ctx context.Context, id uuid.UUID, update OrderUpdate) (*domain.Order, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	inventory InventoryService
	txManager repository.TxManager
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	inventory InventoryService,
	txManager repository.TxManager,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		inventory: inventory,
		txManager: txManager,
	}
}

// Create places an order. The stock reservation and the order/item
// inserts share one transaction: any failure rolls everything back, so
// a rejected order never consumes inventory and a failed insert never
// leaks a decrement.
func (s *orderService) Create(ctx context.Context, customerID uuid.UUID, phone, address string, items []ItemRequest) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	customer, err := s.userRepo.FindByID(ctx, customerID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		OrderDate:  civilDate(now),
		Status:     domain.StatusPending,
		Phone:      phone,
		Address:    address,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.txManager.WithinTx(ctx, func(tx repository.DBTX) error {
		reservations, err := s.inventory.Reserve(ctx, tx, items)
		if err != nil {
			return err
		}

		order.Items = make([]domain.LineItem, len(reservations))
		for i, res := range reservations {
			order.Items[i] = domain.LineItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: res.Product.ID,
				Quantity:  res.Quantity,
				UnitPrice: res.UnitPrice,
			}
		}

		return s.orderRepo.CreateWithItems(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// FindByID retrieves an order with its line items
func (s *orderService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// FindByCustomer retrieves all orders owned by a customer
func (s *orderService) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.FindByCustomer(ctx, customerID)
}

// List retrieves the whole order ledger
func (s *orderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.ListByDateRange(ctx, nil, nil)
}

// Update replaces an order's mutable fields as a whole record
func (s *orderService) Update(ctx context.Context, id uuid.UUID, update OrderUpdate) (*domain.Order, error) {
	if !update.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.OrderDate = civilDate(update.OrderDate)
	order.Status = update.Status
	order.Phone = update.Phone
	order.Address = update.Address
	order.UpdatedAt = time.Now().UTC()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ChangeStatus applies the permissive transition function: any
// enumerated status may be set unless the order already reached a
// terminal state. Cancellation does not release reserved stock; that
// is an explicit inventory Release call if the operator wants it.
func (s *orderService) ChangeStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, ErrTerminalStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return order, nil
}

// Delete removes an order together with its owned line items, payment
// and shipment. Stock counts are left as they are.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.orderRepo.Delete(ctx, id)
}

// civilDate normalizes a timestamp to its calendar date in UTC, which
// is how order dates are stored and bucketed.
func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
