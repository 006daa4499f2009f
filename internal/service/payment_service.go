package service

import (
	"context"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentInput carries the caller-supplied payment fields.
type PaymentInput struct {
	Method    string
	Amount    decimal.Decimal
	Status    string
	Reference string
	PaidAt    *time.Time
}

// PaymentService manages the at-most-one payment record per order,
// created after the order exists and mutated independently of the
// order's own lifecycle.
type PaymentService interface {
	Create(ctx context.Context, orderID uuid.UUID, input PaymentInput) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	Update(ctx context.Context, id uuid.UUID, input PaymentInput) (*domain.Payment, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
}

// NewPaymentService creates a new instance of PaymentService
func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

// Create attaches a payment to an existing order
func (s *paymentService) Create(ctx context.Context, orderID uuid.UUID, input PaymentInput) (*domain.Payment, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		Method:    input.Method,
		Amount:    input.Amount,
		Status:    input.Status,
		Reference: input.Reference,
		PaidAt:    input.PaidAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// FindByOrderID retrieves the payment owned by an order
func (s *paymentService) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	return s.paymentRepo.FindByOrderID(ctx, orderID)
}

// Update replaces the payment's caller-supplied fields
func (s *paymentService) Update(ctx context.Context, id uuid.UUID, input PaymentInput) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payment.Method = input.Method
	payment.Amount = input.Amount
	payment.Status = input.Status
	payment.Reference = input.Reference
	payment.PaidAt = input.PaidAt
	payment.UpdatedAt = time.Now().UTC()

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// ChangeStatus patches only the payment status
func (s *paymentService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Payment, error) {
	if err := s.paymentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindByID(ctx, id)
}

// Delete removes a payment record
func (s *paymentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.paymentRepo.Delete(ctx, id)
}
