package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InsufficientStockError reports the first product in a reservation
// batch that could not be covered. The whole batch is guaranteed
// untouched when this is returned.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ItemRequest asks for a quantity of one product.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// Reservation is the engine's answer for one requested item: the
// product as read under the row lock and the unit price to cost the
// line item with. Callers must not re-read the price.
type Reservation struct {
	Product   *domain.Product
	Quantity  int
	UnitPrice decimal.Decimal
}

// InventoryService is the inventory consistency engine. Reserve is
// all-or-nothing across the batch and not idempotent: each successful
// call consumes stock, so callers must not retry a success.
type InventoryService interface {
	Reserve(ctx context.Context, tx repository.DBTX, items []ItemRequest) ([]Reservation, error)
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
	txManager   repository.TxManager
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(productRepo repository.ProductRepository, txManager repository.TxManager) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		txManager:   txManager,
	}
}

// Reserve runs the two-phase reservation on the caller's transaction.
// Phase one locks every product row (in product-id order, so two
// concurrent multi-item batches cannot deadlock) and verifies that the
// aggregate requested quantity per product is covered. Phase two, only
// reached when every item verified, decrements each product and locks
// in the verification-time unit price. Any failure leaves every
// product untouched because the caller rolls the transaction back.
func (s *inventoryService) Reserve(ctx context.Context, tx repository.DBTX, items []ItemRequest) ([]Reservation, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	// Aggregate quantities so a product appearing on two lines is
	// verified against its combined demand.
	needed := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		needed[item.ProductID] += item.Quantity
	}

	ids := make([]uuid.UUID, 0, len(needed))
	for id := range needed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	// Verification phase: lock and check every product before touching
	// any stock.
	locked := make(map[uuid.UUID]*domain.Product, len(ids))
	for _, id := range ids {
		product, err := s.productRepo.LockForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = product
	}

	for _, id := range ids {
		product := locked[id]
		if product.Stock < needed[id] {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   needed[id],
			}
		}
	}

	// Commit phase: every item verified, decrement each product once.
	for _, id := range ids {
		if err := s.productRepo.AdjustStock(ctx, tx, id, -needed[id]); err != nil {
			return nil, err
		}
	}

	reservations := make([]Reservation, len(items))
	for i, item := range items {
		product := locked[item.ProductID]
		reservations[i] = Reservation{
			Product:   product,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		}
	}

	return reservations, nil
}

// Release returns quantity units to a product's stock, used for
// cancellations and returns. Product existence is the only
// precondition.
func (s *inventoryService) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	return s.txManager.WithinTx(ctx, func(tx repository.DBTX) error {
		if _, err := s.productRepo.LockForUpdate(ctx, tx, productID); err != nil {
			return err
		}
		return s.productRepo.AdjustStock(ctx, tx, productID, quantity)
	})
}
