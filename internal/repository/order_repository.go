package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe-orders/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access. An order
// and its line items are always written together: CreateWithItems runs
// on the caller's transaction so the insert shares its fate with the
// stock decrements, and Delete relies on ON DELETE CASCADE to take the
// items, payment and shipment with the order.
type OrderRepository interface {
	CreateWithItems(ctx context.Context, tx DBTX, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error)
	ListByDateRange(ctx context.Context, from, to *time.Time) ([]*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_id, order_date, status, phone, address, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.OrderDate,
		&order.Status,
		&order.Phone,
		&order.Address,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateWithItems inserts the order row and all of its line items on
// the supplied transaction.
func (r *orderRepository) CreateWithItems(ctx context.Context, tx DBTX, order *domain.Order) error {
	orderQuery := `
		INSERT INTO orders (id, customer_id, order_date, status, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.CustomerID,
		order.OrderDate,
		order.Status,
		order.Phone,
		order.Address,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i := range order.Items {
		item := &order.Items[i]
		_, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves an order and its line items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	items, err := r.loadItems(ctx, `SELECT li.id, li.order_id, li.product_id, li.quantity, li.unit_price
		FROM order_items li WHERE li.order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.LineItem{}
	}

	return order, nil
}

// FindByCustomer retrieves all orders owned by a customer, newest first
func (r *orderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC, created_at DESC`

	orders, err := r.queryOrders(ctx, query, customerID)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, `SELECT li.id, li.order_id, li.product_id, li.quantity, li.unit_price
		FROM order_items li
		JOIN orders o ON o.id = li.order_id
		WHERE o.customer_id = $1`, customerID)
	if err != nil {
		return nil, err
	}
	attachItems(orders, items)

	return orders, nil
}

// ListByDateRange retrieves orders whose order date falls in the
// inclusive [from, to] range, with their line items. A nil bound is
// open-ended; both nil returns the whole ledger. Orders come back
// ascending by date so report rows keep a stable iteration order.
func (r *orderRepository) ListByDateRange(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1::date IS NULL OR order_date >= $1)
		  AND ($2::date IS NULL OR order_date <= $2)
		ORDER BY order_date ASC, created_at ASC`

	orders, err := r.queryOrders(ctx, query, from, to)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, `SELECT li.id, li.order_id, li.product_id, li.quantity, li.unit_price
		FROM order_items li
		JOIN orders o ON o.id = li.order_id
		WHERE ($1::date IS NULL OR o.order_date >= $1)
		  AND ($2::date IS NULL OR o.order_date <= $2)`, from, to)
	if err != nil {
		return nil, err
	}
	attachItems(orders, items)

	return orders, nil
}

// Update replaces the mutable order fields. Line items are never
// partially updated through this path.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET order_date = $2, status = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderDate,
		order.Status,
		order.Phone,
		order.Address,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// UpdateStatus sets the order's lifecycle status
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Delete removes an order; items, payment and shipment follow via
// ON DELETE CASCADE. Stock is deliberately untouched.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, query string, args ...any) (map[uuid.UUID][]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := map[uuid.UUID][]domain.LineItem{}
	for rows.Next() {
		item := domain.LineItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func attachItems(orders []*domain.Order, items map[uuid.UUID][]domain.LineItem) {
	for _, order := range orders {
		if list, ok := items[order.ID]; ok {
			order.Items = list
		} else {
			order.Items = []domain.LineItem{}
		}
	}
}
