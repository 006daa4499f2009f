package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository doubles. The tx parameter on the locking methods
// is ignored; the mock tx manager emulates rollback by snapshotting
// product stock around the callback.

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			if email != user.Email {
				delete(m.users, email)
			}
			m.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range m.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) add(product *domain.Product) {
	m.products[product.ID] = product
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(m.products))
	for _, product := range m.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockProductRepository) LockForUpdate(ctx context.Context, tx repository.DBTX, id uuid.UUID) (*domain.Product, error) {
	return m.FindByID(ctx, id)
}

func (m *mockProductRepository) AdjustStock(ctx context.Context, tx repository.DBTX, id uuid.UUID, delta int) error {
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.Stock += delta
	return nil
}

func (m *mockProductRepository) stockOf(id uuid.UUID) int {
	return m.products[id].Stock
}

type mockOrderRepository struct {
	orders     map[uuid.UUID]*domain.Order
	failCreate error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepository) CreateWithItems(ctx context.Context, tx repository.DBTX, order *domain.Order) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		if order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.Before(out[j].OrderDate) })
	return out, nil
}

func (m *mockOrderRepository) ListByDateRange(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		if from != nil && order.OrderDate.Before(*from) {
			continue
		}
		if to != nil && order.OrderDate.After(*to) {
			continue
		}
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.Before(out[j].OrderDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	if _, exists := m.orders[order.ID]; !exists {
		return repository.ErrOrderNotFound
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.orders[id]; !exists {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

type mockPaymentRepository struct {
	payments map[uuid.UUID]*domain.Payment
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	for _, existing := range m.payments {
		if existing.OrderID == payment.OrderID {
			return repository.ErrPaymentAlreadyExists
		}
	}
	m.payments[payment.ID] = payment
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, exists := m.payments[id]
	if !exists {
		return nil, repository.ErrPaymentNotFound
	}
	return payment, nil
}

func (m *mockPaymentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	for _, payment := range m.payments {
		if payment.OrderID == orderID {
			return payment, nil
		}
	}
	return nil, repository.ErrPaymentNotFound
}

func (m *mockPaymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	out := make([]*domain.Payment, 0, len(m.payments))
	for _, payment := range m.payments {
		out = append(out, payment)
	}
	return out, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	if _, exists := m.payments[payment.ID]; !exists {
		return repository.ErrPaymentNotFound
	}
	m.payments[payment.ID] = payment
	return nil
}

func (m *mockPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	payment, exists := m.payments[id]
	if !exists {
		return repository.ErrPaymentNotFound
	}
	payment.Status = status
	return nil
}

func (m *mockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.payments[id]; !exists {
		return repository.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

type mockShipmentRepository struct {
	shipments map[uuid.UUID]*domain.Shipment
}

func newMockShipmentRepository() *mockShipmentRepository {
	return &mockShipmentRepository{shipments: make(map[uuid.UUID]*domain.Shipment)}
}

func (m *mockShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	for _, existing := range m.shipments {
		if existing.OrderID == shipment.OrderID {
			return repository.ErrShipmentAlreadyExists
		}
	}
	m.shipments[shipment.ID] = shipment
	return nil
}

func (m *mockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	shipment, exists := m.shipments[id]
	if !exists {
		return nil, repository.ErrShipmentNotFound
	}
	return shipment, nil
}

func (m *mockShipmentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	for _, shipment := range m.shipments {
		if shipment.OrderID == orderID {
			return shipment, nil
		}
	}
	return nil, repository.ErrShipmentNotFound
}

func (m *mockShipmentRepository) List(ctx context.Context) ([]*domain.Shipment, error) {
	out := make([]*domain.Shipment, 0, len(m.shipments))
	for _, shipment := range m.shipments {
		out = append(out, shipment)
	}
	return out, nil
}

func (m *mockShipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	if _, exists := m.shipments[shipment.ID]; !exists {
		return repository.ErrShipmentNotFound
	}
	m.shipments[shipment.ID] = shipment
	return nil
}

func (m *mockShipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	shipment, exists := m.shipments[id]
	if !exists {
		return repository.ErrShipmentNotFound
	}
	shipment.Status = status
	return nil
}

func (m *mockShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.shipments[id]; !exists {
		return repository.ErrShipmentNotFound
	}
	delete(m.shipments, id)
	return nil
}

/// mockTxManager emulates transactional rollback for the product table:
// stock levels are snapshotted before the callback and restored when it
// fails, which is the observable effect the services rely on.
type mockTxManager struct {
	products *mockProductRepository
}

func newMockTxManager(products *mockProductRepository) *mockTxManager {
	return &mockTxManager{products: products}
}

func (m *mockTxManager) WithinTx(ctx context.Context, fn func(tx repository.DBTX) error) error {
	snapshot := make(map[uuid.UUID]int, len(m.products.products))
	for id, product := range m.products.products {
		snapshot[id] = product.Stock
	}

	if err := fn(nil); err != nil {
		for id, stock := range snapshot {
			if product, ok := m.products.products[id]; ok {
				product.Stock = stock
			}
		}
		return err
	}
	return nil
}

var errForcedFailure = errors.New("forced failure")
