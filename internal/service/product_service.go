package service

import (
	"context"
	"errors"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// ProductInput carries the caller-supplied catalog fields.
type ProductInput struct {
	Name        string
	Category    string
	Subtype     string
	Description string
	Price       decimal.Decimal
	Stock       int
	Active      bool
}

// ProductService is catalog maintenance: everything about a product
// except stock consumption, which belongs to the inventory engine.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func validateProductInput(input ProductInput) error {
	if input.Price.IsNegative() {
		return ErrNegativePrice
	}
	if input.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Create adds a product to the catalog
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Category:    input.Category,
		Subtype:     input.Subtype,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Active:      input.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update replaces a product's catalog fields. Existing orders keep
// their captured unit prices regardless of price changes made here.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Category = input.Category
	product.Subtype = input.Subtype
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock
	product.Active = input.Active
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product from the catalog
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// FindByID retrieves a product
func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves the whole catalog
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}
