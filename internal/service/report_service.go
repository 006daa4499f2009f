package service

import (
	"bytes"
	"context"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerReportRow is one customer's rollup across the whole ledger.
type CustomerReportRow struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	OrderCount int             `json:"order_count"`
	TotalSpend decimal.Decimal `json:"total_spend"`
	Status     string          `json:"status"`
}

// OrderReportRow is one order enriched with its computed total and the
// payment/shipping data the export sheet needs.
type OrderReportRow struct {
	OrderID         uuid.UUID          `json:"order_id"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	OrderDate       time.Time          `json:"order_date"`
	Status          domain.OrderStatus `json:"status"`
	Total           decimal.Decimal    `json:"total"`
	ItemCount       int                `json:"item_count"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryAddress string             `json:"delivery_address"`
}

// ProductReportRow is one product's sales rollup.
type ProductReportRow struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Status    string          `json:"status"`
}

// SalesReportRow is one calendar day's rollup.
type SalesReportRow struct {
	Date              time.Time       `json:"date"`
	OrderCount        int             `json:"order_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageRevenue    decimal.Decimal `json:"average_revenue"`
	DistinctCustomers int             `json:"distinct_customers"`
	BestSellerName    string          `json:"best_seller_name"`
	BestSellerUnits   int             `json:"best_seller_units"`
}

// ReportService is the read-side sales aggregation reporter. Every
// report is a pure function of the ledger snapshot it reads: same
// ledger, same range, same rows. Empty ranges produce empty reports,
// never errors. Nothing here ever mutates state.
type ReportService interface {
	CustomerReport(ctx context.Context) ([]CustomerReportRow, error)
	OrderReport(ctx context.Context, from, to *time.Time) ([]OrderReportRow, error)
	ProductReport(ctx context.Context) ([]ProductReportRow, error)
	SalesReport(ctx context.Context, from, to *time.Time) ([]SalesReportRow, error)

	CustomerReportExcel(ctx context.Context) ([]byte, error)
	OrderReportExcel(ctx context.Context, from, to *time.Time) ([]byte, error)
	ProductReportExcel(ctx context.Context) ([]byte, error)
	SalesReportExcel(ctx context.Context, from, to *time.Time) ([]byte, error)
}

type reportService struct {
	orderRepo    repository.OrderRepository
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	paymentRepo  repository.PaymentRepository
	shipmentRepo repository.ShipmentRepository
}

// NewReportService creates a new instance of ReportService
func NewReportService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	shipmentRepo repository.ShipmentRepository,
) ReportService {
	return &reportService{
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		productRepo:  productRepo,
		paymentRepo:  paymentRepo,
		shipmentRepo: shipmentRepo,
	}
}

// CustomerReport computes order count and total spend for every
// customer, in customer creation order.
func (s *reportService) CustomerReport(ctx context.Context) ([]CustomerReportRow, error) {
	customers, err := s.userRepo.ListByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByDateRange(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	type rollup struct {
		count int
		spend decimal.Decimal
	}
	byCustomer := make(map[uuid.UUID]*rollup)
	for _, order := range orders {
		r, ok := byCustomer[order.CustomerID]
		if !ok {
			r = &rollup{spend: decimal.Zero}
			byCustomer[order.CustomerID] = r
		}
		r.count++
		r.spend = r.spend.Add(order.Total())
	}

	rows := make([]CustomerReportRow, 0, len(customers))
	for _, customer := range customers {
		row := CustomerReportRow{
			CustomerID: customer.ID,
			Name:       customer.FullName(),
			Email:      customer.Email,
			Phone:      customer.Phone,
			Address:    customer.Address,
			TotalSpend: decimal.Zero,
			Status:     customerStatus(customer),
		}
		if r, ok := byCustomer[customer.ID]; ok {
			row.OrderCount = r.count
			row.TotalSpend = r.spend
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// OrderReport lists orders in the inclusive date range (all orders when
// the range is omitted), each enriched with total, item count, payment
// method and delivery address. Orders with no payment get the
// UNSPECIFIED sentinel; orders with no shipment fall back to their own
// captured address.
func (s *reportService) OrderReport(ctx context.Context, from, to *time.Time) ([]OrderReportRow, error) {
	orders, err := s.orderRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentsByOrder(ctx)
	if err != nil {
		return nil, err
	}

	shipments, err := s.shipmentsByOrder(ctx)
	if err != nil {
		return nil, err
	}

	users := map[uuid.UUID]*domain.User{}
	rows := make([]OrderReportRow, 0, len(orders))
	for _, order := range orders {
		customer, ok := users[order.CustomerID]
		if !ok {
			customer, err = s.userRepo.FindByID(ctx, order.CustomerID)
			if err != nil {
				return nil, err
			}
			users[order.CustomerID] = customer
		}

		row := OrderReportRow{
			OrderID:         order.ID,
			CustomerName:    customer.FullName(),
			CustomerEmail:   customer.Email,
			OrderDate:       order.OrderDate,
			Status:          order.Status,
			Total:           order.Total(),
			ItemCount:       order.ItemCount(),
			PaymentMethod:   domain.PaymentMethodUnspecified,
			DeliveryAddress: order.Address,
		}
		if payment, ok := payments[order.ID]; ok {
			row.PaymentMethod = payment.Method
		}
		if shipment, ok := shipments[order.ID]; ok {
			row.DeliveryAddress = shipment.Address
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ProductReport computes units sold and revenue for every catalog
// product by scanning the ledger's line items once.
func (s *reportService) ProductReport(ctx context.Context) ([]ProductReportRow, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByDateRange(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	type rollup struct {
		units   int
		revenue decimal.Decimal
	}
	byProduct := make(map[uuid.UUID]*rollup)
	for _, order := range orders {
		for i := range order.Items {
			item := &order.Items[i]
			r, ok := byProduct[item.ProductID]
			if !ok {
				r = &rollup{revenue: decimal.Zero}
				byProduct[item.ProductID] = r
			}
			r.units += item.Quantity
			r.revenue = r.revenue.Add(item.Subtotal())
		}
	}

	rows := make([]ProductReportRow, 0, len(products))
	for _, product := range products {
		row := ProductReportRow{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			Price:     product.Price,
			Stock:     product.Stock,
			Revenue:   decimal.Zero,
			Status:    product.AvailabilityStatus(),
		}
		if r, ok := byProduct[product.ID]; ok {
			row.UnitsSold = r.units
			row.Revenue = r.revenue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SalesReport groups orders by calendar date and computes the per-day
// rollup: order count, revenue, average per order, distinct customers
// and the best-selling product by units. Ties on units break toward
// the lowest product id so identical ledgers always produce identical
// rows. Rows come back ascending by date.
func (s *reportService) SalesReport(ctx context.Context, from, to *time.Time) ([]SalesReportRow, error) {
	orders, err := s.orderRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	productNames := make(map[uuid.UUID]string, len(products))
	for _, product := range products {
		productNames[product.ID] = product.Name
	}

	type bucket struct {
		date      time.Time
		count     int
		revenue   decimal.Decimal
		customers map[uuid.UUID]struct{}
		units     map[uuid.UUID]int
	}

	// Orders arrive ascending by date, so first-seen order of the
	// buckets is already the output order.
	var days []*bucket
	byDay := map[time.Time]*bucket{}
	for _, order := range orders {
		day := civilDate(order.OrderDate)
		b, ok := byDay[day]
		if !ok {
			b = &bucket{
				date:      day,
				revenue:   decimal.Zero,
				customers: map[uuid.UUID]struct{}{},
				units:     map[uuid.UUID]int{},
			}
			byDay[day] = b
			days = append(days, b)
		}

		b.count++
		b.revenue = b.revenue.Add(order.Total())
		b.customers[order.CustomerID] = struct{}{}
		for i := range order.Items {
			b.units[order.Items[i].ProductID] += order.Items[i].Quantity
		}
	}

	rows := make([]SalesReportRow, 0, len(days))
	for _, b := range days {
		row := SalesReportRow{
			Date:              b.date,
			OrderCount:        b.count,
			TotalRevenue:      b.revenue,
			AverageRevenue:    decimal.Zero,
			DistinctCustomers: len(b.customers),
		}
		if b.count > 0 {
			row.AverageRevenue = b.revenue.DivRound(decimal.NewFromInt(int64(b.count)), 2)
		}

		bestID, bestUnits := bestSeller(b.units)
		if bestUnits > 0 {
			row.BestSellerName = productNames[bestID]
			row.BestSellerUnits = bestUnits
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// bestSeller picks the product with the most units; ties break toward
// the lowest product id.
func bestSeller(units map[uuid.UUID]int) (uuid.UUID, int) {
	var bestID uuid.UUID
	bestUnits := 0
	for id, n := range units {
		switch {
		case n > bestUnits:
			bestID, bestUnits = id, n
		case n == bestUnits && bestUnits > 0 && bytes.Compare(id[:], bestID[:]) < 0:
			bestID = id
		}
	}
	return bestID, bestUnits
}

func (s *reportService) paymentsByOrder(ctx context.Context) (map[uuid.UUID]*domain.Payment, error) {
	payments, err := s.paymentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[uuid.UUID]*domain.Payment, len(payments))
	for _, payment := range payments {
		byOrder[payment.OrderID] = payment
	}
	return byOrder, nil
}

func (s *reportService) shipmentsByOrder(ctx context.Context) (map[uuid.UUID]*domain.Shipment, error) {
	shipments, err := s.shipmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[uuid.UUID]*domain.Shipment, len(shipments))
	for _, shipment := range shipments {
		byOrder[shipment.OrderID] = shipment
	}
	return byOrder, nil
}

func customerStatus(user *domain.User) string {
	if user.Active {
		return "ACTIVE"
	}
	return "INACTIVE"
}
