package service

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"

	"cafe-orders/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type reportFixture struct {
	orders    *mockOrderRepository
	users     *mockUserRepository
	products  *mockProductRepository
	payments  *mockPaymentRepository
	shipments *mockShipmentRepository
	service   ReportService
}

func newReportFixture() *reportFixture {
	orders := newMockOrderRepository()
	users := newMockUserRepository()
	products := newMockProductRepository()
	payments := newMockPaymentRepository()
	shipments := newMockShipmentRepository()

	return &reportFixture{
		orders:    orders,
		users:     users,
		products:  products,
		payments:  payments,
		shipments: shipments,
		service:   NewReportService(orders, users, products, payments, shipments),
	}
}

func (f *reportFixture) seedCustomer(email string, createdAt time.Time) *domain.User {
	customer := newTestCustomer(email)
	customer.CreatedAt = createdAt
	f.users.users[email] = customer
	return customer
}

func (f *reportFixture) seedOrder(customer *domain.User, date time.Time, lines ...domain.LineItem) *domain.Order {
	order := &domain.Order{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		OrderDate:  date,
		Status:     domain.StatusConfirmed,
		Phone:      customer.Phone,
		Address:    customer.Address,
		CreatedAt:  date,
		UpdatedAt:  date,
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].OrderID = order.ID
	}
	order.Items = lines
	f.orders.orders[order.ID] = order
	return order
}

func line(product *domain.Product, qty int) domain.LineItem {
	return domain.LineItem{ProductID: product.ID, Quantity: qty, UnitPrice: product.Price}
}

func TestSalesReportRollup(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))
	luis := f.seedCustomer("luis@example.com", day(2025, 3, 2))

	espresso := newTestProduct("Espresso", 100, "3.50")
	croissant := newTestProduct("Croissant", 100, "2.20")
	f.products.add(espresso)
	f.products.add(croissant)

	// Two orders on the 10th, one on the 12th.
	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 2))              // 7.00
	f.seedOrder(luis, day(2025, 3, 10), line(espresso, 1), line(croissant, 3)) // 10.10
	f.seedOrder(ana, day(2025, 3, 12), line(croissant, 5))             // 11.00

	rows, err := f.service.SalesReport(ctx, nil, nil)
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 days, got %d", len(rows))
	}

	first := rows[0]
	if !first.Date.Equal(day(2025, 3, 10)) {
		t.Errorf("first bucket date %v", first.Date)
	}
	if first.OrderCount != 2 {
		t.Errorf("first bucket order count %d, want 2", first.OrderCount)
	}
	if !first.TotalRevenue.Equal(decimal.RequireFromString("17.10")) {
		t.Errorf("first bucket revenue %s, want 17.10", first.TotalRevenue)
	}
	if !first.AverageRevenue.Equal(decimal.RequireFromString("8.55")) {
		t.Errorf("first bucket average %s, want 8.55", first.AverageRevenue)
	}
	if first.DistinctCustomers != 2 {
		t.Errorf("first bucket distinct customers %d, want 2", first.DistinctCustomers)
	}
	if first.BestSellerName != "Espresso" || first.BestSellerUnits != 3 {
		t.Errorf("first bucket best seller %s/%d, want Espresso/3", first.BestSellerName, first.BestSellerUnits)
	}

	second := rows[1]
	if !second.Date.Equal(day(2025, 3, 12)) {
		t.Errorf("second bucket date %v", second.Date)
	}
	if second.OrderCount != 1 || second.DistinctCustomers != 1 {
		t.Errorf("second bucket counts %d/%d", second.OrderCount, second.DistinctCustomers)
	}
	if !second.TotalRevenue.Equal(decimal.RequireFromString("11.00")) {
		t.Errorf("second bucket revenue %s, want 11.00", second.TotalRevenue)
	}
	if second.BestSellerName != "Croissant" || second.BestSellerUnits != 5 {
		t.Errorf("second bucket best seller %s/%d", second.BestSellerName, second.BestSellerUnits)
	}
}

// The date range is inclusive on both ends.
func TestSalesReportInclusiveRange(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))
	espresso := newTestProduct("Espresso", 100, "3.50")
	f.products.add(espresso)

	f.seedOrder(ana, day(2025, 3, 9), line(espresso, 1))
	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 1))
	f.seedOrder(ana, day(2025, 3, 15), line(espresso, 1))
	f.seedOrder(ana, day(2025, 3, 16), line(espresso, 1))

	from := day(2025, 3, 10)
	to := day(2025, 3, 15)
	rows, err := f.service.SalesReport(ctx, &from, &to)
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected both boundary days and nothing else, got %d rows", len(rows))
	}
	if !rows[0].Date.Equal(from) || !rows[1].Date.Equal(to) {
		t.Errorf("boundary dates missing: %v, %v", rows[0].Date, rows[1].Date)
	}
}

// Identical ledgers yield identical reports, including the best-seller
// pick when two products tie on units.
func TestSalesReportDeterministicTieBreak(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))

	espresso := newTestProduct("Espresso", 100, "3.50")
	croissant := newTestProduct("Croissant", 100, "2.20")
	f.products.add(espresso)
	f.products.add(croissant)

	// Same units for both products on the same day.
	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 4), line(croissant, 4))

	lowest := espresso
	if bytes.Compare(croissant.ID[:], espresso.ID[:]) < 0 {
		lowest = croissant
	}

	for i := 0; i < 5; i++ {
		rows, err := f.service.SalesReport(ctx, nil, nil)
		if err != nil {
			t.Fatalf("SalesReport failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].BestSellerName != lowest.Name {
			t.Fatalf("run %d: best seller %q, want %q", i, rows[0].BestSellerName, lowest.Name)
		}
	}
}

// Re-running any report over an unchanged ledger returns the same rows.
func TestReportsAreIdempotent(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))
	luis := f.seedCustomer("luis@example.com", day(2025, 3, 2))

	espresso := newTestProduct("Espresso", 100, "3.50")
	croissant := newTestProduct("Croissant", 100, "2.20")
	f.products.add(espresso)
	f.products.add(croissant)

	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 2))
	f.seedOrder(luis, day(2025, 3, 11), line(croissant, 1), line(espresso, 1))

	sales1, err := f.service.SalesReport(ctx, nil, nil)
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	sales2, _ := f.service.SalesReport(ctx, nil, nil)
	if !reflect.DeepEqual(sales1, sales2) {
		t.Errorf("sales report not idempotent")
	}

	customers1, err := f.service.CustomerReport(ctx)
	if err != nil {
		t.Fatalf("CustomerReport failed: %v", err)
	}
	customers2, _ := f.service.CustomerReport(ctx)
	if !reflect.DeepEqual(customers1, customers2) {
		t.Errorf("customer report not idempotent")
	}

	products1, err := f.service.ProductReport(ctx)
	if err != nil {
		t.Fatalf("ProductReport failed: %v", err)
	}
	products2, _ := f.service.ProductReport(ctx)
	if !reflect.DeepEqual(products1, products2) {
		t.Errorf("product report not idempotent")
	}
}

func TestSalesReportEmptyRange(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	from := day(2030, 1, 1)
	to := day(2030, 1, 31)
	rows, err := f.service.SalesReport(ctx, &from, &to)
	if err != nil {
		t.Fatalf("empty range must not error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestCustomerReportRollup(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))
	luis := f.seedCustomer("luis@example.com", day(2025, 3, 2))
	idle := f.seedCustomer("idle@example.com", day(2025, 3, 3))

	espresso := newTestProduct("Espresso", 100, "3.50")
	f.products.add(espresso)

	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 2)) // 7.00
	f.seedOrder(ana, day(2025, 3, 11), line(espresso, 1)) // 3.50
	f.seedOrder(luis, day(2025, 3, 12), line(espresso, 4)) // 14.00

	rows, err := f.service.CustomerReport(ctx)
	if err != nil {
		t.Fatalf("CustomerReport failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	byID := map[uuid.UUID]CustomerReportRow{}
	for _, row := range rows {
		byID[row.CustomerID] = row
	}

	if row := byID[ana.ID]; row.OrderCount != 2 || !row.TotalSpend.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("ana rollup %d/%s, want 2/10.50", row.OrderCount, row.TotalSpend)
	}
	if row := byID[luis.ID]; row.OrderCount != 1 || !row.TotalSpend.Equal(decimal.RequireFromString("14.00")) {
		t.Errorf("luis rollup %d/%s, want 1/14.00", row.OrderCount, row.TotalSpend)
	}
	if row := byID[idle.ID]; row.OrderCount != 0 || !row.TotalSpend.Equal(decimal.Zero) {
		t.Errorf("idle customer rollup %d/%s, want 0/0", row.OrderCount, row.TotalSpend)
	}
}

func TestProductReportRollup(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))

	espresso := newTestProduct("Espresso", 100, "3.50")
	dormant := newTestProduct("Matcha", 0, "4.80")
	dormant.Active = false
	f.products.add(espresso)
	f.products.add(dormant)

	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 3))
	f.seedOrder(ana, day(2025, 3, 11), line(espresso, 2))

	rows, err := f.service.ProductReport(ctx)
	if err != nil {
		t.Fatalf("ProductReport failed: %v", err)
	}

	byID := map[uuid.UUID]ProductReportRow{}
	for _, row := range rows {
		byID[row.ProductID] = row
	}

	if row := byID[espresso.ID]; row.UnitsSold != 5 || !row.Revenue.Equal(decimal.RequireFromString("17.50")) {
		t.Errorf("espresso rollup %d/%s, want 5/17.50", row.UnitsSold, row.Revenue)
	}
	if row := byID[dormant.ID]; row.UnitsSold != 0 || !row.Revenue.Equal(decimal.Zero) {
		t.Errorf("dormant rollup %d/%s, want 0/0", row.UnitsSold, row.Revenue)
	}
	if byID[dormant.ID].Status != "INACTIVE" {
		t.Errorf("dormant status %s, want INACTIVE", byID[dormant.ID].Status)
	}
}

// Orders without a payment report the UNSPECIFIED method, and the
// shipment address wins over the order's own snapshot when present.
func TestOrderReportFallbacks(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))
	espresso := newTestProduct("Espresso", 100, "3.50")
	f.products.add(espresso)

	bare := f.seedOrder(ana, day(2025, 3, 10), line(espresso, 1))
	covered := f.seedOrder(ana, day(2025, 3, 11), line(espresso, 2))

	f.payments.payments[uuid.New()] = &domain.Payment{
		ID:      uuid.New(),
		OrderID: covered.ID,
		Method:  "CARD",
		Amount:  decimal.RequireFromString("7.00"),
		Status:  "PAID",
	}
	f.shipments.shipments[uuid.New()] = &domain.Shipment{
		ID:      uuid.New(),
		OrderID: covered.ID,
		Method:  "COURIER",
		Status:  "IN_TRANSIT",
		Address: "99 Warehouse Rd",
	}

	rows, err := f.service.OrderReport(ctx, nil, nil)
	if err != nil {
		t.Fatalf("OrderReport failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byID := map[uuid.UUID]OrderReportRow{}
	for _, row := range rows {
		byID[row.OrderID] = row
	}

	if row := byID[bare.ID]; row.PaymentMethod != domain.PaymentMethodUnspecified {
		t.Errorf("bare order payment method %q, want UNSPECIFIED", row.PaymentMethod)
	}
	if row := byID[bare.ID]; row.DeliveryAddress != ana.Address {
		t.Errorf("bare order address %q, want order snapshot %q", row.DeliveryAddress, ana.Address)
	}

	if row := byID[covered.ID]; row.PaymentMethod != "CARD" {
		t.Errorf("covered order payment method %q, want CARD", row.PaymentMethod)
	}
	if row := byID[covered.ID]; row.DeliveryAddress != "99 Warehouse Rd" {
		t.Errorf("covered order address %q, want shipment address", row.DeliveryAddress)
	}
}

// The xlsx exports render one header row plus one row per record; a
// non-empty workbook is the cheap sanity check here.
func TestReportExcelExports(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	ana := f.seedCustomer("ana@example.com", day(2025, 3, 1))
	espresso := newTestProduct("Espresso", 100, "3.50")
	f.products.add(espresso)
	f.seedOrder(ana, day(2025, 3, 10), line(espresso, 2))

	exports := map[string]func() ([]byte, error){
		"customers": func() ([]byte, error) { return f.service.CustomerReportExcel(ctx) },
		"orders":    func() ([]byte, error) { return f.service.OrderReportExcel(ctx, nil, nil) },
		"products":  func() ([]byte, error) { return f.service.ProductReportExcel(ctx) },
		"sales":     func() ([]byte, error) { return f.service.SalesReportExcel(ctx, nil, nil) },
	}

	for name, build := range exports {
		data, err := build()
		if err != nil {
			t.Errorf("%s export failed: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s export is empty", name)
		}
		// xlsx files are zip archives.
		if !bytes.HasPrefix(data, []byte("PK")) {
			t.Errorf("%s export is not a zip container", name)
		}
	}
}
