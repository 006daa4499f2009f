package transport

import (
	"fmt"
	"net/http"
	"time"

	"cafe-orders/internal/middleware"
	"cafe-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for the sales reports. Every
// report is available as JSON rows and as an xlsx download.
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers all report routes. Reports are admin-only.
func (h *ReportHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Get("/customers", h.Customers)
		r.Get("/customers/export", h.CustomersExport)
		r.Get("/orders", h.Orders)
		r.Get("/orders/export", h.OrdersExport)
		r.Get("/products", h.Products)
		r.Get("/products/export", h.ProductsExport)
		r.Get("/sales", h.Sales)
		r.Get("/sales/export", h.SalesExport)
	})
}

// Customers returns the per-customer rollup
func (h *ReportHandler) Customers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reportService.CustomerReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build customer report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to build customer report")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}

// CustomersExport returns the customer report as an xlsx download
func (h *ReportHandler) CustomersExport(w http.ResponseWriter, r *http.Request) {
	h.serveWorkbook(w, "customer-report", func() ([]byte, error) {
		return h.reportService.CustomerReportExcel(r.Context())
	})
}

// Orders returns the order rollup for the optional inclusive date range
func (h *ReportHandler) Orders(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid date range")
		return
	}

	rows, err := h.reportService.OrderReport(r.Context(), from, to)
	if err != nil {
		h.logger.Error("Failed to build order report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to build order report")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}

// OrdersExport returns the order report as an xlsx download
func (h *ReportHandler) OrdersExport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid date range")
		return
	}

	h.serveWorkbook(w, "order-report", func() ([]byte, error) {
		return h.reportService.OrderReportExcel(r.Context(), from, to)
	})
}

// Products returns the per-product sales rollup
func (h *ReportHandler) Products(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reportService.ProductReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build product report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to build product report")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}

// ProductsExport returns the product report as an xlsx download
func (h *ReportHandler) ProductsExport(w http.ResponseWriter, r *http.Request) {
	h.serveWorkbook(w, "product-report", func() ([]byte, error) {
		return h.reportService.ProductReportExcel(r.Context())
	})
}

// Sales returns the per-day rollup for the optional inclusive date range
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid date range")
		return
	}

	rows, err := h.reportService.SalesReport(r.Context(), from, to)
	if err != nil {
		h.logger.Error("Failed to build sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to build sales report")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}

// SalesExport returns the sales report as an xlsx download
func (h *ReportHandler) SalesExport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid date range")
		return
	}

	h.serveWorkbook(w, "sales-report", func() ([]byte, error) {
		return h.reportService.SalesReportExcel(r.Context(), from, to)
	})
}

func (h *ReportHandler) serveWorkbook(w http.ResponseWriter, name string, build func() ([]byte, error)) {
	data, err := build()
	if err != nil {
		h.logger.Error("Failed to build report workbook", zap.Error(err), zap.String("report", name))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to build report")
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
