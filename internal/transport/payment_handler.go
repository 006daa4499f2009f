package transport

import (
	"net/http"
	"time"

	"cafe-orders/internal/middleware"
	"cafe-orders/internal/repository"
	"cafe-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRequest represents the create/update payment payload
type PaymentRequest struct {
	Method    string          `json:"method" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Status    string          `json:"status" validate:"required"`
	Reference string          `json:"reference"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// PaymentStatusRequest represents the payment status patch payload
type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// RegisterRoutes registers all payment routes. A payment is addressed
// through its owning order for creation and lookup, and directly by its
// own id for mutations.
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders/{orderID}/payment", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.GetByOrder)
	})

	r.Route("/api/payments/{id}", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Put("/", h.Update)
		r.Patch("/status", h.ChangeStatus)
		r.Delete("/", h.Delete)
	})
}

// Create attaches a payment to an order
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	var req PaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Payment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	payment, err := h.paymentService.Create(r.Context(), orderID, service.PaymentInput{
		Method:    req.Method,
		Amount:    req.Amount,
		Status:    req.Status,
		Reference: req.Reference,
		PaidAt:    req.PaidAt,
	})
	if err != nil {
		switch err {
		case repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
		case repository.ErrPaymentAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, middleware.CodeConflict, "order already has a payment")
		default:
			h.logger.Error("Failed to create payment", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to create payment")
		}
		return
	}

	h.logger.Info("Payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", orderID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, payment)
}

// GetByOrder returns the payment owned by an order
func (h *PaymentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	payment, err := h.paymentService.FindByOrderID(r.Context(), orderID)
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "payment not found")
			return
		}
		h.logger.Error("Failed to get payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to get payment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// Update replaces a payment's fields
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid payment id")
		return
	}

	var req PaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Payment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	payment, err := h.paymentService.Update(r.Context(), id, service.PaymentInput{
		Method:    req.Method,
		Amount:    req.Amount,
		Status:    req.Status,
		Reference: req.Reference,
		PaidAt:    req.PaidAt,
	})
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "payment not found")
			return
		}
		h.logger.Error("Failed to update payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to update payment")
		return
	}

	h.logger.Info("Payment updated", zap.String("payment_id", payment.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// ChangeStatus patches only the payment status
func (h *PaymentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid payment id")
		return
	}

	var req PaymentStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	payment, err := h.paymentService.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "payment not found")
			return
		}
		h.logger.Error("Failed to change payment status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to change payment status")
		return
	}

	h.logger.Info("Payment status changed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", payment.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// Delete removes a payment record
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid payment id")
		return
	}

	if err := h.paymentService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "payment not found")
			return
		}
		h.logger.Error("Failed to delete payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to delete payment")
		return
	}

	h.logger.Info("Payment deleted", zap.String("payment_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "payment deleted"})
}
