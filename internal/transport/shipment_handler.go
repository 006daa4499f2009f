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

// ShipmentRequest represents the create/update shipment payload
type ShipmentRequest struct {
	Method         string          `json:"method" validate:"required"`
	Status         string          `json:"status" validate:"required"`
	TrackingNumber string          `json:"tracking_number"`
	ShippedAt      *time.Time      `json:"shipped_at"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
	Address        string          `json:"address" validate:"required"`
	Region         string          `json:"region"`
	Province       string          `json:"province"`
	District       string          `json:"district"`
	Cost           decimal.Decimal `json:"cost"`
}

// ShipmentStatusRequest represents the shipment status patch payload
type ShipmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ShipmentHandler handles HTTP requests for shipment operations
type ShipmentHandler struct {
	shipmentService service.ShipmentService
	logger          *zap.Logger
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService service.ShipmentService, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
		logger:          logger,
	}
}

// RegisterRoutes registers all shipment routes, mirroring the payment
// layout: order-scoped create/lookup, id-scoped mutations.
func (h *ShipmentHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders/{orderID}/shipment", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.GetByOrder)
	})

	r.Route("/api/shipments/{id}", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Put("/", h.Update)
		r.Patch("/status", h.ChangeStatus)
		r.Delete("/", h.Delete)
	})
}

// Create attaches a shipment to an order
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	var req ShipmentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Shipment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	shipment, err := h.shipmentService.Create(r.Context(), orderID, shipmentInput(req))
	if err != nil {
		switch err {
		case repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
		case repository.ErrShipmentAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, middleware.CodeConflict, "order already has a shipment")
		default:
			h.logger.Error("Failed to create shipment", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to create shipment")
		}
		return
	}

	h.logger.Info("Shipment created",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("order_id", orderID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, shipment)
}

// GetByOrder returns the shipment owned by an order
func (h *ShipmentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	shipment, err := h.shipmentService.FindByOrderID(r.Context(), orderID)
	if err != nil {
		if err == repository.ErrShipmentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "shipment not found")
			return
		}
		h.logger.Error("Failed to get shipment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to get shipment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, shipment)
}

// Update replaces a shipment's fields
func (h *ShipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid shipment id")
		return
	}

	var req ShipmentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Shipment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	shipment, err := h.shipmentService.Update(r.Context(), id, shipmentInput(req))
	if err != nil {
		if err == repository.ErrShipmentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "shipment not found")
			return
		}
		h.logger.Error("Failed to update shipment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to update shipment")
		return
	}

	h.logger.Info("Shipment updated", zap.String("shipment_id", shipment.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, shipment)
}

// ChangeStatus patches only the shipment status
func (h *ShipmentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid shipment id")
		return
	}

	var req ShipmentStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	shipment, err := h.shipmentService.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		if err == repository.ErrShipmentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "shipment not found")
			return
		}
		h.logger.Error("Failed to change shipment status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to change shipment status")
		return
	}

	h.logger.Info("Shipment status changed",
		zap.String("shipment_id", shipment.ID.String()),
		zap.String("status", shipment.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, shipment)
}

// Delete removes a shipment record
func (h *ShipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid shipment id")
		return
	}

	if err := h.shipmentService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrShipmentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "shipment not found")
			return
		}
		h.logger.Error("Failed to delete shipment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to delete shipment")
		return
	}

	h.logger.Info("Shipment deleted", zap.String("shipment_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "shipment deleted"})
}

func shipmentInput(req ShipmentRequest) service.ShipmentInput {
	return service.ShipmentInput{
		Method:         req.Method,
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		ShippedAt:      req.ShippedAt,
		DeliveredAt:    req.DeliveredAt,
		Address:        req.Address,
		Region:         req.Region,
		Province:       req.Province,
		District:       req.District,
		Cost:           req.Cost,
	}
}
