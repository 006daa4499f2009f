package transport

import (
	"net/http"

	"cafe-orders/internal/middleware"
	"cafe-orders/internal/repository"
	"cafe-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReleaseStockRequest represents the stock release payload
type ReleaseStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// InventoryHandler exposes the explicit stock release operation used by
// operators when a cancelled or reworked order should return its units.
type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers the inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Post("/release", h.Release)
	})
}

// Release returns units to a product's stock
func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req ReleaseStockRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Release validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	if err := h.inventoryService.Release(r.Context(), req.ProductID, req.Quantity); err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "product not found")
		case service.ErrInvalidQuantity:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, err.Error())
		default:
			h.logger.Error("Failed to release stock", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to release stock")
		}
		return
	}

	h.logger.Info("Stock released",
		zap.String("product_id", req.ProductID.String()),
		zap.Int("quantity", req.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "stock released"})
}
