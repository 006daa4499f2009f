package transport

import (
	"errors"
	"net/http"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/middleware"
	"cafe-orders/internal/repository"
	"cafe-orders/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one product/quantity line in an order request
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest represents the order placement payload. CustomerID
// is only honored for admins; customers always order for themselves.
type CreateOrderRequest struct {
	CustomerID *uuid.UUID         `json:"customer_id"`
	Phone      string             `json:"phone"`
	Address    string             `json:"address"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest represents the full order update payload
type UpdateOrderRequest struct {
	OrderDate string `json:"order_date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// ChangeStatusRequest represents the status patch payload
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse wraps an order with its computed total
type OrderResponse struct {
	*domain.Order
	Total string `json:"total"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{Order: order, Total: order.Total().StringFixed(2)}
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = toOrderResponse(order)
	}
	return out
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, rateLimitMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/order-statuses", h.ListStatuses)

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(rateLimitMiddleware).Post("/", h.Create)
		r.Get("/mine", h.ListMine)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Get("/", h.List)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}/status", h.ChangeStatus)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// ListStatuses returns the ordered catalog of order lifecycle states
func (h *OrderHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, domain.OrderStatuses())
}

// Create places an order. Stock is reserved for every line or for none;
// a shortfall on any product rejects the whole order with the per-item
// detail.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	customerID := userID
	role, _ := middleware.GetUserRole(r.Context())
	if req.CustomerID != nil && role == domain.RoleAdmin {
		customerID = *req.CustomerID
	}

	items := make([]service.ItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := h.orderService.Create(r.Context(), customerID, req.Phone, req.Address, items)
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			middleware.RespondWithErrorDetails(w, http.StatusConflict, middleware.CodeInsufficientStock, stockErr.Error(), map[string]interface{}{
				"product_id": stockErr.ProductID.String(),
				"product":    stockErr.ProductName,
				"available":  stockErr.Available,
				"requested":  stockErr.Requested,
			})
		case err == service.ErrCustomerNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "customer not found")
		case err == repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "product not found")
		case err == service.ErrNoItems || err == service.ErrInvalidQuantity:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, err.Error())
		default:
			h.logger.Error("Failed to create order", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to create order")
		}
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toOrderResponse(order))
}

// List returns the whole order ledger
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponses(orders))
}

// ListMine returns the authenticated customer's own orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.FindByCustomer(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list customer orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponses(orders))
}

// GetByID returns one order. Customers may only read their own orders;
// a foreign order id comes back as not found rather than forbidden.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	order, err := h.orderService.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to get order")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	role, _ := middleware.GetUserRole(r.Context())
	if role != domain.RoleAdmin && order.CustomerID != userID {
		middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// Update replaces an order's mutable fields
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	var req UpdateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	orderDate, err := parseDate(req.OrderDate)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order date")
		return
	}

	order, err := h.orderService.Update(r.Context(), id, service.OrderUpdate{
		OrderDate: orderDate,
		Status:    domain.OrderStatus(req.Status),
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		switch err {
		case repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
		case service.ErrInvalidStatus:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "unknown order status")
		default:
			h.logger.Error("Failed to update order", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to update order")
		}
		return
	}

	h.logger.Info("Order updated", zap.String("order_id", order.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// ChangeStatus moves an order through its lifecycle
func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	var req ChangeStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Status validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid request body")
		return
	}

	order, err := h.orderService.ChangeStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		switch err {
		case repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
		case service.ErrInvalidStatus:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "unknown order status")
		case service.ErrTerminalStatus:
			middleware.RespondWithError(w, http.StatusConflict, middleware.CodeConflict, "order is in a terminal status")
		default:
			h.logger.Error("Failed to change order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to change order status")
		}
		return
	}

	h.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// Delete removes an order and everything it owns
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidationFailure, "invalid order id")
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to delete order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeUnexpected, "failed to delete order")
		return
	}

	h.logger.Info("Order deleted", zap.String("order_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
