// internal/handlers/order.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders returns the user's orders. ?role=seller switches to the orders
// received as a seller; ?status= filters, ?sort= orders the result.
// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	params := utils.GetPaginationParams(c)
	asSeller := c.Query("role") == "seller"

	orders, total, err := h.orderService.ListOrders(user.ID, asSeller, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch orders")
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GetOrder returns one order visible to the user as buyer or seller.
// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(id, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "Order not found")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch order")
		return
	}

	utils.SuccessResponse(c, order)
}

// GetStats aggregates the user's purchase history.
// GET /api/orders/stats
func (h *OrderHandler) GetStats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	stats, err := h.orderService.GetOrderStats(user.ID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch order statistics")
		return
	}

	utils.SuccessResponse(c, stats)
}

// CancelOrder cancels a pending order with a buyer-supplied reason.
// POST /api/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.CancelOrder(id, user.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order not found")
		case errors.Is(err, services.ErrOrderNotCancelable):
			utils.BadRequestResponse(c, "Only pending orders can be cancelled", nil)
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		default:
			utils.InternalErrorResponse(c, "Failed to cancel order")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Order cancelled", order)
}
