// internal/handlers/payment.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

// Gateway notification payloads are small; anything bigger is noise.
const maxNotificationBody = 1 << 20

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CheckoutProduct opens a payment for a single product.
// POST /api/payment/create-transaction
func (h *PaymentHandler) CheckoutProduct(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.CheckoutProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.paymentService.CheckoutProduct(user, &req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	utils.CreatedResponse(c, resp)
}

// CheckoutCart opens one payment covering the whole cart, creating an order
// per seller.
// POST /api/payment/create-cart-transaction
func (h *PaymentHandler) CheckoutCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.CheckoutCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.paymentService.CheckoutCart(user, &req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	utils.CreatedResponse(c, resp)
}

// HandleNotification receives gateway webhooks. It is unauthenticated; the
// transaction status is re-verified against the gateway before anything
// changes. Always answers 200 for processable payloads so the gateway stops
// retrying.
// POST /api/payment/notification
func (h *PaymentHandler) HandleNotification(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxNotificationBody)

	var notification services.PaymentNotification
	if err := json.NewDecoder(c.Request.Body).Decode(&notification); err != nil {
		utils.BadRequestResponse(c, "Invalid notification payload", nil)
		return
	}

	if err := h.paymentService.HandleNotification(&notification); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownOrder):
			utils.NotFoundResponse(c, "No orders match this transaction")
		case errors.Is(err, services.ErrTransactionMixed):
			utils.BadRequestResponse(c, "Transaction could not be verified", nil)
		default:
			logrus.WithError(err).WithField("transaction_id", notification.OrderID).
				Error("payment notification processing failed")
			utils.InternalErrorResponse(c, "Failed to process notification")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Notification processed", nil)
}

func (h *PaymentHandler) respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "Product not found")
	case errors.Is(err, services.ErrProductNotActive):
		utils.BadRequestResponse(c, "Product is not available", nil)
	case errors.Is(err, services.ErrOwnProduct):
		utils.BadRequestResponse(c, "You cannot buy your own product", nil)
	case errors.Is(err, services.ErrInsufficientStock):
		utils.BadRequestResponse(c, "Requested quantity exceeds available stock", nil)
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, "Cart is empty", nil)
	case errors.Is(err, services.ErrPaymentGateway):
		utils.ErrorResponse(c, http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR",
			"Payment gateway request failed", nil)
	case strings.Contains(err.Error(), "validation failed"):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	default:
		utils.InternalErrorResponse(c, "Failed to start checkout")
	}
}
