// internal/handlers/cart.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart returns the user's cart, creating it on first access.
// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	cart, err := h.cartService.GetCart(user.ID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch cart")
		return
	}

	utils.SuccessResponse(c, cart)
}

// AddItem adds a product to the cart, merging with an existing line.
// POST /api/cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	cart, err := h.cartService.AddItem(user.ID, &req)
	if err != nil {
		h.respondCartError(c, err, "Failed to add item to cart")
		return
	}

	utils.SuccessMessageResponse(c, "Item added to cart", cart)
}

// UpdateItem sets a line's quantity; zero removes the line.
// PUT /api/cart/update/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	cart, err := h.cartService.UpdateItem(user.ID, productID, &req)
	if err != nil {
		h.respondCartError(c, err, "Failed to update cart item")
		return
	}

	utils.SuccessMessageResponse(c, "Cart updated", cart)
}

// RemoveItem deletes a line from the cart.
// DELETE /api/cart/remove/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(user.ID, productID)
	if err != nil {
		h.respondCartError(c, err, "Failed to remove cart item")
		return
	}

	utils.SuccessMessageResponse(c, "Item removed from cart", cart)
}

// ClearCart empties the cart.
// DELETE /api/cart/clear
func (h *CartHandler) ClearCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	if err := h.cartService.ClearCart(user.ID); err != nil {
		utils.InternalErrorResponse(c, "Failed to clear cart")
		return
	}

	utils.SuccessMessageResponse(c, "Cart cleared", nil)
}

func (h *CartHandler) respondCartError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "Product not found")
	case errors.Is(err, services.ErrCartItemNotFound):
		utils.NotFoundResponse(c, "Item not found in cart")
	case errors.Is(err, services.ErrProductNotActive):
		utils.BadRequestResponse(c, "Product is not available", nil)
	case errors.Is(err, services.ErrInsufficientStock):
		utils.BadRequestResponse(c, "Requested quantity exceeds available stock", nil)
	case strings.Contains(err.Error(), "validation failed"):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	default:
		utils.InternalErrorResponse(c, fallback)
	}
}
