// internal/handlers/wishlist.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
}

func NewWishlistHandler(wishlistService *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// GetWishlist lists the user's saved products, newest first.
// GET /api/wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	params := utils.GetPaginationParams(c)
	items, total, err := h.wishlistService.GetWishlist(user.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch wishlist")
		return
	}

	result := utils.CreatePaginationResult(items, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// AddItem saves a product to the wishlist.
// POST /api/wishlist/:productId
func (h *WishlistHandler) AddItem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	item, err := h.wishlistService.AddItem(user.ID, productID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product not found")
		case errors.Is(err, services.ErrAlreadyInWishlist):
			utils.ConflictResponse(c, "Product already in wishlist")
		default:
			utils.InternalErrorResponse(c, "Failed to add product to wishlist")
		}
		return
	}

	utils.CreatedResponse(c, item)
}

// RemoveItem drops a product from the wishlist.
// DELETE /api/wishlist/:productId
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.wishlistService.RemoveItem(user.ID, productID); err != nil {
		if errors.Is(err, services.ErrWishlistItemAbsent) {
			utils.NotFoundResponse(c, "Product not in wishlist")
			return
		}
		utils.InternalErrorResponse(c, "Failed to remove product from wishlist")
		return
	}

	utils.SuccessMessageResponse(c, "Product removed from wishlist", nil)
}

// CheckItem reports whether a product is on the user's wishlist.
// GET /api/wishlist/check/:productId
func (h *WishlistHandler) CheckItem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	inWishlist, err := h.wishlistService.Contains(user.ID, productID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to check wishlist")
		return
	}

	utils.SuccessResponse(c, gin.H{"in_wishlist": inWishlist})
}
