// internal/handlers/product.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// ListProducts returns active products with optional search, category filter
// and sorting.
// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.SearchProducts(params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch products")
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GetProduct returns a single product by id.
// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		utils.InternalErrorResponse(c, "Failed to fetch product")
		return
	}

	utils.SuccessResponse(c, product)
}

// GetMyProducts returns the authenticated user's own listings.
// GET /api/products/mine
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	params := utils.GetPaginationParams(c)
	products, total, err := h.productService.GetSellerProducts(user.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch products")
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// CreateProduct creates a listing from a multipart form. Images arrive in the
// "images" file field.
// POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid form data", err.Error())
		return
	}

	files, ok := h.collectImageFiles(c, true)
	if !ok {
		return
	}

	keys, ok := h.saveImages(c, files)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(user.ID, &req, keys)
	if err != nil {
		// The row never existed, so the stored files are orphans.
		h.storageService.DeleteFiles(keys)
		switch {
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case strings.Contains(err.Error(), "image is required"):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, "Failed to create product")
		}
		return
	}

	utils.CreatedResponse(c, product)
}

// UpdateProduct merges form fields over the listing; new files in "images"
// are appended and keys listed in "delete_images" are removed.
// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid form data", err.Error())
		return
	}

	files, ok := h.collectImageFiles(c, false)
	if !ok {
		return
	}

	keys, ok := h.saveImages(c, files)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(id, user.ID, &req, keys)
	if err != nil {
		h.storageService.DeleteFiles(keys)
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product not found")
		case errors.Is(err, services.ErrNotProductOwner):
			utils.ForbiddenResponse(c, "You can only update your own products")
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case strings.Contains(err.Error(), "at least one image"):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, "Failed to update product")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Product updated successfully", product)
}

// DeleteProduct removes a listing and its stored images.
// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id, user.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product not found")
		case errors.Is(err, services.ErrNotProductOwner):
			utils.ForbiddenResponse(c, "You can only delete your own products")
		default:
			utils.InternalErrorResponse(c, "Failed to delete product")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Product deleted successfully", nil)
}

// collectImageFiles pulls the "images" files out of the multipart form and
// validates count, size, extension and content type. When required is false
// an absent form or empty field is fine.
func (h *ProductHandler) collectImageFiles(c *gin.Context, required bool) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		if !required {
			return nil, true
		}
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return nil, false
	}

	if unexpected := unexpectedFileField(form, "images"); unexpected != "" {
		utils.ErrorResponse(c, http.StatusBadRequest, services.UploadErrUnexpectedField,
			"Unexpected file field: "+unexpected, nil)
		return nil, false
	}

	files := form.File["images"]
	if len(files) == 0 {
		if !required {
			return nil, true
		}
		utils.BadRequestResponse(c, "At least one image is required", nil)
		return nil, false
	}

	if uploadErr := services.ValidateFiles(files, h.storageService.ProductUploadOptions()); uploadErr != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
		return nil, false
	}

	return files, true
}

// saveImages stores each validated file, rolling back the ones already
// written if a later one fails.
func (h *ProductHandler) saveImages(c *gin.Context, files []*multipart.FileHeader) ([]string, bool) {
	opts := h.storageService.ProductUploadOptions()
	keys := make([]string, 0, len(files))
	for _, file := range files {
		key, err := h.storageService.SaveFile(file, opts)
		if err != nil {
			h.storageService.DeleteFiles(keys)
			utils.InternalErrorResponse(c, "Failed to store uploaded image")
			return nil, false
		}
		keys = append(keys, key)
	}
	return keys, true
}
