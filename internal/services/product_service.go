// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/models"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotProductOwner = errors.New("not the owner of this product")
)

type ProductService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreateProductRequest struct {
	Name        string                  `form:"name" validate:"required,min=3,max=255"`
	Description string                  `form:"description"`
	Price       float64                 `form:"price" validate:"min=0"`
	Category    string                  `form:"category" validate:"required"`
	Stock       int                     `form:"stock" validate:"omitempty,min=0"`
	Condition   models.ProductCondition `form:"condition" validate:"required,oneof=new used"`
	Type        models.ListingType      `form:"type" validate:"required,oneof=Sell Donation Swap"`
}

// UpdateProductRequest merges provided fields over the existing product.
// Pointer fields distinguish "absent" from an explicit zero so price and
// stock can be set to 0; empty strings leave a field unchanged.
type UpdateProductRequest struct {
	Name         string                  `form:"name" validate:"omitempty,min=3,max=255"`
	Description  string                  `form:"description"`
	Price        *float64                `form:"price" validate:"omitempty,min=0"`
	Category     string                  `form:"category"`
	Stock        *int                    `form:"stock" validate:"omitempty,min=0"`
	Condition    models.ProductCondition `form:"condition" validate:"omitempty,oneof=new used"`
	Type         models.ListingType      `form:"type" validate:"omitempty,oneof=Sell Donation Swap"`
	Status       models.ProductStatus    `form:"status" validate:"omitempty,oneof=active sold inactive"`
	DeleteImages []string                `form:"delete_images"`
}

func NewProductService(db *gorm.DB, storageService *StorageService) *ProductService {
	return &ProductService{
		db:             db,
		storageService: storageService,
	}
}

func (s *ProductService) CreateProduct(sellerID uuid.UUID, req *CreateProductRequest, imageKeys []string) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if len(imageKeys) == 0 {
		return nil, errors.New("at least one product image is required")
	}

	stock := req.Stock
	if stock == 0 {
		stock = 1
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Images:      imageKeys,
		Stock:       stock,
		Condition:   req.Condition,
		Type:        req.Type,
		Status:      models.ProductStatusActive,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.db.Preload("Seller").First(product, product.ID)
	s.attachImageURLs(product)

	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Seller").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.attachImageURLs(&product)
	return &product, nil
}

// productSortMap translates API sort keys to ORDER BY clauses.
var productSortMap = map[string]string{
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"newest":     "created_at DESC",
}

func (s *ProductService) SearchProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Seller").
		Where("status = ?", models.ProductStatusActive)

	if params.Category != "" {
		query = query.Where("category ILIKE ?", "%"+params.Category+"%")
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.Sort, productSortMap)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	for i := range products {
		s.attachImageURLs(&products[i])
	}

	return products, total, nil
}

func (s *ProductService) GetSellerProducts(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.Sort, productSortMap)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	for i := range products {
		s.attachImageURLs(&products[i])
	}

	return products, total, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, sellerID uuid.UUID, req *UpdateProductRequest, newImageKeys []string) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.SellerID != sellerID {
		return nil, ErrNotProductOwner
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Condition != "" {
		updates["condition"] = req.Condition
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	images, removed := reviseImages(product.Images, req.DeleteImages, newImageKeys)
	if len(images) == 0 {
		return nil, errors.New("a product must keep at least one image")
	}
	if len(removed) > 0 || len(newImageKeys) > 0 {
		updates["images"] = pq.StringArray(images)
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Remove files only after the row no longer references them.
	s.storageService.DeleteFiles(removed)

	s.db.Preload("Seller").First(&product, id)
	s.attachImageURLs(&product)

	return &product, nil
}

func (s *ProductService) DeleteProduct(id uuid.UUID, sellerID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if product.SellerID != sellerID {
		return ErrNotProductOwner
	}

	s.storageService.DeleteFiles(product.Images)

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// reviseImages removes the requested keys from the existing list, appends new
// keys and reports which existing keys were actually removed.
func reviseImages(existing []string, toDelete []string, toAdd []string) ([]string, []string) {
	deleteSet := make(map[string]bool, len(toDelete))
	for _, key := range toDelete {
		deleteSet[key] = true
	}

	kept := make([]string, 0, len(existing)+len(toAdd))
	var removed []string
	for _, key := range existing {
		if deleteSet[key] {
			removed = append(removed, key)
			continue
		}
		kept = append(kept, key)
	}

	kept = append(kept, toAdd...)
	return kept, removed
}

func (s *ProductService) attachImageURLs(product *models.Product) {
	product.ImageURLs = s.storageService.URLs(product.Images)
}
