// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/models"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

var (
	ErrAlreadyInWishlist  = errors.New("product already in wishlist")
	ErrWishlistItemAbsent = errors.New("product not in wishlist")
)

type WishlistService struct {
	db             *gorm.DB
	storageService *StorageService
}

func NewWishlistService(db *gorm.DB, storageService *StorageService) *WishlistService {
	return &WishlistService{
		db:             db,
		storageService: storageService,
	}
}

func (s *WishlistService) GetWishlist(userID uuid.UUID, params utils.PaginationParams) ([]models.WishlistItem, int64, error) {
	query := s.db.Model(&models.WishlistItem{}).
		Preload("Product").Preload("Product.Seller").
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var items []models.WishlistItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch wishlist: %w", err)
	}

	for i := range items {
		items[i].Product.ImageURLs = s.storageService.URLs(items[i].Product.Images)
	}

	return items, total, nil
}

func (s *WishlistService) AddItem(userID uuid.UUID, productID uuid.UUID) (*models.WishlistItem, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyInWishlist
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	item := &models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	s.db.Preload("Product").Preload("Product.Seller").First(item, item.ID)
	item.Product.ImageURLs = s.storageService.URLs(item.Product.Images)

	return item, nil
}

func (s *WishlistService) RemoveItem(userID uuid.UUID, productID uuid.UUID) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWishlistItemAbsent
	}
	return nil
}

// Contains reports whether the product is on the user's wishlist.
func (s *WishlistService) Contains(userID uuid.UUID, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}
