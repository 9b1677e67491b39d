// internal/services/cart_service.go
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
	ErrCartItemNotFound  = errors.New("item not found in cart")
	ErrProductNotActive  = errors.New("product is not available")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
)

type CartService struct {
	db             *gorm.DB
	storageService *StorageService
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest carries the new line quantity. Zero or negative
// values remove the line, so the field carries no validation tag.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func NewCartService(db *gorm.DB, storageService *StorageService) *CartService {
	return &CartService{
		db:             db,
		storageService: storageService,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := s.db.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	for i := range cart.Items {
		cart.Items[i].Product.ImageURLs = s.storageService.URLs(cart.Items[i].Product.Images)
	}

	return &cart, nil
}

func (s *CartService) AddItem(userID uuid.UUID, req *AddToCartRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductNotActive
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&existing).Error
		switch {
		case err == nil:
			merged, mergeErr := mergeCartItem(existing, req.Quantity, product.Stock)
			if mergeErr != nil {
				return mergeErr
			}
			if err := tx.Save(&merged).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if req.Quantity > product.Stock {
				return ErrInsufficientStock
			}
			item := models.CartItem{
				CartID:    cart.ID,
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
				Price:     product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		default:
			return fmt.Errorf("database error: %w", err)
		}

		return s.recomputeTotal(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

func (s *CartService) UpdateItem(userID uuid.UUID, productID uuid.UUID, req *UpdateCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// A zero quantity removes the line entirely.
		if req.Quantity <= 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return fmt.Errorf("failed to remove cart item: %w", err)
			}
		} else {
			var product models.Product
			if err := tx.First(&product, productID).Error; err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if req.Quantity > product.Stock {
				return ErrInsufficientStock
			}
			item.Quantity = req.Quantity
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		}

		return s.recomputeTotal(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

func (s *CartService) RemoveItem(userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Delete(&models.CartItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove cart item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCartItemNotFound
		}
		return s.recomputeTotal(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// ClearCart drops every line from the user's cart. Checkout does not call
// this; the client clears the cart once payment has been initiated.
func (s *CartService) ClearCart(userID uuid.UUID) error {
	cart, err := s.GetCart(userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return s.recomputeTotal(tx, cart.ID)
	})
}

func (s *CartService) recomputeTotal(tx *gorm.DB, cartID uuid.UUID) error {
	var items []models.CartItem
	if err := tx.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}

	total := CartTotal(items)
	if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_amount", total).Error; err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}
	return nil
}

// mergeCartItem folds an additional quantity into an existing line. The price
// snapshot taken when the line was first added stays untouched.
func mergeCartItem(existing models.CartItem, addQty, stock int) (models.CartItem, error) {
	newQuantity := existing.Quantity + addQty
	if newQuantity > stock {
		return models.CartItem{}, ErrInsufficientStock
	}
	existing.Quantity = newQuantity
	return existing, nil
}

// CartTotal sums quantity times the price snapshot across all lines.
func CartTotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}
