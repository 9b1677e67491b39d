// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lokapasar/lokapasar-backend/internal/models"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

func TestUpdateCartItemRequestAllowsNegativeQuantity(t *testing.T) {
	// Zero and negative quantities mean "remove the line" and must reach the
	// service instead of being rejected up front.
	assert.NoError(t, utils.ValidateStruct(&UpdateCartItemRequest{Quantity: -1}))
	assert.NoError(t, utils.ValidateStruct(&UpdateCartItemRequest{Quantity: 0}))
}

func TestMergeCartItemKeepsPriceSnapshot(t *testing.T) {
	existing := models.CartItem{Quantity: 1, Price: 80}

	merged, err := mergeCartItem(existing, 2, 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, merged.Quantity)
	assert.Equal(t, 80.0, merged.Price)
}

func TestMergeCartItemInsufficientStock(t *testing.T) {
	existing := models.CartItem{Quantity: 4, Price: 80}

	_, err := mergeCartItem(existing, 2, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartTotal(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 2, Price: 100},
		{Quantity: 1, Price: 49.5},
		{Quantity: 3, Price: 10},
	}

	assert.Equal(t, 279.5, CartTotal(items))
}

func TestCartTotalEmpty(t *testing.T) {
	assert.Equal(t, 0.0, CartTotal(nil))
	assert.Equal(t, 0.0, CartTotal([]models.CartItem{}))
}
