// internal/models/wishlist.go
package models

import (
	"github.com/google/uuid"
)

// WishlistItem links a user to a saved product. The (user, product) pair is
// unique; duplicates are also rejected at the application level so the API can
// return a conflict instead of a bare database error.
type WishlistItem struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_wishlist_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_wishlist_user_product"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
