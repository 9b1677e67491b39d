// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	SellerID    uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(12,2);not null"`
	Category    string    `json:"category" gorm:"size:100;index"`

	// Relative upload keys; display URLs are derived at read time.
	Images    pq.StringArray `json:"images" gorm:"type:text[]"`
	ImageURLs []string       `json:"image_urls,omitempty" gorm:"-"`

	Stock     int              `json:"stock" gorm:"default:1"`
	Condition ProductCondition `json:"condition" gorm:"type:varchar(10);not null"`
	Type      ListingType      `json:"type" gorm:"type:varchar(10);not null;default:'Sell'"`
	Status    ProductStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`

	// Relationships
	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
