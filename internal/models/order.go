// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	BuyerID  uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`

	// Single-product checkout fills ProductID/Quantity; cart checkout fills Items.
	ProductID *uuid.UUID  `json:"product_id,omitempty" gorm:"type:uuid;index"`
	Quantity  int         `json:"quantity,omitempty"`
	Items     []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	TotalAmount float64     `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Gateway transaction id shared by every order created in one checkout.
	TransactionID string `json:"transaction_id" gorm:"size:64;index"`
	PaymentToken  string `json:"payment_token,omitempty" gorm:"size:255"`

	ShippingAddress JSONB      `json:"shipping_address,omitempty" gorm:"type:jsonb"`
	CancelReason    string     `json:"cancel_reason,omitempty" gorm:"type:text"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	// Relationships
	Buyer   User     `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
