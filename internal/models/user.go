// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username       string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email          string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string `json:"-" gorm:"size:255;not null"`
	FullName       string `json:"full_name" gorm:"size:100"`
	Phone          string `json:"phone" gorm:"size:20"`
	Address        string `json:"address" gorm:"type:text"`
	ProfilePicture string `json:"profile_picture" gorm:"size:255"`

	// ProfilePictureURL is derived from ProfilePicture at read time.
	ProfilePictureURL string `json:"profile_picture_url,omitempty" gorm:"-"`

	EmailVerifiedAt      *time.Time `json:"email_verified_at"`
	VerificationToken    string     `json:"-" gorm:"size:64;index"`
	ResetPasswordToken   string     `json:"-" gorm:"size:64;index"`
	ResetPasswordExpires *time.Time `json:"-"`
	LastLoginAt          *time.Time `json:"last_login_at"`

	// Relationships
	Products  []Product      `json:"products,omitempty" gorm:"foreignKey:SellerID"`
	Orders    []Order        `json:"orders,omitempty" gorm:"foreignKey:BuyerID"`
	Wishlists []WishlistItem `json:"wishlists,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
