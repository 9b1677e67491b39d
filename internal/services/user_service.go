// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/models"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type UserService struct {
	db             *gorm.DB
	storageService *StorageService
}

// UpdateProfileRequest merges provided fields over the existing profile;
// empty strings leave a field unchanged.
type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address  string `json:"address,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

func NewUserService(db *gorm.DB, storageService *StorageService) *UserService {
	return &UserService{
		db:             db,
		storageService: storageService,
	}
}

func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.ProfilePicture != "" {
		user.ProfilePictureURL = s.storageService.URL(user.ProfilePicture)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return user, nil
}

func (s *UserService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// SetProfilePicture stores the uploaded picture, records its relative key and
// removes the previous file best-effort.
func (s *UserService) SetProfilePicture(userID uuid.UUID, header *multipart.FileHeader) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	opts := s.storageService.ProfileUploadOptions()
	if uploadErr := ValidateFile(header, opts); uploadErr != nil {
		return nil, uploadErr
	}

	key, err := s.storageService.SaveFile(header, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	previous := user.ProfilePicture
	user.ProfilePicture = key
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}
	user.ProfilePictureURL = s.storageService.URL(key)

	if previous != "" {
		if err := s.storageService.DeleteFile(previous); err != nil {
			logrus.WithError(err).WithField("key", previous).Warn("Failed to delete previous profile picture")
		}
	}

	return user, nil
}
