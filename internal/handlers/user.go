// internal/handlers/user.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lokapasar/lokapasar-backend/internal/middleware"
	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the authenticated user's profile.
// GET /api/auth/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	profile, err := h.userService.GetProfile(user.ID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load profile")
		return
	}

	utils.SuccessResponse(c, profile)
}

// UpdateProfile merges the provided fields into the profile.
// PUT /api/auth/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(user.ID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
			return
		}
		utils.InternalErrorResponse(c, "Failed to update profile")
		return
	}

	utils.SuccessMessageResponse(c, "Profile updated successfully", profile)
}

// ChangePassword verifies the current password before setting a new one.
// PUT /api/auth/profile/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.userService.ChangePassword(user.ID, &req); err != nil {
		switch {
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case strings.Contains(err.Error(), "current password is incorrect"):
			utils.BadRequestResponse(c, "Current password is incorrect", nil)
		default:
			utils.InternalErrorResponse(c, "Failed to change password")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Password changed successfully", nil)
}

// UploadProfilePicture replaces the profile picture from a multipart form
// with a single "picture" file field.
// POST /api/auth/profile/picture
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	if unexpected := unexpectedFileField(form, "picture"); unexpected != "" {
		utils.ErrorResponse(c, http.StatusBadRequest, services.UploadErrUnexpectedField,
			"Unexpected file field: "+unexpected, nil)
		return
	}

	files := form.File["picture"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "picture file is required", nil)
		return
	}
	if len(files) > 1 {
		utils.ErrorResponse(c, http.StatusBadRequest, services.UploadErrTooManyFiles,
			"Only one profile picture can be uploaded", nil)
		return
	}

	profile, err := h.userService.SetProfilePicture(user.ID, files[0])
	if err != nil {
		var uploadErr *services.UploadError
		if errors.As(err, &uploadErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
			return
		}
		utils.InternalErrorResponse(c, "Failed to upload profile picture")
		return
	}

	utils.SuccessMessageResponse(c, "Profile picture updated", profile)
}
