// internal/handlers/auth.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lokapasar/lokapasar-backend/internal/services"
	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and sends a verification email.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case strings.Contains(err.Error(), "already"):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, "Failed to register user")
		}
		return
	}

	utils.CreatedResponse(c, resp)
}

// Login authenticates by email and password.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case strings.Contains(err.Error(), "invalid email or password"):
			utils.UnauthorizedResponse(c, "Invalid email or password")
		default:
			utils.InternalErrorResponse(c, "Failed to log in")
		}
		return
	}

	utils.SuccessResponse(c, resp)
}

// Refresh exchanges a refresh token for a new token pair.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "refresh_token is required", nil)
		return
	}

	resp, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid refresh token")
		return
	}

	utils.SuccessResponse(c, resp)
}

// VerifyEmail confirms the address behind a verification token.
// GET /api/auth/verify-email/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.BadRequestResponse(c, "token is required", nil)
		return
	}

	if err := h.authService.VerifyEmail(token); err != nil {
		switch {
		case strings.Contains(err.Error(), "already verified"):
			utils.ConflictResponse(c, err.Error())
		case strings.Contains(err.Error(), "invalid"):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, "Failed to verify email")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Email verified successfully", nil)
}

// ResendVerification sends a fresh verification email.
// POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req services.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.authService.ResendVerification(&req); err != nil {
		if strings.Contains(err.Error(), "already verified") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, "Failed to resend verification email")
		return
	}

	utils.SuccessMessageResponse(c, "Verification email sent", nil)
}

// ForgotPassword starts a password reset. Always answers 200 so account
// existence is not leaked.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.authService.ForgotPassword(&req); err != nil {
		utils.InternalErrorResponse(c, "Failed to process request")
		return
	}

	utils.SuccessMessageResponse(c, "If the email exists, a reset link has been sent", nil)
}

// ResetPassword sets a new password using a reset token.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		switch {
		case strings.Contains(err.Error(), "validation failed"):
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		case strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "expired"):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, "Failed to reset password")
		}
		return
	}

	utils.SuccessMessageResponse(c, "Password reset successfully", nil)
}
