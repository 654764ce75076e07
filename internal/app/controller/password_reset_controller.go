package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samaraie/linktree-backend/internal/app/service"
	apperrors "github.com/samaraie/linktree-backend/internal/errors"
	"github.com/samaraie/linktree-backend/internal/middleware"
)

type PasswordResetController struct {
	resetService service.PasswordResetService
}

func NewPasswordResetController(resetService service.PasswordResetService) *PasswordResetController {
	return &PasswordResetController{
		resetService: resetService,
	}
}

type RequestResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type CompleteResetRequest struct {
	Email       string `json:"email" binding:"required"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword"`
}

// ValidateTokenResponse tells the reset page whether to show the form
type ValidateTokenResponse struct {
	Valid   bool   `json:"valid"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// RequestReset answers the same way whether or not the account exists
// POST /api/v1/auth/reset/request
func (ctrl *PasswordResetController) RequestReset(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email is required")
		return
	}

	if err := ctrl.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		log.Error("Failed to process password reset request", err)
		apperrors.Respond(c, err, "reset request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If an account exists for this email, a password reset link has been sent",
	})
}

// ValidateToken checks a token without consuming it
// POST /api/v1/auth/reset/validate
func (ctrl *PasswordResetController) ValidateToken(c *gin.Context) {
	var req ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ValidateTokenResponse{
			Valid:   false,
			Error:   apperrors.ValidationInvalidInput,
			Message: "Token is required",
		})
		return
	}

	email, err := ctrl.resetService.ValidateToken(c.Request.Context(), req.Token)
	if err != nil {
		info := apperrors.ParseError(err, "reset validate")
		c.JSON(info.Status, ValidateTokenResponse{
			Valid:   false,
			Error:   info.Code,
			Message: info.Message,
		})
		return
	}

	c.JSON(http.StatusOK, ValidateTokenResponse{
		Valid: true,
		Email: email,
	})
}

// CompleteReset consumes the token and sets the new password
// POST /api/v1/auth/reset/complete
func (ctrl *PasswordResetController) CompleteReset(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CompleteResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset completion request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and token are required")
		return
	}

	if err := ctrl.resetService.ResetPassword(c.Request.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		apperrors.Respond(c, err, "reset complete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successful",
	})
}
