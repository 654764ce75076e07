package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/samaraie/linktree-backend/internal/app/service"
	"github.com/samaraie/linktree-backend/pkg/util"
)

// ErrorInfo is what a failure becomes on the wire
type ErrorInfo struct {
	Status  int
	Code    string // see codes.go
	Message string
}

// ParseError maps service errors onto status, code and message. Login
// failures share one message so responses never reveal which check failed.
func ParseError(err error, context string) ErrorInfo {
	switch {
	case err == nil:
		return ErrorInfo{http.StatusInternalServerError, InternalServerError, getDefaultErrorMessage(context)}

	case errors.Is(err, service.ErrInvalidCredentials):
		return ErrorInfo{http.StatusUnauthorized, AuthInvalidCredentials, "Invalid email or password"}
	case errors.Is(err, util.ErrExpiredToken):
		return ErrorInfo{http.StatusUnauthorized, AuthTokenExpired, "Session has expired. Please log in again"}
	case errors.Is(err, util.ErrInvalidToken):
		return ErrorInfo{http.StatusUnauthorized, AuthTokenInvalid, "Invalid session token. Please log in again"}
	case errors.Is(err, service.ErrUserNotFound):
		return ErrorInfo{http.StatusNotFound, AuthUserNotFound, "User not found"}
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return ErrorInfo{http.StatusConflict, AuthEmailAlreadyExists, "Email is already in use"}

	case errors.Is(err, service.ErrTokenNotFound):
		return ErrorInfo{http.StatusBadRequest, ResetTokenNotFound, "Invalid reset token"}
	case errors.Is(err, service.ErrTokenAlreadyUsed):
		return ErrorInfo{http.StatusBadRequest, ResetTokenUsed, "Reset token has already been used"}
	case errors.Is(err, service.ErrTokenExpired):
		return ErrorInfo{http.StatusBadRequest, ResetTokenExpired, "Reset token has expired"}
	case errors.Is(err, service.ErrTokenEmailMismatch):
		return ErrorInfo{http.StatusBadRequest, ResetTokenEmailMismatch, "Reset token does not match this email"}

	case errors.Is(err, service.ErrWeakPassword):
		return ErrorInfo{http.StatusBadRequest, ValidationWeakPassword, err.Error()}
	case errors.Is(err, service.ErrPasswordTooLong):
		return ErrorInfo{http.StatusBadRequest, ValidationTooLong, "Password is too long"}
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidRole):
		return ErrorInfo{http.StatusBadRequest, ValidationInvalidInput, "Invalid input"}

	case errors.Is(err, service.ErrEmailDeliveryFailed):
		return ErrorInfo{http.StatusBadGateway, MailDeliveryFailed, "Failed to send reset email. Please try again"}
	case errors.Is(err, service.ErrStorageUnavailable), isConnectionError(err):
		return ErrorInfo{http.StatusServiceUnavailable, StorageUnavailable, "Service temporarily unavailable. Please try again later"}
	}

	return ErrorInfo{http.StatusInternalServerError, InternalServerError, getDefaultErrorMessage(context)}
}

func isConnectionError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "timeout")
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "login"):
		return "Login failed. Please try again later"
	case strings.Contains(contextLower, "reset"):
		return "Password reset failed. Please try again later"
	case strings.Contains(contextLower, "password"):
		return "Password update failed. Please try again later"
	}
	return "Something went wrong. Please try again later"
}
