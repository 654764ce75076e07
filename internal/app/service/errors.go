package service

import (
	"errors"
	"fmt"

	"github.com/samaraie/linktree-backend/pkg/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRole        = errors.New("invalid role")

	ErrTokenNotFound      = errors.New("reset token not found")
	ErrTokenAlreadyUsed   = errors.New("reset token has already been used")
	ErrTokenExpired       = errors.New("reset token has expired")
	ErrTokenEmailMismatch = errors.New("reset token does not belong to this email")

	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong     = util.ErrPasswordTooLong
	ErrEmailDeliveryFailed = errors.New("failed to deliver e-mail")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// outcomeLabel names an error for metrics labels.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, ErrTokenAlreadyUsed):
		return "token_used"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenEmailMismatch):
		return "email_mismatch"
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrPasswordTooLong), errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrEmailDeliveryFailed):
		return "mail_failed"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "error"
	}
}
