package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/samaraie/linktree-backend/internal/app/service"
	"github.com/samaraie/linktree-backend/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"Invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, AuthInvalidCredentials},
		{"Token not found", service.ErrTokenNotFound, http.StatusBadRequest, ResetTokenNotFound},
		{"Token used", service.ErrTokenAlreadyUsed, http.StatusBadRequest, ResetTokenUsed},
		{"Token expired", service.ErrTokenExpired, http.StatusBadRequest, ResetTokenExpired},
		{"Email mismatch", service.ErrTokenEmailMismatch, http.StatusBadRequest, ResetTokenEmailMismatch},
		{"Weak password", service.ErrWeakPassword, http.StatusBadRequest, ValidationWeakPassword},
		{"Mail failure", fmt.Errorf("%w: %w", service.ErrEmailDeliveryFailed, errors.New("relay")), http.StatusBadGateway, MailDeliveryFailed},
		{"Wrapped storage failure", fmt.Errorf("%w: %w", service.ErrStorageUnavailable, errors.New("db")), http.StatusServiceUnavailable, StorageUnavailable},
		{"Raw connection error", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, StorageUnavailable},
		{"Expired session", util.ErrExpiredToken, http.StatusUnauthorized, AuthTokenExpired},
		{"Invalid session", util.ErrInvalidToken, http.StatusUnauthorized, AuthTokenInvalid},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, InternalServerError},
		{"Nil", nil, http.StatusInternalServerError, InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, "reset")
			assert.Equal(t, tt.wantStatus, info.Status)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_CauseNotLeaked(t *testing.T) {
	info := ParseError(fmt.Errorf("%w: %w", service.ErrStorageUnavailable, errors.New("password=hunter2")), "login")
	assert.NotContains(t, info.Message, "hunter2")
}
