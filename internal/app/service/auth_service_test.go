package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_CreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     model.UserRole
		wantErr  error
	}{
		{name: "Valid admin", email: "Admin@Example.com", password: "password123", role: model.RoleAdmin},
		{name: "Duplicate email", email: "admin@example.com", password: "password456", role: model.RoleAdmin, wantErr: ErrEmailAlreadyExists},
		{name: "Weak password", email: "new@example.com", password: "short", role: model.RoleEditor, wantErr: ErrWeakPassword},
		{name: "Invalid role", email: "new@example.com", password: "password123", role: "owner", wantErr: ErrInvalidRole},
		{name: "Empty email", email: " ", password: "password123", role: model.RoleAdmin, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.auth.CreateUser(ctx, tt.email, tt.password, "Test", tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.Equal(t, "admin@example.com", user.Email)
			assert.True(t, user.IsActive)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "a@x.com", "password123")

	desc, err := f.auth.Login(ctx, "A@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, &UserDescriptor{ID: user.ID, Email: "a@x.com", Name: "Test Admin", Role: model.RoleAdmin}, desc)

	stored, err := f.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(f.clock.Now()))
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "a@x.com", "password123")
	inactive := f.createUser(t, "off@x.com", "password123")
	f.store.SetActive(inactive.ID, false)

	_, wrongPassword := f.auth.Login(ctx, "a@x.com", "wrongpassword")
	_, unknownEmail := f.auth.Login(ctx, "nobody@x.com", "password123")
	_, inactiveUser := f.auth.Login(ctx, "off@x.com", "password123")

	for _, err := range []error{wrongPassword, unknownEmail, inactiveUser} {
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), err.Error())
	}
}

func TestAuthService_LoginLegacyDigest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("legacyPass1"))
	require.NoError(t, f.store.Users().Create(ctx, &model.AdminUser{
		Email:        "old@x.com",
		PasswordHash: hex.EncodeToString(sum[:]),
		Name:         "Old",
		Role:         model.RoleEditor,
		IsActive:     true,
	}))

	desc, err := f.auth.Login(ctx, "old@x.com", "legacyPass1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, desc.Role)

	_, err = f.auth.Login(ctx, "old@x.com", "legacyPass2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_IssueTokens(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "a@x.com", "password123")

	tokens, err := f.auth.IssueTokens(describe(user))
	require.NoError(t, err)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), tokens.ExpiresIn)

	claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthService_GetUserByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "a@x.com", "password123")

	desc, err := f.auth.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", desc.Email)

	_, err = f.auth.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	f.store.SetActive(user.ID, false)
	_, err = f.auth.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "a@x.com", "password123")

	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{name: "Weak new password", current: "password123", next: "short", wantErr: ErrWeakPassword},
		{name: "Wrong current password", current: "nope12345", next: "newpassword1", wantErr: ErrInvalidCredentials},
		{name: "Valid change", current: "password123", next: "newpassword1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.auth.ChangePassword(ctx, user.ID, tt.current, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	_, err := f.auth.Login(ctx, "a@x.com", "newpassword1")
	assert.NoError(t, err)
	_, err = f.auth.Login(ctx, "a@x.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, f.auth.ChangePassword(ctx, 999, "x", "newpassword1"), ErrUserNotFound)
}

func TestAuthService_RefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "a@x.com", "password123")

	tokens, err := f.auth.IssueTokens(describe(user))
	require.NoError(t, err)

	refreshed, err := f.auth.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.auth.RefreshToken(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	_, err = f.auth.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	f.store.SetActive(user.ID, false)
	_, err = f.auth.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}
