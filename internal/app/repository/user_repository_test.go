package repository

import (
	"context"
	"testing"
	"time"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewUserRepository(testDB)
}

func newAdmin(email string, active bool) *model.AdminUser {
	return &model.AdminUser{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Test Admin",
		Role:         model.RoleAdmin,
		IsActive:     active,
	}
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *model.AdminUser
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    newAdmin("test@example.com", true),
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    newAdmin("test@example.com", true),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_InactivePersists(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newAdmin("off@example.com", false)
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestUserRepository_FindActiveByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAdmin("on@example.com", true)))
	require.NoError(t, repo.Create(ctx, newAdmin("off@example.com", false)))

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "Active user", email: "on@example.com"},
		{name: "Inactive user", email: "off@example.com", wantErr: ErrNotFound},
		{name: "Unknown user", email: "nobody@example.com", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindActiveByEmail(ctx, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
		})
	}

	user, err := repo.FindByEmail(ctx, "off@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	_, repo := setupUserTest(t)

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	active := newAdmin("on@example.com", true)
	inactive := newAdmin("off@example.com", false)
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, inactive))

	require.NoError(t, repo.UpdatePasswordHash(ctx, active.ID, "newhash"))
	found, err := repo.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, inactive.ID, "newhash"), ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, 999, "newhash"), ErrNotFound)

	found, err = repo.FindByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashedpassword", found.PasswordHash)
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newAdmin("on@example.com", true)
	require.NoError(t, repo.Create(ctx, user))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLogin)
	assert.True(t, at.Equal(*found.LastLogin))

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, 999, at), ErrNotFound)
}
