package repository

import (
	"context"
	"errors"
	"time"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.AdminUser) error
	FindByID(ctx context.Context, id uint) (*model.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	FindActiveByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.AdminUser) error {
	logger.Debug("Creating admin user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		logger.Error("Failed to create admin user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("Admin user created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "Failed to find admin user by ID in database", map[string]interface{}{
			"user_id": id,
		})
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "Failed to find admin user by email in database", map[string]interface{}{
			"email": email,
		})
	}
	return &user, nil
}

func (r *userRepository) FindActiveByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	logger.Debug("Finding active admin user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.AdminUser
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", email, true).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "Failed to find active admin user by email in database", map[string]interface{}{
			"email": email,
		})
	}
	return &user, nil
}

// UpdatePasswordHash only touches active accounts; an inactive or missing
// row yields ErrNotFound.
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	logger.Debug("Updating admin user password hash in database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.WithContext(ctx).Model(&model.AdminUser{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("password_hash", hash)
	if result.Error != nil {
		logger.Error("Failed to update admin user password hash in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at)
	if result.Error != nil {
		logger.Error("Failed to update admin user last login in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps gorm.ErrRecordNotFound to ErrNotFound and logs anything else.
func translate(err error, msg string, fields map[string]interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	logger.Error(msg, err, fields)
	return err
}
