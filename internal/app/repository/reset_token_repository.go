package repository

import (
	"context"
	"errors"
	"time"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"gorm.io/gorm"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.ResetToken) error
	FindByToken(ctx context.Context, token string) (*model.ResetToken, error)
	// MarkUsed flips used to true iff the token is unused and unexpired at
	// usedAt. Losing the race returns ErrTokenNotClaimable.
	MarkUsed(ctx context.Context, token string, usedAt time.Time) error
	// ReleaseUsed undoes a MarkUsed whose surrounding work failed.
	ReleaseUsed(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type resetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *model.ResetToken) error {
	logger.Debug("Creating reset token in database", map[string]interface{}{
		"user_id": token.UserID,
		"email":   token.Email,
	})

	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		logger.Error("Failed to create reset token in database", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}

	logger.Debug("Reset token created in database", map[string]interface{}{
		"id":         token.ID,
		"expires_at": token.ExpiresAt,
	})
	return nil
}

func (r *resetTokenRepository) FindByToken(ctx context.Context, token string) (*model.ResetToken, error) {
	var reset model.ResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, translate(err, "Failed to find reset token in database", nil)
	}
	return &reset, nil
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.ResetToken{}).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, usedAt).
		Updates(map[string]interface{}{
			"used":    true,
			"used_at": usedAt,
		})
	if result.Error != nil {
		logger.Error("Failed to mark reset token as used in database", result.Error, nil)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotClaimable
	}

	logger.Debug("Reset token marked as used in database", map[string]interface{}{
		"used_at": usedAt,
	})
	return nil
}

func (r *resetTokenRepository) ReleaseUsed(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Model(&model.ResetToken{}).
		Where("token = ? AND used = ?", token, true).
		Updates(map[string]interface{}{
			"used":    false,
			"used_at": nil,
		})
	if result.Error != nil {
		logger.Error("Failed to release reset token in database", result.Error, nil)
		return result.Error
	}
	return nil
}

func (r *resetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	logger.Debug("Deleting expired reset tokens from database", map[string]interface{}{
		"before": before,
	})

	result := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&model.ResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired reset tokens from database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Expired reset tokens deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
