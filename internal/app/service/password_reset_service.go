package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/internal/app/repository"
	"github.com/samaraie/linktree-backend/internal/metrics"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"github.com/samaraie/linktree-backend/pkg/mailer"
	"github.com/samaraie/linktree-backend/pkg/util"
)

const (
	// ResetTokenExpiry is the duration for which a reset token is valid
	ResetTokenExpiry = 1 * time.Hour
	// ResetTokenLength is the byte length of the reset token
	ResetTokenLength = 32
)

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ValidateToken(ctx context.Context, token string) (string, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) error
}

// PasswordResetConfig holds what the reset e-mail needs to point back at the site
type PasswordResetConfig struct {
	BaseURL string
	AppName string
}

type passwordResetService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.ResetTokenRepository
	tx        repository.Transactor
	mailer    mailer.Mailer
	hasher    util.PasswordHasher
	cfg       PasswordResetConfig
	now       func() time.Time
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	tokenRepo repository.ResetTokenRepository,
	tx repository.Transactor,
	m mailer.Mailer,
	hasher util.PasswordHasher,
	cfg PasswordResetConfig,
	opts ...Option,
) PasswordResetService {
	o := buildOptions(opts)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &passwordResetService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tx:        tx,
		mailer:    m,
		hasher:    hasher,
		cfg:       cfg,
		now:       o.now,
	}
}

// RequestReset mints a token for an active account and mails the link. Unknown
// and inactive addresses get the same nil result with nothing sent.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) (err error) {
	defer func() { metrics.ObserveReset(metrics.StageRequest, metrics.Outcome(err, outcomeLabel)) }()

	email = model.NormalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Password reset requested for unknown or inactive account", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return storageError(err)
	}

	token, err := util.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	now := s.now()
	reset := &model.ResetToken{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(ResetTokenExpiry),
		Used:      false,
	}
	if err := s.tokenRepo.Create(ctx, reset); err != nil {
		logger.Error("Failed to create reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return storageError(err)
	}

	msg, err := mailer.PasswordResetMessage(user.Email, mailer.PasswordResetData{
		AppName:  s.cfg.AppName,
		UserName: displayName(user),
		ResetURL: s.resetURL(token),
		ValidFor: ResetTokenExpiry,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		// the token stays valid so the caller can retry within its lifetime
		logger.Error("Failed to send password reset e-mail", err, map[string]interface{}{
			"user_id":    user.ID,
			"expires_at": reset.ExpiresAt,
		})
		return fmt.Errorf("%w: %w", ErrEmailDeliveryFailed, err)
	}

	logger.Info("Password reset e-mail sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (s *passwordResetService) ValidateToken(ctx context.Context, token string) (email string, err error) {
	defer func() { metrics.ObserveReset(metrics.StageValidate, metrics.Outcome(err, outcomeLabel)) }()

	reset, err := s.checkToken(ctx, token, s.now())
	if err != nil {
		return "", err
	}
	return reset.Email, nil
}

// ResetPassword consumes the token and replaces the password hash in one
// transaction. Only one caller can win a given token.
func (s *passwordResetService) ResetPassword(ctx context.Context, email, token, newPassword string) (err error) {
	defer func() { metrics.ObserveReset(metrics.StageComplete, metrics.Outcome(err, outcomeLabel)) }()

	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	email = model.NormalizeEmail(email)
	if email == "" || token == "" {
		return ErrInvalidInput
	}

	logger.Info("Processing password reset with token")

	now := s.now()
	reset, err := s.checkToken(ctx, token, now)
	if err != nil {
		return err
	}
	if reset.Email != email {
		logger.Warn("Reset token presented with a different email", map[string]interface{}{
			"user_id": reset.UserID,
		})
		return ErrTokenEmailMismatch
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := repos.ResetTokens.MarkUsed(ctx, token, now); err != nil {
			if errors.Is(err, repository.ErrTokenNotClaimable) {
				return s.lostClaim(ctx, repos.ResetTokens, token, now)
			}
			return storageError(err)
		}

		if err := repos.Users.UpdatePasswordHash(ctx, reset.UserID, hashedPassword); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return storageError(err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Password reset not applied", map[string]interface{}{
			"user_id": reset.UserID,
			"reason":  err.Error(),
		})
		return err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": reset.UserID,
		"email":   reset.Email,
	})
	return nil
}

// checkToken runs the lookup, used and expiry checks in that order. An empty
// token can match nothing and is reported as not found without a lookup.
func (s *passwordResetService) checkToken(ctx context.Context, token string, now time.Time) (*model.ResetToken, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	reset, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Invalid reset token provided", nil)
			return nil, ErrTokenNotFound
		}
		logger.Error("Failed to find reset token", err, nil)
		return nil, storageError(err)
	}

	if reset.Used {
		logger.Warn("Reset token has already been used", map[string]interface{}{
			"user_id": reset.UserID,
		})
		return nil, ErrTokenAlreadyUsed
	}
	if reset.IsExpired(now) {
		logger.Warn("Reset token has expired", map[string]interface{}{
			"user_id":    reset.UserID,
			"expires_at": reset.ExpiresAt,
		})
		return nil, ErrTokenExpired
	}
	return reset, nil
}

// lostClaim explains why MarkUsed changed nothing. Usually another request
// consumed the token first.
func (s *passwordResetService) lostClaim(ctx context.Context, tokens repository.ResetTokenRepository, token string, now time.Time) error {
	reset, err := tokens.FindByToken(ctx, token)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTokenNotFound
	case err != nil:
		return storageError(err)
	case !reset.Used && reset.IsExpired(now):
		return ErrTokenExpired
	default:
		return ErrTokenAlreadyUsed
	}
}

func (s *passwordResetService) resetURL(token string) string {
	return s.cfg.BaseURL + "/reset-password?token=" + url.QueryEscape(token)
}

func displayName(user *model.AdminUser) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
