package service

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/internal/app/repository"
	"github.com/samaraie/linktree-backend/internal/metrics"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"github.com/samaraie/linktree-backend/pkg/util"
)

// UserDescriptor is what a caller needs to open a session
type UserDescriptor struct {
	ID    uint           `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Role  model.UserRole `json:"role"`
}

func describe(user *model.AdminUser) *UserDescriptor {
	return &UserDescriptor{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*UserDescriptor, error)
	IssueTokens(user *UserDescriptor) (*util.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	GetUserByID(ctx context.Context, id uint) (*UserDescriptor, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	CreateUser(ctx context.Context, email, password, name string, role model.UserRole) (*model.AdminUser, error)
}

// TokenConfig controls session tokens handed out after login
type TokenConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type authService struct {
	userRepo repository.UserRepository
	hasher   util.PasswordHasher
	tokens   TokenConfig
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher util.PasswordHasher,
	tokens TokenConfig,
	opts ...Option,
) AuthService {
	o := buildOptions(opts)
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		now:      o.now,
	}
}

// Login answers ErrInvalidCredentials for a missing account, an inactive one
// and a wrong password alike.
func (s *authService) Login(ctx context.Context, email, password string) (desc *UserDescriptor, err error) {
	defer func() { metrics.ObserveLogin(metrics.Outcome(err, outcomeLabel)) }()

	email = model.NormalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn the same hashing time as a real check
			s.hasher.Verify(s.dummy(), password)
			logger.Warn("Login failed: user not found or inactive", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, storageError(err)
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		logger.Warn("Failed to update last login", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
		"legacy":  util.IsLegacyDigest(user.PasswordHash),
	})

	return describe(user), nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			logger.Error("Failed to prepare dummy hash", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *authService) IssueTokens(user *UserDescriptor) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.tokens.Secret,
		s.tokens.AccessExpiry,
		s.tokens.RefreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

// RefreshToken trades a refresh token for a new pair. Deactivated accounts
// cannot refresh.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.tokens.Secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return nil, util.ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}
	return s.IssueTokens(describe(user))
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*UserDescriptor, error) {
	logger.Debug("Fetching user by ID", map[string]interface{}{
		"user_id": id,
	})

	user, err := s.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return describe(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	logger.Info("Changing password", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password change rejected: current password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return ErrInvalidCredentials
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hashedPassword); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageError(err)
	}

	logger.Info("Password changed successfully", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) CreateUser(ctx context.Context, email, password, name string, role model.UserRole) (*model.AdminUser, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	logger.Info("Creating admin user", map[string]interface{}{
		"email": email,
		"role":  role,
	})

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError(err)
	}
	if existing != nil {
		logger.Warn("Admin user creation failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.AdminUser{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, storageError(err)
	}

	logger.Info("Admin user created", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, nil
}

func (s *authService) activeUser(ctx context.Context, id uint) (*model.AdminUser, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, storageError(err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}
