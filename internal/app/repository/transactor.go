package repository

import (
	"context"
	"sync"
	"time"

	"github.com/samaraie/linktree-backend/pkg/logger"
	"gorm.io/gorm"
)

// Repositories is the set of stores visible inside one unit of work.
type Repositories struct {
	Users       UserRepository
	ResetTokens ResetTokenRepository
}

// Transactor runs fn so that either every write it makes is kept, or none is.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor keeps users and reset tokens in the same database, so a
// single SQL transaction covers both.
func NewGormTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Users:       NewUserRepository(tx),
			ResetTokens: NewResetTokenRepository(tx),
		})
	})
}

type compensatingTransactor struct {
	db     *gorm.DB
	tokens ResetTokenRepository
}

// NewCompensatingTransactor pairs a SQL user store with a token store that
// lives elsewhere (redis). Token claims made inside fn are released again
// when the SQL transaction rolls back.
func NewCompensatingTransactor(db *gorm.DB, tokens ResetTokenRepository) Transactor {
	return &compensatingTransactor{db: db, tokens: tokens}
}

func (t *compensatingTransactor) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	claims := &claimTracker{ResetTokenRepository: t.tokens}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Users:       NewUserRepository(tx),
			ResetTokens: claims,
		})
	})
	if err != nil {
		claims.release(context.WithoutCancel(ctx))
	}
	return err
}

// claimTracker remembers every successful MarkUsed so it can be undone.
type claimTracker struct {
	ResetTokenRepository

	mu      sync.Mutex
	claimed []string
}

func (c *claimTracker) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	if err := c.ResetTokenRepository.MarkUsed(ctx, token, usedAt); err != nil {
		return err
	}
	c.mu.Lock()
	c.claimed = append(c.claimed, token)
	c.mu.Unlock()
	return nil
}

func (c *claimTracker) release(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, token := range c.claimed {
		if err := c.ResetTokenRepository.ReleaseUsed(ctx, token); err != nil {
			logger.Error("Failed to release reset token after rollback", err, nil)
		}
	}
	c.claimed = nil
}
