package model

import (
	"time"
)

// ResetToken is a single-use password reset credential bound to one AdminUser
type ResetToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Token     string     `gorm:"size:128;not null;uniqueIndex" json:"-"` // never serialized
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	IssuedAt  time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	Used      bool       `gorm:"not null" json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (ResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsExpired treats the expiry instant itself as expired
func (t *ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
