package model

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// AdminUser is the credential record of a dashboard account
type AdminUser struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	IsActive     bool       `gorm:"not null;index" json:"is_active"` // no gorm default, false must persist on Create
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// NormalizeEmail is the lookup form of an address: trimmed and lower-cased
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
