package models

import (
	"time"

	"gorm.io/gorm"
)

// AuthProvider identifies how a user signs in.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// User represents the user model in the database
type User struct {
	Base
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	Password            string         `json:"-"`
	DisplayName         string         `json:"display_name"`
	AuthProvider        AuthProvider   `gorm:"size:16;not null;default:local" json:"auth_provider"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string         `gorm:"size:64" json:"-"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time     `json:"-"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	Transactions        []Transaction  `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
