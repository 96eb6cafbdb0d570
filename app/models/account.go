package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AccountStatusActive = "active"
	// AccountStatusOverdue is the externally supplied token for past-due
	// accounts; other tokens are stored as-is.
	AccountStatusOverdue = "vencido"
)

// Account is the dealership tenant owned by a user. The webhook flow
// assumes at most one live account per user.
type Account struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name"`
	Status      string         `gorm:"type:varchar(50);not null;default:'active'" json:"status"`
	TrialEndsAt *time.Time     `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
