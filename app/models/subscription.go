package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription links an account to a plan. The most recently created live
// row is treated as the account's current subscription.
type Subscription struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AccountID uint           `gorm:"not null;index" json:"account_id"`
	PlanID    *uint          `gorm:"index;default:null" json:"plan_id,omitempty"`
	Status    string         `gorm:"type:varchar(50);not null;default:'active'" json:"status"`
	EndDate   *time.Time     `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
