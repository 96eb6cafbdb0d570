package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan duration buckets. Several plans may share a display name with
// different durations (e.g. monthly / quarterly / yearly "Pro").
const (
	PlanDurationMonthly   = 1
	PlanDurationQuarterly = 3
	PlanDurationBiannual  = 6
	PlanDurationYearly    = 12
)

type Plan struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(100);not null;index:idx_plans_name_duration,priority:1" json:"name" validate:"required,max=100"`
	DurationMonths int            `gorm:"not null;default:1;index:idx_plans_name_duration,priority:2" json:"duration_months" validate:"oneof=1 3 6 12"`
	PriceCents     int64          `gorm:"not null;default:0" json:"price_cents"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
