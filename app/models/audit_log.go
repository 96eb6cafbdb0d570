package models

import "time"

const AuditActorWebhook = "webhook"

// AuditLog records one row per terminal webhook outcome with a
// human-readable description of the mutation that was applied.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Actor       string    `gorm:"type:varchar(50);not null;default:'webhook'" json:"actor"`
	UserID      *uint     `gorm:"index;default:null" json:"user_id,omitempty"`
	Action      string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Entity      string    `gorm:"type:varchar(50);not null" json:"entity"`
	EntityID    uint      `gorm:"not null;default:0" json:"entity_id"`
	Description string    `gorm:"type:text" json:"description"`
	PayloadJSON string    `gorm:"type:longtext" json:"payload_json"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
