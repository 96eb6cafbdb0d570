package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookConfig is an admin-managed inbound webhook endpoint definition.
// The ingestion core reads it fresh on every request; mappings are
// editable at any time so nothing is cached across calls.
type WebhookConfig struct {
	ID              string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	TestMode        bool           `gorm:"default:false" json:"test_mode"`
	LastTestPayload string         `gorm:"type:longtext" json:"last_test_payload"`
	DeliveryCount   int64          `gorm:"not null;default:0" json:"delivery_count"`
	FailureCount    int64          `gorm:"not null;default:0" json:"failure_count"`
	FieldMappings   []FieldMapping `gorm:"foreignKey:WebhookConfigID" json:"field_mappings"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (w *WebhookConfig) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(w.ID) == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

func (w *WebhookConfig) Validate() error {
	v := validator.New()

	return v.Struct(w)
}

// FieldMapping translates one external payload field into a canonical
// field. ExternalField is either a fixed token (literal passthrough when
// absent from the payload) or a dotted/bracketed path expression.
type FieldMapping struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	WebhookConfigID string    `gorm:"type:char(36);not null;index" json:"webhook_config_id"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	ExternalField   string    `gorm:"type:varchar(255);not null" json:"external_field" validate:"required,max=255"`
	CanonicalField  string    `gorm:"type:varchar(100);not null" json:"canonical_field" validate:"required,max=100"`
	Prefix          string    `gorm:"type:varchar(100);default:''" json:"prefix"`
	Suffix          string    `gorm:"type:varchar(100);default:''" json:"suffix"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPathExpression reports whether the external field must be resolved as
// a dotted/bracketed path instead of a fixed top-level token.
func (m FieldMapping) IsPathExpression() bool {
	return strings.ContainsAny(m.ExternalField, ".[")
}
