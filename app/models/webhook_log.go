package models

import "time"

// WebhookLog stores one row per inbound webhook call, success or failure.
// Headers are sanitized before persistence (authorization/cookie dropped).
// In test mode the history per webhook is a sliding window of at most
// TestModeLogLimit rows; active-mode history is unbounded.
type WebhookLog struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	WebhookConfigID     string    `gorm:"type:char(36);not null;index" json:"webhook_config_id"`
	Method              string    `gorm:"type:varchar(10);not null" json:"method"`
	URL                 string    `gorm:"type:varchar(500)" json:"url"`
	HeadersJSON         string    `gorm:"column:headers_json;type:longtext" json:"headers_json"`
	Body                string    `gorm:"type:longtext" json:"body"`
	ResponseStatus      int       `gorm:"not null;default:0" json:"response_status"`
	ResponseBody        string    `gorm:"type:longtext" json:"response_body"`
	Error               string    `gorm:"type:text" json:"error"`
	ProcessedInTestMode bool      `gorm:"default:false;index" json:"processed_in_test_mode"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TestModeLogLimit caps retained log rows per webhook while in test mode.
const TestModeLogLimit = 2
