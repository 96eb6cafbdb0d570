package repository

import (
	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"gorm.io/gorm"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// GetConfigWithMappings loads a webhook config with its mappings in rule order
func (r *webhookRepository) GetConfigWithMappings(id string) (*models.WebhookConfig, error) {
	var cfg models.WebhookConfig
	err := r.db.Preload("FieldMappings", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListConfigs returns all live webhook configs with their mappings
func (r *webhookRepository) ListConfigs() ([]models.WebhookConfig, error) {
	var cfgs []models.WebhookConfig
	err := r.db.Preload("FieldMappings", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Order("created_at DESC").Find(&cfgs).Error
	return cfgs, err
}

// CreateConfig creates a new webhook config including its mappings
func (r *webhookRepository) CreateConfig(cfg *models.WebhookConfig) error {
	return r.db.Create(cfg).Error
}

// SaveConfig updates an existing webhook config (mappings handled separately)
func (r *webhookRepository) SaveConfig(cfg *models.WebhookConfig) error {
	return r.db.Omit("FieldMappings").Save(cfg).Error
}

// DeleteConfig soft deletes a webhook config
func (r *webhookRepository) DeleteConfig(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.WebhookConfig{}).Error
}

// ReplaceMappings swaps the full ordered mapping list of a webhook
func (r *webhookRepository) ReplaceMappings(webhookID string, mappings []models.FieldMapping) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("webhook_config_id = ?", webhookID).
			Delete(&models.FieldMapping{}).Error; err != nil {
			return err
		}
		for i := range mappings {
			mappings[i].ID = 0
			mappings[i].WebhookConfigID = webhookID
			mappings[i].Position = i
		}
		if len(mappings) == 0 {
			return nil
		}
		return tx.Create(&mappings).Error
	})
}

// UpdateLastTestPayload overwrites the captured test payload of a webhook
func (r *webhookRepository) UpdateLastTestPayload(id string, payload string) error {
	return r.db.Model(&models.WebhookConfig{}).Where("id = ?", id).
		Update("last_test_payload", payload).Error
}

// CreateLog appends a webhook log row
func (r *webhookRepository) CreateLog(entry *models.WebhookLog) error {
	return r.db.Create(entry).Error
}

// CountLogs returns the number of stored log rows for a webhook
func (r *webhookRepository) CountLogs(webhookID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.WebhookLog{}).
		Where("webhook_config_id = ?", webhookID).Count(&count).Error
	return count, err
}

// DeleteOldestLogs removes the n oldest log rows of a webhook by receipt time
func (r *webhookRepository) DeleteOldestLogs(webhookID string, n int) error {
	if n <= 0 {
		return nil
	}
	var ids []uint
	if err := r.db.Model(&models.WebhookLog{}).
		Where("webhook_config_id = ?", webhookID).
		Order("created_at ASC, id ASC").Limit(n).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&models.WebhookLog{}).Error
}

// ListLogs returns the most recent log rows of a webhook
func (r *webhookRepository) ListLogs(webhookID string, limit int) ([]models.WebhookLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.WebhookLog
	err := r.db.Where("webhook_config_id = ?", webhookID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
