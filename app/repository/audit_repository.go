package repository

import (
	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"gorm.io/gorm"
)

// auditRepository implements the AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository instance
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create appends an audit log entry
func (r *auditRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}
