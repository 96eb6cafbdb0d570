package repository

import (
	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetByID retrieves a live plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByName retrieves a live plan by exact display name
func (r *planRepository) GetByName(name string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("name = ?", name).Order("duration_months ASC").First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByNameAndDuration retrieves the plan variant with the given name and duration bucket
func (r *planRepository) GetByNameAndDuration(name string, durationMonths int) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("name = ? AND duration_months = ?", name, durationMonths).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
