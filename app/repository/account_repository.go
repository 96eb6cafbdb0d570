package repository

import (
	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"gorm.io/gorm"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account in the database
func (r *accountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// Update updates an existing account in the database
func (r *accountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}

// GetLiveByUserID retrieves the non-deleted account of a user
func (r *accountRepository) GetLiveByUserID(userID uint) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}
