package repository

import (
	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	// GetByEmailAnyState looks up a user by normalized email including
	// soft-deleted rows, so the webhook flow can restore them.
	GetByEmailAnyState(email string) (*models.User, error)
	Restore(id uint) error
}

// AccountRepository defines the interface for account database operations
type AccountRepository interface {
	Create(account *models.Account) error
	Update(account *models.Account) error
	GetLiveByUserID(userID uint) (*models.Account, error)
}

// SubscriptionRepository defines the interface for subscription database operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	Update(sub *models.Subscription) error
	// GetCurrentByAccountID returns the most recently created live
	// subscription for an account.
	GetCurrentByAccountID(accountID uint) (*models.Subscription, error)
}

// PlanRepository defines the interface for plan lookups (live plans only)
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetByName(name string) (*models.Plan, error)
	GetByNameAndDuration(name string, durationMonths int) (*models.Plan, error)
}

// WebhookRepository defines the interface for webhook config and log operations
type WebhookRepository interface {
	GetConfigWithMappings(id string) (*models.WebhookConfig, error)
	ListConfigs() ([]models.WebhookConfig, error)
	CreateConfig(cfg *models.WebhookConfig) error
	SaveConfig(cfg *models.WebhookConfig) error
	DeleteConfig(id string) error
	ReplaceMappings(webhookID string, mappings []models.FieldMapping) error
	UpdateLastTestPayload(id string, payload string) error

	CreateLog(entry *models.WebhookLog) error
	CountLogs(webhookID string) (int64, error)
	DeleteOldestLogs(webhookID string, n int) error
	ListLogs(webhookID string, limit int) ([]models.WebhookLog, error)
}

// AuditRepository defines the interface for audit log persistence
type AuditRepository interface {
	Create(entry *models.AuditLog) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Account      AccountRepository
	Subscription SubscriptionRepository
	Plan         PlanRepository
	Webhook      WebhookRepository
	Audit        AuditRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Account:      NewAccountRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Plan:         NewPlanRepository(db),
		Webhook:      NewWebhookRepository(db),
		Audit:        NewAuditRepository(db),
	}
}
