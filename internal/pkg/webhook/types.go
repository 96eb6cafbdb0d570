package webhook

import "errors"

// Canonical field keys produced by the field mapper. External platforms
// name these however they like; mapping rules translate into this set.
const (
	FieldEmail    = "email"
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldDocument = "cpfCnpj"
	FieldPlan     = "plan"
	FieldOffer    = "offer"
	FieldQuantity = "quantity"
	FieldStatus   = "status"
)

// Terminal outcomes of the account state machine.
const (
	ActionCreated        = "created"
	ActionRestored       = "restored"
	ActionAccountCreated = "account_created"
	ActionUpdated        = "updated"
)

// Configuration and input errors surfaced to the caller as 4xx.
var (
	ErrNoMappings     = errors.New("webhook has no field mappings configured")
	ErrEmailNotMapped = errors.New("required field email was not mapped from the payload")
)

// Result is the structured outcome of processing one delivery.
type Result struct {
	Action         string `json:"action"`
	UserID         uint   `json:"user_id"`
	AccountID      uint   `json:"account_id"`
	SubscriptionID uint   `json:"subscription_id,omitempty"`
	PlanID         uint   `json:"plan_id,omitempty"`
}
