package webhook

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/AutoGestorHQ/AutoGestor/app/repository"
	"github.com/AutoGestorHQ/AutoGestor/internal/pkg/mail"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// Processor drives the account state machine for one webhook delivery:
// map fields, compute the due date, resolve the plan, then create,
// restore or update the user/account/subscription graph.
type Processor struct {
	repos    *repository.Repositories
	resolver *PlanResolver
	sendMail func(to, subject, body string) error
	now      func() time.Time
}

// NewProcessor creates a processor from an injected repository set.
func NewProcessor(repos *repository.Repositories) *Processor {
	return &Processor{
		repos:    repos,
		resolver: NewPlanResolver(repos.Plan),
		sendMail: mail.SendMail,
		now:      time.Now,
	}
}

// Process runs the state machine for one delivery. Configuration gating
// (active/test mode, reprocess) is the caller's job; this assumes the
// delivery should mutate business data.
func (p *Processor) Process(cfg *models.WebhookConfig, payload map[string]any) (*Result, error) {
	if len(cfg.FieldMappings) == 0 {
		return nil, ErrNoMappings
	}

	fields := MapFields(payload, cfg.FieldMappings)
	email := models.NormalizeEmail(fields[FieldEmail])
	if email == "" {
		return nil, ErrEmailNotMapped
	}

	// The due date is always recomputed from offer x quantity; due-date
	// values arriving through differently named mapped fields are ignored
	// so billing dates have a single source of truth.
	quantity := ParseQuantity(fields[FieldQuantity])
	days := DaysFor(ParseOffer(fields[FieldOffer]), quantity)
	var dueDate *time.Time
	if days > 0 {
		t := p.now().AddDate(0, 0, days)
		dueDate = &t
	}

	plan, err := p.resolver.ResolveByOffer(fields[FieldPlan], fields[FieldOffer], fields[FieldQuantity])
	if err != nil {
		return nil, fmt.Errorf("resolving plan: %w", err)
	}

	user, err := p.repos.User.GetByEmailAnyState(email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return p.createUser(email, fields, plan, dueDate)
	case err != nil:
		return nil, fmt.Errorf("looking up user: %w", err)
	case user.IsDeleted():
		return p.restoreUser(user, fields, plan, dueDate)
	}

	account, err := p.repos.Account.GetLiveByUserID(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p.createAccount(user, fields, plan, dueDate)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	return p.updateAccount(user, account, fields, plan, dueDate)
}

func (p *Processor) createUser(email string, fields map[string]string, plan *models.Plan, dueDate *time.Time) (*Result, error) {
	name := strings.TrimSpace(fields[FieldName])
	if name == "" {
		name = email
	}

	user, err := models.NewWebhookUser(name, email)
	if err != nil {
		return nil, fmt.Errorf("building user: %w", err)
	}
	user.Phone = fields[FieldPhone]
	user.CpfCnpj = fields[FieldDocument]
	if err := p.repos.User.Create(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	account := &models.Account{
		UserID:      user.ID,
		Name:        accountName(plan, fields, email),
		Status:      accountStatus(fields),
		TrialEndsAt: dueDate,
	}
	if err := p.repos.Account.Create(account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	sub, err := p.upsertSubscription(account, plan, fields, dueDate)
	if err != nil {
		return nil, err
	}

	// Best-effort welcome notification; its failure never fails the call.
	go p.sendWelcome(user)

	result := newResult(ActionCreated, user, account, sub, plan)
	p.audit(ActionCreated, user, account, fields,
		fmt.Sprintf("user %s created from webhook delivery", user.Email))
	return result, nil
}

func (p *Processor) restoreUser(user *models.User, fields map[string]string, plan *models.Plan, dueDate *time.Time) (*Result, error) {
	if err := p.repos.User.Restore(user.ID); err != nil {
		return nil, fmt.Errorf("restoring user: %w", err)
	}
	user.DeletedAt = gorm.DeletedAt{}
	refreshContactFields(user, fields)
	if err := p.repos.User.Update(user); err != nil {
		return nil, fmt.Errorf("updating restored user: %w", err)
	}

	account, err := p.repos.Account.GetLiveByUserID(user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = &models.Account{
			UserID:      user.ID,
			Name:        accountName(plan, fields, user.Email),
			Status:      accountStatus(fields),
			TrialEndsAt: dueDate,
		}
		if err := p.repos.Account.Create(account); err != nil {
			return nil, fmt.Errorf("creating account: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	} else {
		applyAccountUpdate(account, plan, fields, dueDate)
		if err := p.repos.Account.Update(account); err != nil {
			return nil, fmt.Errorf("updating account: %w", err)
		}
	}

	sub, err := p.upsertSubscription(account, plan, fields, dueDate)
	if err != nil {
		return nil, err
	}

	result := newResult(ActionRestored, user, account, sub, plan)
	p.audit(ActionRestored, user, account, fields,
		fmt.Sprintf("soft-deleted user %s restored from webhook delivery", user.Email))
	return result, nil
}

func (p *Processor) createAccount(user *models.User, fields map[string]string, plan *models.Plan, dueDate *time.Time) (*Result, error) {
	account := &models.Account{
		UserID:      user.ID,
		Name:        accountName(plan, fields, user.Email),
		Status:      accountStatus(fields),
		TrialEndsAt: dueDate,
	}
	if err := p.repos.Account.Create(account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	sub, err := p.upsertSubscription(account, plan, fields, dueDate)
	if err != nil {
		return nil, err
	}

	result := newResult(ActionAccountCreated, user, account, sub, plan)
	p.audit(ActionAccountCreated, user, account, fields,
		fmt.Sprintf("account created for existing user %s", user.Email))
	return result, nil
}

func (p *Processor) updateAccount(user *models.User, account *models.Account, fields map[string]string, plan *models.Plan, dueDate *time.Time) (*Result, error) {
	refreshContactFields(user, fields)
	if err := p.repos.User.Update(user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	applyAccountUpdate(account, plan, fields, dueDate)
	if err := p.repos.Account.Update(account); err != nil {
		return nil, fmt.Errorf("updating account: %w", err)
	}

	sub, err := p.upsertSubscription(account, plan, fields, dueDate)
	if err != nil {
		return nil, err
	}

	result := newResult(ActionUpdated, user, account, sub, plan)
	p.audit(ActionUpdated, user, account, fields,
		fmt.Sprintf("account of user %s refreshed from webhook delivery", user.Email))
	return result, nil
}

// upsertSubscription updates the account's current subscription or creates
// one when none is live.
func (p *Processor) upsertSubscription(account *models.Account, plan *models.Plan, fields map[string]string, dueDate *time.Time) (*models.Subscription, error) {
	var planID *uint
	if plan != nil {
		id := plan.ID
		planID = &id
	}
	status := strings.TrimSpace(fields[FieldStatus])
	if status == "" {
		status = models.SubscriptionStatusActive
	}

	sub, err := p.repos.Subscription.GetCurrentByAccountID(account.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = &models.Subscription{
			AccountID: account.ID,
			PlanID:    planID,
			Status:    status,
			EndDate:   dueDate,
		}
		if err := p.repos.Subscription.Create(sub); err != nil {
			return nil, fmt.Errorf("creating subscription: %w", err)
		}
		return sub, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up subscription: %w", err)
	}

	if planID != nil {
		sub.PlanID = planID
	}
	sub.Status = status
	sub.EndDate = dueDate
	if err := p.repos.Subscription.Update(sub); err != nil {
		return nil, fmt.Errorf("updating subscription: %w", err)
	}
	return sub, nil
}

func (p *Processor) sendWelcome(user *models.User) {
	body := fmt.Sprintf("<p>Hello %s,</p><p>your account is ready. Sign in with your email and the temporary password to get started. Please change the password on first login.</p>", user.Name)
	if err := p.sendMail(user.Email, "Welcome to AutoGestor", body); err != nil {
		log.Printf("welcome email for user %d failed: %v", user.ID, err)
	}
}

// audit is best-effort: a failed audit write is logged, never surfaced.
func (p *Processor) audit(action string, user *models.User, account *models.Account, fields map[string]string, description string) {
	payloadJSON, _ := json.Marshal(fields)
	entry := &models.AuditLog{
		Actor:       models.AuditActorWebhook,
		UserID:      &user.ID,
		Action:      "webhook." + action,
		Entity:      "account",
		EntityID:    account.ID,
		Description: description,
		PayloadJSON: string(payloadJSON),
	}
	if err := p.repos.Audit.Create(entry); err != nil {
		log.Printf("audit log write failed for user %d: %v", user.ID, err)
	}
}

func newResult(action string, user *models.User, account *models.Account, sub *models.Subscription, plan *models.Plan) *Result {
	r := &Result{
		Action:    action,
		UserID:    user.ID,
		AccountID: account.ID,
	}
	if sub != nil {
		r.SubscriptionID = sub.ID
	}
	if plan != nil {
		r.PlanID = plan.ID
	}
	return r
}

func refreshContactFields(user *models.User, fields map[string]string) {
	if name := strings.TrimSpace(fields[FieldName]); name != "" {
		user.Name = name
	}
	if phone, ok := fields[FieldPhone]; ok {
		user.Phone = phone
	}
	if doc, ok := fields[FieldDocument]; ok {
		user.CpfCnpj = doc
	}
}

func applyAccountUpdate(account *models.Account, plan *models.Plan, fields map[string]string, dueDate *time.Time) {
	if name := accountNameOrEmpty(plan, fields); name != "" {
		account.Name = name
	}
	account.Status = accountStatus(fields)
	account.TrialEndsAt = dueDate
}

// accountName prefers the resolved plan's display name, then the raw plan
// token, then a generated fallback.
func accountName(plan *models.Plan, fields map[string]string, email string) string {
	if name := accountNameOrEmpty(plan, fields); name != "" {
		return name
	}
	return "Conta " + email
}

func accountNameOrEmpty(plan *models.Plan, fields map[string]string) string {
	if plan != nil {
		return plan.Name
	}
	return strings.TrimSpace(fields[FieldPlan])
}

func accountStatus(fields map[string]string) string {
	if status := strings.TrimSpace(fields[FieldStatus]); status != "" {
		return status
	}
	return models.AccountStatusActive
}
