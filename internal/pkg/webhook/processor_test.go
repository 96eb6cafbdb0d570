package webhook

import (
	"testing"
	"time"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/AutoGestorHQ/AutoGestor/app/repository"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeUserRepo) GetByEmailAnyState(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == models.NormalizeEmail(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Restore(id uint) error {
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.DeletedAt = gorm.DeletedAt{}
	return nil
}

type fakeAccountRepo struct {
	accounts map[uint]*models.Account
	nextID   uint
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uint]*models.Account), nextID: 1}
}

func (f *fakeAccountRepo) Create(account *models.Account) error {
	account.ID = f.nextID
	f.nextID++
	a := *account
	f.accounts[account.ID] = &a
	return nil
}

func (f *fakeAccountRepo) Update(account *models.Account) error {
	if _, ok := f.accounts[account.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	a := *account
	f.accounts[account.ID] = &a
	return nil
}

func (f *fakeAccountRepo) GetLiveByUserID(userID uint) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && !a.DeletedAt.Valid {
			c := *a
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSubscriptionRepo struct {
	subs   map[uint]*models.Subscription
	nextID uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uint]*models.Subscription), nextID: 1}
}

func (f *fakeSubscriptionRepo) Create(sub *models.Subscription) error {
	sub.ID = f.nextID
	f.nextID++
	s := *sub
	f.subs[sub.ID] = &s
	return nil
}

func (f *fakeSubscriptionRepo) Update(sub *models.Subscription) error {
	if _, ok := f.subs[sub.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s := *sub
	f.subs[sub.ID] = &s
	return nil
}

func (f *fakeSubscriptionRepo) GetCurrentByAccountID(accountID uint) (*models.Subscription, error) {
	var current *models.Subscription
	for _, s := range f.subs {
		if s.AccountID != accountID || s.DeletedAt.Valid {
			continue
		}
		if current == nil || s.ID > current.ID {
			current = s
		}
	}
	if current == nil {
		return nil, gorm.ErrRecordNotFound
	}
	c := *current
	return &c, nil
}

type fakeAuditRepo struct {
	entries []models.AuditLog
}

func (f *fakeAuditRepo) Create(entry *models.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type processorFixture struct {
	proc  *Processor
	users *fakeUserRepo
	accts *fakeAccountRepo
	subs  *fakeSubscriptionRepo
	audit *fakeAuditRepo
	mails chan string
	now   time.Time
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()

	f := &processorFixture{
		users: newFakeUserRepo(),
		accts: newFakeAccountRepo(),
		subs:  newFakeSubscriptionRepo(),
		audit: &fakeAuditRepo{},
		mails: make(chan string, 8),
		now:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	repos := &repository.Repositories{
		User:         f.users,
		Account:      f.accts,
		Subscription: f.subs,
		Plan:         proPlanCatalog(),
		Audit:        f.audit,
	}
	f.proc = NewProcessor(repos)
	f.proc.now = func() time.Time { return f.now }
	f.proc.sendMail = func(to, subject, body string) error {
		f.mails <- to
		return nil
	}
	return f
}

func (f *processorFixture) waitForMail(t *testing.T) string {
	t.Helper()
	select {
	case to := <-f.mails:
		return to
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was never sent")
		return ""
	}
}

func testConfig() *models.WebhookConfig {
	return &models.WebhookConfig{
		ID:       "cfg-1",
		Name:     "kiwify",
		IsActive: true,
		FieldMappings: []models.FieldMapping{
			{ExternalField: "buyer.email", CanonicalField: FieldEmail},
			{ExternalField: "buyer.name", CanonicalField: FieldName},
			{ExternalField: "buyer.phone", CanonicalField: FieldPhone},
			{ExternalField: "plan_name", CanonicalField: FieldPlan},
			{ExternalField: "recurrence", CanonicalField: FieldOffer},
			{ExternalField: "quantity", CanonicalField: FieldQuantity},
		},
	}
}

func quarterlyPayload() map[string]any {
	return map[string]any{
		"buyer": map[string]any{
			"email": "Maria@Example.com",
			"name":  "Maria Silva",
			"phone": "41999990000",
		},
		"plan_name":  "Pro",
		"recurrence": "trimestral",
	}
}

func TestProcessCreatesUserAccountAndSubscription(t *testing.T) {
	f := newProcessorFixture(t)

	res, err := f.proc.Process(testConfig(), quarterlyPayload())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Action != ActionCreated {
		t.Fatalf("action = %q, want %q", res.Action, ActionCreated)
	}

	user := f.users.users[res.UserID]
	if user == nil {
		t.Fatal("user was not persisted")
	}
	if user.Email != "maria@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Name != "Maria Silva" || user.Phone != "41999990000" {
		t.Fatalf("contact fields not mapped: %+v", user)
	}

	account := f.accts.accounts[res.AccountID]
	if account == nil {
		t.Fatal("account was not persisted")
	}
	if account.Name != "Pro" {
		t.Fatalf("account name should come from the resolved plan, got %q", account.Name)
	}
	wantDue := f.now.AddDate(0, 0, 90)
	if account.TrialEndsAt == nil || !account.TrialEndsAt.Equal(wantDue) {
		t.Fatalf("due date = %v, want %v", account.TrialEndsAt, wantDue)
	}

	sub := f.subs.subs[res.SubscriptionID]
	if sub == nil {
		t.Fatal("subscription was not persisted")
	}
	if res.PlanID != 2 {
		t.Fatalf("expected the quarterly Pro variant (plan 2), got %d", res.PlanID)
	}
	if sub.PlanID == nil || *sub.PlanID != 2 {
		t.Fatalf("subscription plan = %v, want 2", sub.PlanID)
	}
	if sub.EndDate == nil || !sub.EndDate.Equal(wantDue) {
		t.Fatalf("subscription end date = %v, want %v", sub.EndDate, wantDue)
	}

	if to := f.waitForMail(t); to != "maria@example.com" {
		t.Fatalf("welcome mail sent to %q", to)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "webhook.created" {
		t.Fatalf("unexpected audit trail: %+v", f.audit.entries)
	}
}

func TestProcessReplayUpdatesExistingAccount(t *testing.T) {
	f := newProcessorFixture(t)
	cfg := testConfig()

	first, err := f.proc.Process(cfg, quarterlyPayload())
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	f.waitForMail(t)

	// Same payload again must update in place, not duplicate anything.
	payload := quarterlyPayload()
	payload["buyer"].(map[string]any)["name"] = "Maria S. Oliveira"
	second, err := f.proc.Process(cfg, payload)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if second.Action != ActionUpdated {
		t.Fatalf("action = %q, want %q", second.Action, ActionUpdated)
	}
	if second.UserID != first.UserID || second.AccountID != first.AccountID || second.SubscriptionID != first.SubscriptionID {
		t.Fatalf("replay must reuse the same rows: first=%+v second=%+v", first, second)
	}
	if len(f.users.users) != 1 || len(f.accts.accounts) != 1 || len(f.subs.subs) != 1 {
		t.Fatalf("replay duplicated rows: %d users, %d accounts, %d subs",
			len(f.users.users), len(f.accts.accounts), len(f.subs.subs))
	}
	if got := f.users.users[first.UserID].Name; got != "Maria S. Oliveira" {
		t.Fatalf("name not refreshed on update: %q", got)
	}

	select {
	case to := <-f.mails:
		t.Fatalf("update must not send a welcome email, got one for %q", to)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProcessRestoresSoftDeletedUser(t *testing.T) {
	f := newProcessorFixture(t)
	cfg := testConfig()

	res, err := f.proc.Process(cfg, quarterlyPayload())
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	f.waitForMail(t)

	f.users.users[res.UserID].DeletedAt = gorm.DeletedAt{Time: f.now, Valid: true}

	restored, err := f.proc.Process(cfg, quarterlyPayload())
	if err != nil {
		t.Fatalf("restore delivery: %v", err)
	}
	if restored.Action != ActionRestored {
		t.Fatalf("action = %q, want %q", restored.Action, ActionRestored)
	}
	if restored.UserID != res.UserID {
		t.Fatalf("restore must keep the original user, got %d want %d", restored.UserID, res.UserID)
	}
	if f.users.users[res.UserID].DeletedAt.Valid {
		t.Fatal("user is still soft-deleted after restore")
	}
}

func TestProcessCreatesAccountForExistingUser(t *testing.T) {
	f := newProcessorFixture(t)

	user, err := models.NewWebhookUser("João", "joao@example.com")
	if err != nil {
		t.Fatalf("NewWebhookUser: %v", err)
	}
	if err := f.users.Create(user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	payload := quarterlyPayload()
	payload["buyer"].(map[string]any)["email"] = "joao@example.com"
	res, err := f.proc.Process(testConfig(), payload)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Action != ActionAccountCreated {
		t.Fatalf("action = %q, want %q", res.Action, ActionAccountCreated)
	}
	if res.UserID != user.ID {
		t.Fatalf("account must attach to the existing user %d, got %d", user.ID, res.UserID)
	}
	if _, err := f.accts.GetLiveByUserID(user.ID); err != nil {
		t.Fatalf("account was not created: %v", err)
	}
}

func TestProcessRejectsDeliveryWithoutEmail(t *testing.T) {
	f := newProcessorFixture(t)

	cfg := testConfig()
	payload := quarterlyPayload()
	delete(payload["buyer"].(map[string]any), "email")

	if _, err := f.proc.Process(cfg, payload); err != ErrEmailNotMapped {
		t.Fatalf("err = %v, want ErrEmailNotMapped", err)
	}
	if len(f.users.users) != 0 {
		t.Fatal("nothing may be persisted when the email is missing")
	}
}

func TestProcessRejectsConfigWithoutMappings(t *testing.T) {
	f := newProcessorFixture(t)

	cfg := &models.WebhookConfig{ID: "cfg-2", Name: "empty", IsActive: true}
	if _, err := f.proc.Process(cfg, quarterlyPayload()); err != ErrNoMappings {
		t.Fatalf("err = %v, want ErrNoMappings", err)
	}
}

func TestProcessZeroQuantityLeavesNoDueDate(t *testing.T) {
	f := newProcessorFixture(t)

	payload := quarterlyPayload()
	payload["quantity"] = "0"
	res, err := f.proc.Process(testConfig(), payload)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	f.waitForMail(t)

	if got := f.accts.accounts[res.AccountID].TrialEndsAt; got != nil {
		t.Fatalf("explicit zero quantity must skip the due date, got %v", got)
	}
	if got := f.subs.subs[res.SubscriptionID].EndDate; got != nil {
		t.Fatalf("subscription end date should be empty, got %v", got)
	}
}

func TestProcessUnknownPlanStillCreatesUser(t *testing.T) {
	f := newProcessorFixture(t)

	payload := quarterlyPayload()
	payload["plan_name"] = "Nonexistent"
	res, err := f.proc.Process(testConfig(), payload)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	f.waitForMail(t)

	if res.PlanID != 0 {
		t.Fatalf("unresolved plan must leave PlanID zero, got %d", res.PlanID)
	}
	if got := f.subs.subs[res.SubscriptionID].PlanID; got != nil {
		t.Fatalf("subscription must not reference a plan, got %v", got)
	}
	if got := f.accts.accounts[res.AccountID].Name; got != "Nonexistent" {
		t.Fatalf("account name should fall back to the raw token, got %q", got)
	}
}
