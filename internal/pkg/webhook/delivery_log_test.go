package webhook

import (
	"fmt"
	"strings"
	"testing"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"gorm.io/gorm"
)

type fakeWebhookRepo struct {
	configs map[string]*models.WebhookConfig
	logs    []models.WebhookLog
	nextID  uint
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{configs: make(map[string]*models.WebhookConfig), nextID: 1}
}

func (f *fakeWebhookRepo) GetConfigWithMappings(id string) (*models.WebhookConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *cfg
	return &c, nil
}

func (f *fakeWebhookRepo) ListConfigs() ([]models.WebhookConfig, error) {
	out := make([]models.WebhookConfig, 0, len(f.configs))
	for _, cfg := range f.configs {
		out = append(out, *cfg)
	}
	return out, nil
}

func (f *fakeWebhookRepo) CreateConfig(cfg *models.WebhookConfig) error {
	if cfg.ID == "" {
		cfg.ID = fmt.Sprintf("cfg-%d", len(f.configs)+1)
	}
	c := *cfg
	f.configs[cfg.ID] = &c
	return nil
}

func (f *fakeWebhookRepo) SaveConfig(cfg *models.WebhookConfig) error {
	if _, ok := f.configs[cfg.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *cfg
	f.configs[cfg.ID] = &c
	return nil
}

func (f *fakeWebhookRepo) DeleteConfig(id string) error {
	delete(f.configs, id)
	return nil
}

func (f *fakeWebhookRepo) ReplaceMappings(webhookID string, mappings []models.FieldMapping) error {
	cfg, ok := f.configs[webhookID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cfg.FieldMappings = append([]models.FieldMapping(nil), mappings...)
	return nil
}

func (f *fakeWebhookRepo) UpdateLastTestPayload(id string, payload string) error {
	cfg, ok := f.configs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cfg.LastTestPayload = payload
	return nil
}

func (f *fakeWebhookRepo) CreateLog(entry *models.WebhookLog) error {
	entry.ID = f.nextID
	f.nextID++
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeWebhookRepo) CountLogs(webhookID string) (int64, error) {
	var n int64
	for _, l := range f.logs {
		if l.WebhookConfigID == webhookID {
			n++
		}
	}
	return n, nil
}

func (f *fakeWebhookRepo) DeleteOldestLogs(webhookID string, n int) error {
	kept := f.logs[:0]
	for _, l := range f.logs {
		if l.WebhookConfigID == webhookID && n > 0 {
			n--
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return nil
}

func (f *fakeWebhookRepo) ListLogs(webhookID string, limit int) ([]models.WebhookLog, error) {
	out := make([]models.WebhookLog, 0)
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].WebhookConfigID != webhookID {
			continue
		}
		out = append(out, f.logs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestSanitizeHeaders(t *testing.T) {
	in := map[string]string{
		"Authorization": "Bearer secret",
		"COOKIE":        "session=abc",
		"Content-Type":  "application/json",
		"X-Custom":      "keep",
	}

	got := SanitizeHeaders(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 headers after sanitizing, got %v", got)
	}
	if got["Content-Type"] != "application/json" || got["X-Custom"] != "keep" {
		t.Fatalf("benign headers must survive: %v", got)
	}
}

func TestIsReprocessToken(t *testing.T) {
	t.Setenv("WEBHOOK_REPROCESS_SECRET", "s3cret")

	if !IsReprocessToken("s3cret") {
		t.Fatal("matching token must be accepted")
	}
	if IsReprocessToken("wrong") {
		t.Fatal("wrong token must be rejected")
	}
	if IsReprocessToken("") {
		t.Fatal("empty token must be rejected")
	}

	t.Setenv("WEBHOOK_REPROCESS_SECRET", "")
	if IsReprocessToken("s3cret") {
		t.Fatal("empty secret must disable reprocessing")
	}
}

func TestRecordDeliveryKeepsSlidingWindowInTestMode(t *testing.T) {
	repo := newFakeWebhookRepo()

	for i := 0; i < 5; i++ {
		RecordDelivery(repo, "cfg-1", DeliveryRecord{
			Method:         "POST",
			URL:            "/webhooks/receive/cfg-1",
			Body:           fmt.Sprintf(`{"n":%d}`, i),
			ResponseStatus: 200,
			TestMode:       true,
		})
	}

	if len(repo.logs) != models.TestModeLogLimit {
		t.Fatalf("test mode must keep %d rows, got %d", models.TestModeLogLimit, len(repo.logs))
	}
	// The survivors are the most recent deliveries.
	if repo.logs[0].Body != `{"n":3}` || repo.logs[1].Body != `{"n":4}` {
		t.Fatalf("wrong rows survived: %q, %q", repo.logs[0].Body, repo.logs[1].Body)
	}
}

func TestRecordDeliveryUnboundedOutsideTestMode(t *testing.T) {
	repo := newFakeWebhookRepo()

	for i := 0; i < 5; i++ {
		RecordDelivery(repo, "cfg-1", DeliveryRecord{Method: "POST", ResponseStatus: 200})
	}
	if len(repo.logs) != 5 {
		t.Fatalf("live mode must keep every row, got %d", len(repo.logs))
	}
}

func TestRecordDeliverySanitizesPersistedHeaders(t *testing.T) {
	repo := newFakeWebhookRepo()

	RecordDelivery(repo, "cfg-1", DeliveryRecord{
		Method:         "POST",
		Headers:        map[string]string{"Authorization": "Bearer x", "X-Req-Id": "42"},
		ResponseStatus: 400,
		Error:          "no field mappings configured",
	})

	if len(repo.logs) != 1 {
		t.Fatalf("expected one log row, got %d", len(repo.logs))
	}
	entry := repo.logs[0]
	if strings.Contains(entry.HeadersJSON, "Bearer") {
		t.Fatalf("credentials leaked into the log: %s", entry.HeadersJSON)
	}
	if !strings.Contains(entry.HeadersJSON, "X-Req-Id") {
		t.Fatalf("benign header missing from the log: %s", entry.HeadersJSON)
	}
	if entry.Error == "" || entry.ResponseStatus != 400 {
		t.Fatalf("failure metadata not persisted: %+v", entry)
	}
}
