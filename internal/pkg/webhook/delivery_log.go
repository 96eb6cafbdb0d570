package webhook

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/AutoGestorHQ/AutoGestor/app/repository"
	"github.com/AutoGestorHQ/AutoGestor/internal/pkg/env"
	"github.com/goccy/go-json"
)

// ReprocessHeader carries the shared secret that marks a privileged
// internal replay, bypassing test-mode capture and the active gate.
const ReprocessHeader = "X-Webhook-Reprocess-Token"

// IsReprocessToken reports whether the presented header value matches the
// configured reprocess secret. An empty configured secret disables
// reprocessing entirely.
func IsReprocessToken(token string) bool {
	secret := env.GetEnv("WEBHOOK_REPROCESS_SECRET", "")
	if secret == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// SanitizeHeaders drops credential-bearing headers (case-insensitive)
// before a request is persisted.
func SanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization", "cookie":
			continue
		}
		out[k] = v
	}
	return out
}

// DeliveryRecord captures everything persisted about one inbound call.
type DeliveryRecord struct {
	Method         string
	URL            string
	Headers        map[string]string
	Body           string
	ResponseStatus int
	ResponseBody   string
	Error          string
	TestMode       bool
}

// RecordDelivery persists a webhook log row. In test mode the history is
// a sliding window: the oldest rows are evicted so at most
// models.TestModeLogLimit remain after the insert. Persistence is
// best-effort on every code path and never masks the original response.
func RecordDelivery(repo repository.WebhookRepository, webhookID string, rec DeliveryRecord) {
	if rec.TestMode {
		count, err := repo.CountLogs(webhookID)
		if err != nil {
			log.Printf("webhook %s: counting logs failed: %v", webhookID, err)
		} else if evict := int(count) - models.TestModeLogLimit + 1; evict > 0 {
			if err := repo.DeleteOldestLogs(webhookID, evict); err != nil {
				log.Printf("webhook %s: evicting old logs failed: %v", webhookID, err)
			}
		}
	}

	headersJSON, _ := json.Marshal(SanitizeHeaders(rec.Headers))
	entry := &models.WebhookLog{
		WebhookConfigID:     webhookID,
		Method:              rec.Method,
		URL:                 rec.URL,
		HeadersJSON:         string(headersJSON),
		Body:                rec.Body,
		ResponseStatus:      rec.ResponseStatus,
		ResponseBody:        rec.ResponseBody,
		Error:               rec.Error,
		ProcessedInTestMode: rec.TestMode,
	}
	if err := repo.CreateLog(entry); err != nil {
		log.Printf("webhook %s: persisting delivery log failed: %v", webhookID, err)
	}
}
