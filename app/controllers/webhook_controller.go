package controllers

import (
	"errors"
	"fmt"
	"log"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/AutoGestorHQ/AutoGestor/app/repository"
	"github.com/AutoGestorHQ/AutoGestor/internal/pkg/metrics/counter"
	"github.com/AutoGestorHQ/AutoGestor/internal/pkg/webhook"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// getRepositories is a seam so handler tests can swap in fakes.
var getRepositories = repository.GetGlobalRepositories

// HandleReceiveWebhook is the public inbound endpoint:
// POST /webhooks/receive/:webhookId with an arbitrary JSON object body.
// Every code path, success or failure, persists a WebhookLog row before
// replying.
func HandleReceiveWebhook(c *fiber.Ctx) error {
	webhookID := c.Params("webhookId")
	rawBody := append([]byte(nil), c.BodyRaw()...)
	headers := collectHeaders(c)

	repos := getRepositories()
	record := webhook.DeliveryRecord{
		Method:  c.Method(),
		URL:     c.OriginalURL(),
		Headers: headers,
		Body:    string(rawBody),
	}

	cfg, err := repos.Webhook.GetConfigWithMappings(webhookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondAndLog(c, repos, webhookID, record, fiber.StatusNotFound,
				errorBody("webhook not found"), "webhook not found")
		}
		log.Printf("webhook %s: config lookup failed: %v", webhookID, err)
		return respondAndLog(c, repos, webhookID, record, fiber.StatusInternalServerError,
			errorBody("internal error"), err.Error())
	}

	payload := decodePayload(rawBody)
	reprocess := webhook.IsReprocessToken(c.Get(webhook.ReprocessHeader))

	// Test mode captures the payload for inspection without touching
	// business data; a privileged reprocess bypasses the capture.
	if cfg.TestMode && !reprocess {
		if err := repos.Webhook.UpdateLastTestPayload(cfg.ID, string(rawBody)); err != nil {
			log.Printf("webhook %s: storing test payload failed: %v", cfg.ID, err)
		}
		record.TestMode = true
		return respondAndLog(c, repos, cfg.ID, record, fiber.StatusOK, fiber.Map{
			"success": true,
			"data":    fiber.Map{"test_mode": true, "message": "payload captured"},
		}, "")
	}

	if !cfg.IsActive && !reprocess {
		return respondAndLog(c, repos, cfg.ID, record, fiber.StatusBadRequest,
			errorBody("webhook is not active"), "webhook is not active")
	}

	status, body, errText := executeProcessing(repos, cfg, payload)
	return respondAndLog(c, repos, cfg.ID, record, status, body, errText)
}

// executeProcessing runs the state machine and maps its outcome or error
// to an HTTP status and response body. A panic inside processing is
// converted to a 500 so the handler never crashes the process.
func executeProcessing(repos *repository.Repositories, cfg *models.WebhookConfig, payload map[string]any) (int, fiber.Map, string) {
	result, err := func() (r *webhook.Result, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic during webhook processing: %v", p)
			}
		}()
		return webhook.NewProcessor(repos).Process(cfg, payload)
	}()

	if err != nil {
		if errors.Is(err, webhook.ErrNoMappings) || errors.Is(err, webhook.ErrEmailNotMapped) {
			return fiber.StatusBadRequest, errorBody(err.Error()), err.Error()
		}
		log.Printf("webhook %s: processing failed: %v", cfg.ID, err)
		return fiber.StatusInternalServerError, errorBody("internal error while processing webhook"), err.Error()
	}

	status := fiber.StatusOK
	if result.Action == webhook.ActionCreated {
		status = fiber.StatusCreated
	}
	return status, fiber.Map{"success": true, "data": result}, ""
}

// respondAndLog persists the delivery log (best-effort), bumps the redis
// counters and writes the JSON response.
func respondAndLog(c *fiber.Ctx, repos *repository.Repositories, webhookID string, record webhook.DeliveryRecord, status int, body fiber.Map, errText string) error {
	record.ResponseStatus = status
	record.Error = errText
	if encoded, err := json.Marshal(body); err == nil {
		record.ResponseBody = string(encoded)
	}
	webhook.RecordDelivery(repos.Webhook, webhookID, record)

	_ = counter.AddWebhookDelivery(webhookID)
	if status >= fiber.StatusBadRequest {
		_ = counter.AddWebhookFailure(webhookID)
	}

	return c.Status(status).JSON(body)
}

// decodePayload treats anything that is not a JSON object as an empty
// object, per the endpoint contract.
func decodePayload(rawBody []byte) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload == nil {
		return map[string]any{}
	}
	return payload
}

func collectHeaders(c *fiber.Ctx) map[string]string {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})
	return headers
}

func errorBody(message string) fiber.Map {
	return fiber.Map{"success": false, "error": fiber.Map{"message": message}}
}
