package controllers

import (
	"errors"
	"strconv"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/AutoGestorHQ/AutoGestor/internal/pkg/webhook"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type fieldMappingRequest struct {
	ExternalField  string `json:"external_field"`
	CanonicalField string `json:"canonical_field"`
	Prefix         string `json:"prefix"`
	Suffix         string `json:"suffix"`
}

type webhookConfigRequest struct {
	Name          string                `json:"name"`
	IsActive      *bool                 `json:"is_active"`
	TestMode      *bool                 `json:"test_mode"`
	FieldMappings []fieldMappingRequest `json:"field_mappings"`
}

// HandleAdminListWebhooks returns all webhook configs with their mappings.
func HandleAdminListWebhooks(c *fiber.Ctx) error {
	repos := getRepositories()
	cfgs, err := repos.Webhook.ListConfigs()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("listing webhooks failed"))
	}
	return c.JSON(fiber.Map{"success": true, "data": cfgs})
}

// HandleAdminCreateWebhook creates a webhook config with its ordered mappings.
func HandleAdminCreateWebhook(c *fiber.Ctx) error {
	var req webhookConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}

	cfg := &models.WebhookConfig{
		Name:     req.Name,
		IsActive: true,
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	if req.TestMode != nil {
		cfg.TestMode = *req.TestMode
	}
	cfg.FieldMappings = mappingsFromRequest("", req.FieldMappings)

	if err := cfg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(err.Error()))
	}

	repos := getRepositories()
	if err := repos.Webhook.CreateConfig(cfg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("creating webhook failed"))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cfg})
}

// HandleAdminGetWebhook returns a single webhook config.
func HandleAdminGetWebhook(c *fiber.Ctx) error {
	repos := getRepositories()
	cfg, err := repos.Webhook.GetConfigWithMappings(c.Params("webhookId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("webhook not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("loading webhook failed"))
	}
	return c.JSON(fiber.Map{"success": true, "data": cfg})
}

// HandleAdminUpdateWebhook updates a webhook config and replaces its
// mapping list when one is supplied.
func HandleAdminUpdateWebhook(c *fiber.Ctx) error {
	repos := getRepositories()
	cfg, err := repos.Webhook.GetConfigWithMappings(c.Params("webhookId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("webhook not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("loading webhook failed"))
	}

	var req webhookConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("invalid request body"))
	}

	if req.Name != "" {
		cfg.Name = req.Name
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	if req.TestMode != nil {
		cfg.TestMode = *req.TestMode
	}
	if err := cfg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody(err.Error()))
	}

	if err := repos.Webhook.SaveConfig(cfg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("updating webhook failed"))
	}
	if req.FieldMappings != nil {
		mappings := mappingsFromRequest(cfg.ID, req.FieldMappings)
		if err := repos.Webhook.ReplaceMappings(cfg.ID, mappings); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("updating field mappings failed"))
		}
	}

	cfg, err = repos.Webhook.GetConfigWithMappings(cfg.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("loading webhook failed"))
	}
	return c.JSON(fiber.Map{"success": true, "data": cfg})
}

// HandleAdminDeleteWebhook soft deletes a webhook config.
func HandleAdminDeleteWebhook(c *fiber.Ctx) error {
	repos := getRepositories()
	if err := repos.Webhook.DeleteConfig(c.Params("webhookId")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("deleting webhook failed"))
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"deleted": true}})
}

// HandleAdminListWebhookLogs returns the most recent delivery logs.
func HandleAdminListWebhookLogs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	repos := getRepositories()
	logs, err := repos.Webhook.ListLogs(c.Params("webhookId"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("listing logs failed"))
	}
	return c.JSON(fiber.Map{"success": true, "data": logs})
}

// HandleAdminReprocessWebhook replays the last captured test payload
// through the full processing pipeline, bypassing test/active gating the
// same way a reprocess-token request would.
func HandleAdminReprocessWebhook(c *fiber.Ctx) error {
	repos := getRepositories()
	cfg, err := repos.Webhook.GetConfigWithMappings(c.Params("webhookId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorBody("webhook not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("loading webhook failed"))
	}
	if cfg.LastTestPayload == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("no captured payload to reprocess"))
	}

	payload := decodePayload([]byte(cfg.LastTestPayload))
	status, body, errText := executeProcessing(repos, cfg, payload)

	record := webhook.DeliveryRecord{
		Method: c.Method(),
		URL:    c.OriginalURL(),
		Body:   cfg.LastTestPayload,
	}
	return respondAndLog(c, repos, cfg.ID, record, status, body, errText)
}

func mappingsFromRequest(webhookID string, reqs []fieldMappingRequest) []models.FieldMapping {
	mappings := make([]models.FieldMapping, 0, len(reqs))
	for i, r := range reqs {
		mappings = append(mappings, models.FieldMapping{
			WebhookConfigID: webhookID,
			Position:        i,
			ExternalField:   r.ExternalField,
			CanonicalField:  r.CanonicalField,
			Prefix:          r.Prefix,
			Suffix:          r.Suffix,
		})
	}
	return mappings
}
