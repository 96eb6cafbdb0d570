package router

import (
	"github.com/AutoGestorHQ/AutoGestor/app/controllers"
	"github.com/AutoGestorHQ/AutoGestor/internal/pkg/env"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

type AdminRouter struct {
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	admin := app.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))

	admin.Get("/webhooks", controllers.HandleAdminListWebhooks)
	admin.Post("/webhooks", controllers.HandleAdminCreateWebhook)
	admin.Get("/webhooks/:webhookId", controllers.HandleAdminGetWebhook)
	admin.Put("/webhooks/:webhookId", controllers.HandleAdminUpdateWebhook)
	admin.Delete("/webhooks/:webhookId", controllers.HandleAdminDeleteWebhook)
	admin.Get("/webhooks/:webhookId/logs", controllers.HandleAdminListWebhookLogs)
	admin.Post("/webhooks/:webhookId/reprocess", controllers.HandleAdminReprocessWebhook)
}

func NewAdminRouter() *AdminRouter {
	return &AdminRouter{}
}
