package router

import (
	"github.com/AutoGestorHQ/AutoGestor/app/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Public inbound webhook endpoint. Third-party platforms post here;
	// configs and mappings are re-read from the store on every call.
	webhooks := app.Group("/webhooks", limiter.New(limiter.Config{Max: 120}))
	webhooks.Post("/receive/:webhookId", controllers.HandleReceiveWebhook)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
