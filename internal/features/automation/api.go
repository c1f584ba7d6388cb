package automation

import (
	"go-crm-assistant/internal/common/api"
	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AutomationApi struct {
	controller *AutomationController
	config     *config.Config
}

func NewAutomationApi(controller *AutomationController, config *config.Config) api.Route {
	return &AutomationApi{
		controller: controller,
		config:     config,
	}
}

func (h *AutomationApi) Setup(app *fiber.App) {
	group := app.Group("/api/automation", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/rules", h.controller.ListRules)
	group.Get("/rules/:id", h.controller.GetRule)
	group.Post("/rules", h.controller.CreateRule)
	group.Post("/rules/:id/enable", h.controller.EnableRule)
	group.Post("/rules/:id/disable", h.controller.DisableRule)
	group.Post("/run", h.controller.RunNow)
}
