package system

import (
	"go-crm-assistant/internal/common/api"
	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthApi struct {
	config  *config.Config
	metrics *metrics.Metrics
}

func NewHealthApi(cfg *config.Config, m *metrics.Metrics) api.Route {
	return &HealthApi{config: cfg, metrics: m}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"app":         h.config.AppId,
			"environment": h.config.Environment,
			"store":       h.config.StoreDriver,
			"automation":  h.config.AutomationEnabled,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})))
}
