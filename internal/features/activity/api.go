package activity

import (
	"go-crm-assistant/internal/common/api"
	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ActivityApi struct {
	ActivityController *ActivityController
	Config             *config.Config
}

func NewActivityApi(activityController *ActivityController, config *config.Config) api.Route {
	return &ActivityApi{
		ActivityController: activityController,
		Config:             config,
	}
}

func (api *ActivityApi) Setup(app *fiber.App) {
	group := app.Group("/api/activities", middleware.AuthMiddleware(api.Config.SkipAuth))
	group.Get("/", api.ActivityController.ListRecent)
}
