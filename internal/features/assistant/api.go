package assistant

import (
	"go-crm-assistant/internal/common/api"
	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type AssistantApi struct {
	controller *AssistantController
	socket     *SocketController
	config     *config.Config
}

func NewAssistantApi(controller *AssistantController, socket *SocketController, config *config.Config) api.Route {
	return &AssistantApi{
		controller: controller,
		socket:     socket,
		config:     config,
	}
}

func (h *AssistantApi) Setup(app *fiber.App) {
	group := app.Group("/api/assistant", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/interpret", h.controller.Interpret)
	group.Post("/parse", h.controller.Parse)
	group.Get("/intents", h.controller.ListIntents)
	group.Get("/reports/sales.xlsx", h.controller.ExportSales)
	group.Get("/ws", h.socket.RequireUpgrade, websocket.New(h.socket.HandleWebSocket))
}
