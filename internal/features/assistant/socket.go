package assistant

import (
	"context"
	"strings"

	"go-crm-assistant/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// socketClaimsLocal carries the caller's claims across the upgrade, which only copies string-keyed locals
const socketClaimsLocal = "assistant_claims"

// SocketController serves the assistant as a chat over a websocket. Each
// connection is one session.
type SocketController struct {
	Service AssistantService
	logger  *zap.Logger
}

func NewSocketController(service AssistantService, logger *zap.Logger) *SocketController {
	return &SocketController{Service: service, logger: logger}
}

// RequireUpgrade rejects plain HTTP requests on the socket route
func (h *SocketController) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if claims := utils.CurrentUser(c.UserContext()); claims != nil {
		c.Locals(socketClaimsLocal, claims)
	}
	return c.Next()
}

func (h *SocketController) HandleWebSocket(c *websocket.Conn) {
	ctx := context.Background()
	if claims, ok := c.Locals(socketClaimsLocal).(*utils.UserClaims); ok {
		ctx = utils.WithClaims(ctx, claims)
	}
	session := c.Query("sessionId")
	if session == "" {
		session = uuid.NewString()
	}
	log := h.logger.With(zap.String("session", session))
	log.Debug("Assistant socket opened")

	for {
		var req interpretRequest
		if err := c.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Assistant socket read failed", zap.Error(err))
			}
			break
		}
		if strings.TrimSpace(req.Message) == "" {
			if err := c.WriteJSON(fiber.Map{"error": "message is required"}); err != nil {
				break
			}
			continue
		}

		result := h.Service.Interpret(ctx, session, req.Message)
		if err := c.WriteJSON(result); err != nil {
			log.Warn("Assistant socket write failed", zap.Error(err))
			break
		}
	}
	log.Debug("Assistant socket closed")
}
