package system

import (
	"go-crm-assistant/internal/features/activity"
	"go-crm-assistant/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct{}

func NewDebugController() *DebugController {
	return &DebugController{}
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Get the caller's JWT claims and the actor recorded in activity logs
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	claims := utils.CurrentUser(ctx.UserContext())
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No user in context"})
	}

	return ctx.JSON(fiber.Map{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"roles":   claims.Roles,
		"actor":   activity.CurrentUserEmail(ctx.UserContext()),
	})
}
