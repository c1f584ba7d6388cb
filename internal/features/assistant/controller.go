package assistant

import (
	"errors"
	"strings"

	"go-crm-assistant/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AssistantController struct {
	Service AssistantService
}

func NewAssistantController(service AssistantService) *AssistantController {
	return &AssistantController{Service: service}
}

type interpretRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Interpret godoc
// @Summary Interpret an utterance
// @Description Classify a free-text command and execute it
// @Tags assistant
// @Accept json
// @Produce json
// @Success 200 {object} Interpretation
// @Failure 400 {object} map[string]interface{}
// @Router /api/assistant/interpret [post]
func (ctrl *AssistantController) Interpret(c *fiber.Ctx) error {
	var req interpretRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	result := ctrl.Service.Interpret(c.UserContext(), sessionID(c, req.SessionID), req.Message)
	return c.JSON(result)
}

// sessionID prefers the explicit id, then the X-Session-ID header, then the caller's identity
func sessionID(c *fiber.Ctx, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if h := c.Get("X-Session-ID"); h != "" {
		return h
	}
	if claims := utils.CurrentUser(c.UserContext()); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return c.IP()
}

// Parse classifies without executing
func (ctrl *AssistantController) Parse(c *fiber.Ctx) error {
	var req interpretRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	cmd := ctrl.Service.Parse(req.Message)
	if cmd == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No intent matched"})
	}
	return c.JSON(cmd)
}

// ListIntents returns the classifier table in evaluation order
func (ctrl *AssistantController) ListIntents(c *fiber.Ctx) error {
	type intentView struct {
		Intent   Intent   `json:"intent"`
		Action   string   `json:"action"`
		Patterns []string `json:"patterns"`
	}
	defs := ctrl.Service.Intents()
	out := make([]intentView, 0, len(defs))
	for _, d := range defs {
		v := intentView{Intent: d.Intent, Action: d.Action}
		for _, p := range d.Patterns {
			v.Patterns = append(v.Patterns, p.Pattern.String())
		}
		out = append(out, v)
	}
	return c.JSON(out)
}

// ExportSales godoc
// @Summary Export sales
// @Description Download the receipts of a period as an Excel workbook
// @Tags assistant
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param period query string false "Period token, default today"
// @Router /api/assistant/reports/sales.xlsx [get]
func (ctrl *AssistantController) ExportSales(c *fiber.Ctx) error {
	data, filename, err := ctrl.Service.ExportSales(c.UserContext(), c.Query("period"))
	if errors.Is(err, ErrUnknownPeriod) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
