package automation

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type AutomationController struct {
	Service AutomationService
}

func NewAutomationController(service AutomationService) *AutomationController {
	return &AutomationController{
		Service: service,
	}
}

// CreateRule godoc
// @Summary Create automation rule
// @Description Register a new automation rule for the running process
// @Tags automation
// @Accept json
// @Produce json
// @Param rule body AutomationRule true "Automation Rule"
// @Success 201 {object} AutomationRule
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/automation/rules [post]
func (ctrl *AutomationController) CreateRule(c *fiber.Ctx) error {
	var rule AutomationRule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	added, err := ctrl.Service.AddRule(c.UserContext(), rule)
	if err != nil {
		return ruleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

// GetRule godoc
// @Summary Get automation rule
// @Tags automation
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} AutomationRule
// @Failure 404 {object} map[string]interface{}
// @Router /api/automation/rules/{id} [get]
func (ctrl *AutomationController) GetRule(c *fiber.Ctx) error {
	rule, err := ctrl.Service.GetRule(c.UserContext(), c.Params("id"))
	if err != nil {
		return ruleError(c, err)
	}
	return c.JSON(rule)
}

// ListRules godoc
// @Summary List automation rules
// @Tags automation
// @Produce json
// @Success 200 {array} AutomationRule
// @Router /api/automation/rules [get]
func (ctrl *AutomationController) ListRules(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.ListRules(c.UserContext()))
}

func (ctrl *AutomationController) EnableRule(c *fiber.Ctx) error {
	rule, err := ctrl.Service.EnableRule(c.UserContext(), c.Params("id"))
	if err != nil {
		return ruleError(c, err)
	}
	return c.JSON(rule)
}

func (ctrl *AutomationController) DisableRule(c *fiber.Ctx) error {
	rule, err := ctrl.Service.DisableRule(c.UserContext(), c.Params("id"))
	if err != nil {
		return ruleError(c, err)
	}
	return c.JSON(rule)
}

// RunNow godoc
// @Summary Run automation pass
// @Description Evaluate all enabled rules immediately
// @Tags automation
// @Produce json
// @Success 200 {object} PassResult
// @Failure 409 {object} map[string]interface{}
// @Router /api/automation/run [post]
func (ctrl *AutomationController) RunNow(c *fiber.Ctx) error {
	result, err := ctrl.Service.RunNow(c.UserContext())
	if errors.Is(err, ErrPassInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

func ruleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrRuleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Rule not found"})
	case errors.Is(err, ErrDuplicateRule):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidRule):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
