package automation

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"go-crm-assistant/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAutomationApp(t *testing.T) (*fiber.App, *engineFixture) {
	t.Helper()
	f := newEngineFixture(t, notifyRule("daily"))
	svc := NewAutomationService(f.registry, f.engine, f.activity)
	app := fiber.New()
	NewAutomationApi(NewAutomationController(svc), &config.Config{SkipAuth: true}).Setup(app)
	return app, f
}

func TestListRulesEndpoint(t *testing.T) {
	app, _ := newTestAutomationApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/automation/rules", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rules []AutomationRule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "daily", rules[0].ID)
}

func TestCreateRuleEndpoint(t *testing.T) {
	app, f := newTestAutomationApp(t)

	body := `{"name":"Stock watch","trigger":"condition","enabled":true,
		"conditions":{"productStock":{"operator":"lt","value":3}},
		"actions":[{"type":"checkLowStock","parameters":{"threshold":3}}]}`
	req := httptest.NewRequest("POST", "/api/automation/rules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var rule AutomationRule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rule))
	assert.NotEmpty(t, rule.ID)
	assert.Len(t, f.registry.List(), 2)
	assert.Equal(t, []string{"automation_rule_created"}, f.activity.actions())
}

func TestCreateRuleEndpointValidation(t *testing.T) {
	app, _ := newTestAutomationApp(t)

	req := httptest.NewRequest("POST", "/api/automation/rules", strings.NewReader(`{"name":"x","trigger":"condition"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	dup := `{"id":"daily","name":"Again","trigger":"event"}`
	req = httptest.NewRequest("POST", "/api/automation/rules", strings.NewReader(dup))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestEnableDisableEndpoints(t *testing.T) {
	app, f := newTestAutomationApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/automation/rules/daily/disable", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	rule, err := f.registry.Get("daily")
	require.NoError(t, err)
	assert.False(t, rule.Enabled)

	resp, err = app.Test(httptest.NewRequest("POST", "/api/automation/rules/nope/enable", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRunNowEndpoint(t *testing.T) {
	app, f := newTestAutomationApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/automation/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result PassResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"daily"}, result.Fired)

	f.engine.running.Lock()
	defer f.engine.running.Unlock()
	resp, err = app.Test(httptest.NewRequest("POST", "/api/automation/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
