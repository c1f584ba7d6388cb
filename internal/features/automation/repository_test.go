package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddAssignsID(t *testing.T) {
	r, err := NewRuleRegistry(nil)
	require.NoError(t, err)

	rule := notifyRule("")
	rule.Name = "Unnamed id"
	added, err := r.Add(rule)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	got, err := r.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unnamed id", got.Name)
}

func TestRegistryRejectsDuplicatesAndInvalidRules(t *testing.T) {
	r, err := NewRuleRegistry([]AutomationRule{notifyRule("daily")})
	require.NoError(t, err)

	_, err = r.Add(notifyRule("daily"))
	assert.ErrorIs(t, err, ErrDuplicateRule)

	bad := notifyRule("bad")
	bad.Conditions.Time = "9am"
	_, err = r.Add(bad)
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.Len(t, r.List(), 1)
}

func TestNewRuleRegistryFailsOnInvalidSeed(t *testing.T) {
	bad := notifyRule("bad")
	bad.Trigger = "sometimes"
	_, err := NewRuleRegistry([]AutomationRule{bad})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestRegistryEnableDisable(t *testing.T) {
	r, err := NewRuleRegistry([]AutomationRule{notifyRule("daily")})
	require.NoError(t, err)

	rule, err := r.SetEnabled("daily", false)
	require.NoError(t, err)
	assert.False(t, rule.Enabled)

	_, err = r.SetEnabled("missing", true)
	assert.ErrorIs(t, err, ErrRuleNotFound)
	assert.ErrorIs(t, r.MarkRun("missing", testNow), ErrRuleNotFound)
}

func TestRegistryReturnsCopies(t *testing.T) {
	r, err := NewRuleRegistry(DefaultRules())
	require.NoError(t, err)

	rules := r.List()
	rules[2].Conditions.ProductStock.Value = 1000
	rules[0].Actions[0].Type = ActionGenerateInsights
	rules[0].Enabled = false

	got, err := r.Get(rules[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Conditions.ProductStock.Value)

	got, err = r.Get(rules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, ActionCheckLowStock, got.Actions[0].Type)
	assert.True(t, got.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rule AutomationRule
		ok   bool
	}{
		{"daily", notifyRule("x"), true},
		{"weekly without day", AutomationRule{Name: "w", Trigger: TriggerSchedule,
			Conditions: RuleConditions{Schedule: ScheduleWeekly, Time: "08:00"}}, false},
		{"unknown schedule", AutomationRule{Name: "m", Trigger: TriggerSchedule,
			Conditions: RuleConditions{Schedule: "monthly", Time: "08:00"}}, false},
		{"condition with both comparisons", AutomationRule{Name: "c", Trigger: TriggerCondition,
			Conditions: RuleConditions{
				ProductStock: &Comparison{Operator: OperatorLessThan, Value: 1},
				LastPurchase: &Comparison{Operator: OperatorGreaterThan, Value: 1},
			}}, false},
		{"condition with none", AutomationRule{Name: "c", Trigger: TriggerCondition}, false},
		{"lastPurchase with eq", AutomationRule{Name: "c", Trigger: TriggerCondition,
			Conditions: RuleConditions{LastPurchase: &Comparison{Operator: OperatorEquals, Value: 1}}}, false},
		{"lastPurchase in weeks", AutomationRule{Name: "c", Trigger: TriggerCondition,
			Conditions: RuleConditions{LastPurchase: &Comparison{Operator: OperatorGreaterThan, Value: 1, Unit: "weeks"}}}, false},
		{"event", AutomationRule{Name: "e", Trigger: TriggerEvent}, true},
		{"missing name", AutomationRule{Trigger: TriggerEvent}, false},
		{"action without type", AutomationRule{Name: "a", Trigger: TriggerEvent, Actions: []RuleAction{{}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRule)
			}
		})
	}
}
