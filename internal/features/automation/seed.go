package automation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRules is the built-in rule set used when no rules file is configured
func DefaultRules() []AutomationRule {
	return []AutomationRule{
		{
			ID:      "daily-low-stock-check",
			Name:    "Daily Low Stock Check",
			Trigger: TriggerSchedule,
			Conditions: RuleConditions{
				Schedule: ScheduleDaily,
				Time:     "09:00",
			},
			Actions: []RuleAction{
				{Type: ActionCheckLowStock, Parameters: map[string]any{"threshold": 10}},
				{Type: ActionSendNotification, Parameters: map[string]any{"message": "Daily low stock check completed"}},
			},
			Enabled: true,
		},
		{
			ID:      "weekly-sales-report",
			Name:    "Weekly Sales Report",
			Trigger: TriggerSchedule,
			Conditions: RuleConditions{
				Schedule: ScheduleWeekly,
				Time:     "08:00",
				Day:      "monday",
			},
			Actions: []RuleAction{
				{Type: ActionGenerateSalesReport, Parameters: map[string]any{"period": "last week"}},
				{Type: ActionAnalyzeTrends},
			},
			Enabled: true,
		},
		{
			ID:      "critical-stock-reorder",
			Name:    "Critical Stock Reorder",
			Trigger: TriggerCondition,
			Conditions: RuleConditions{
				ProductStock: &Comparison{Operator: OperatorLessThan, Value: 5},
			},
			Actions: []RuleAction{
				{Type: ActionSuggestReorder, Parameters: map[string]any{"threshold": 5, "targetQuantity": 50}},
			},
			Enabled: true,
		},
		{
			ID:      "inactive-customer-followup",
			Name:    "Inactive Customer Follow-up",
			Trigger: TriggerCondition,
			Conditions: RuleConditions{
				LastPurchase: &Comparison{Operator: OperatorGreaterThan, Value: 30, Unit: UnitDays},
			},
			Actions: []RuleAction{
				{Type: ActionIdentifyInactiveCustomers, Parameters: map[string]any{"days": 30}},
				{Type: ActionSuggestPromotion, Parameters: map[string]any{"days": 30, "discount": 10}},
			},
			Enabled: true,
		},
		{
			ID:      "weekly-performance-review",
			Name:    "Weekly Performance Review",
			Trigger: TriggerSchedule,
			Conditions: RuleConditions{
				Schedule: ScheduleWeekly,
				Time:     "17:00",
				Day:      "friday",
			},
			Actions: []RuleAction{
				{Type: ActionAnalyzePerformance},
				{Type: ActionGenerateInsights},
				{Type: ActionLogActivity, Parameters: map[string]any{"action": "weekly_review_completed"}},
			},
			Enabled: true,
		},
	}
}

// ParseRules decodes a YAML list of rules
func ParseRules(data []byte) ([]AutomationRule, error) {
	var rules []AutomationRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse automation rules: %w", err)
	}
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rules[i].Name, err)
		}
	}
	return rules, nil
}

// LoadRules reads the rule seed from path, or returns DefaultRules when path is empty
func LoadRules(path string) ([]AutomationRule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read automation rules: %w", err)
	}
	return ParseRules(data)
}
