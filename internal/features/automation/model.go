package automation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type TriggerType string

const (
	TriggerSchedule  TriggerType = "schedule"
	TriggerCondition TriggerType = "condition"
	// TriggerEvent is reserved; event rules never fire
	TriggerEvent TriggerType = "event"
)

const (
	ScheduleDaily  = "daily"
	ScheduleWeekly = "weekly"
)

type ComparisonOperator string

const (
	OperatorLessThan       ComparisonOperator = "lt"
	OperatorLessOrEqual    ComparisonOperator = "lte"
	OperatorGreaterThan    ComparisonOperator = "gt"
	OperatorGreaterOrEqual ComparisonOperator = "gte"
	OperatorEquals         ComparisonOperator = "eq"
)

// UnitDays is the only unit lastPurchase conditions understand
const UnitDays = "days"

type ActionType string

const (
	ActionCheckLowStock             ActionType = "checkLowStock"
	ActionSendNotification          ActionType = "sendNotification"
	ActionGenerateSalesReport       ActionType = "generateSalesReport"
	ActionAnalyzeTrends             ActionType = "analyzeTrends"
	ActionSuggestReorder            ActionType = "suggestReorder"
	ActionLogActivity               ActionType = "logActivity"
	ActionIdentifyInactiveCustomers ActionType = "identifyInactiveCustomers"
	ActionSuggestPromotion          ActionType = "suggestPromotion"
	ActionAnalyzePerformance        ActionType = "analyzePerformance"
	ActionGenerateInsights          ActionType = "generateInsights"
	ActionRunScript                 ActionType = "runScript"
)

type Comparison struct {
	Operator ComparisonOperator `json:"operator" yaml:"operator"`
	Value    float64            `json:"value" yaml:"value"`
	Unit     string             `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// RuleConditions is shaped by the trigger: schedule rules use Schedule, Time
// and Day; condition rules set exactly one of ProductStock or LastPurchase.
type RuleConditions struct {
	Schedule     string      `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Time         string      `json:"time,omitempty" yaml:"time,omitempty"`
	Day          string      `json:"day,omitempty" yaml:"day,omitempty"`
	ProductStock *Comparison `json:"productStock,omitempty" yaml:"productStock,omitempty"`
	LastPurchase *Comparison `json:"lastPurchase,omitempty" yaml:"lastPurchase,omitempty"`
}

type RuleAction struct {
	Type       ActionType     `json:"type" yaml:"type"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type AutomationRule struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Trigger    TriggerType    `json:"trigger" yaml:"trigger"`
	Conditions RuleConditions `json:"conditions" yaml:"conditions"`
	Actions    []RuleAction   `json:"actions" yaml:"actions"`
	Enabled    bool           `json:"enabled" yaml:"enabled"`
	LastRun    *time.Time     `json:"lastRun,omitempty" yaml:"-"`
	NextRun    *time.Time     `json:"nextRun,omitempty" yaml:"-"`
}

var ErrInvalidRule = errors.New("invalid automation rule")

func invalidRule(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRule, fmt.Sprintf(format, args...))
}

// Validate checks that the conditions fit the trigger type
func (r *AutomationRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalidRule("name is required")
	}
	for i, a := range r.Actions {
		if a.Type == "" {
			return invalidRule("action %d has no type", i)
		}
	}

	c := r.Conditions
	switch r.Trigger {
	case TriggerSchedule:
		if _, _, err := parseClock(c.Time); err != nil {
			return invalidRule("%v", err)
		}
		switch c.Schedule {
		case ScheduleDaily:
		case ScheduleWeekly:
			if _, ok := parseWeekday(c.Day); !ok {
				return invalidRule("weekly schedule needs a weekday, got %q", c.Day)
			}
		default:
			return invalidRule("unknown schedule %q", c.Schedule)
		}
	case TriggerCondition:
		if (c.ProductStock == nil) == (c.LastPurchase == nil) {
			return invalidRule("condition rules need exactly one of productStock or lastPurchase")
		}
		if c.ProductStock != nil && !validOperator(c.ProductStock.Operator) {
			return invalidRule("unknown operator %q", c.ProductStock.Operator)
		}
		if lp := c.LastPurchase; lp != nil {
			if lp.Operator != OperatorGreaterThan && lp.Operator != OperatorLessThan {
				return invalidRule("lastPurchase supports gt and lt, got %q", lp.Operator)
			}
			if lp.Unit != "" && lp.Unit != UnitDays {
				return invalidRule("lastPurchase unit must be %q, got %q", UnitDays, lp.Unit)
			}
		}
	case TriggerEvent:
	default:
		return invalidRule("unknown trigger %q", r.Trigger)
	}
	return nil
}

func validOperator(op ComparisonOperator) bool {
	switch op {
	case OperatorLessThan, OperatorLessOrEqual, OperatorGreaterThan, OperatorGreaterOrEqual, OperatorEquals:
		return true
	}
	return false
}

// clone copies the rule so callers cannot mutate registry state
func (r AutomationRule) clone() AutomationRule {
	out := r
	if r.LastRun != nil {
		t := *r.LastRun
		out.LastRun = &t
	}
	if r.NextRun != nil {
		t := *r.NextRun
		out.NextRun = &t
	}
	if r.Conditions.ProductStock != nil {
		c := *r.Conditions.ProductStock
		out.Conditions.ProductStock = &c
	}
	if r.Conditions.LastPurchase != nil {
		c := *r.Conditions.LastPurchase
		out.Conditions.LastPurchase = &c
	}
	out.Actions = make([]RuleAction, len(r.Actions))
	copy(out.Actions, r.Actions)
	return out
}
