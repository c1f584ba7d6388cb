package automation

import (
	"fmt"
	"strings"
	"time"

	"go-crm-assistant/internal/common/daterange"
	"go-crm-assistant/internal/features/snapshot"
)

const week = 7 * 24 * time.Hour

// parseClock reads an "HH:MM" time of day
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("time must be HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return 0, false
}

// ShouldFire evaluates a rule's trigger against the snapshot at now
func ShouldFire(rule AutomationRule, snap *snapshot.Snapshot, now time.Time) (bool, error) {
	switch rule.Trigger {
	case TriggerSchedule:
		return scheduleDue(rule, now)
	case TriggerCondition:
		return conditionMet(rule.Conditions, snap, now)
	case TriggerEvent:
		return false, nil
	default:
		return false, fmt.Errorf("unknown trigger %q", rule.Trigger)
	}
}

// scheduleDue fires daily rules once per calendar day and weekly rules once
// per seven days, both only after the target time of day.
func scheduleDue(rule AutomationRule, now time.Time) (bool, error) {
	c := rule.Conditions
	hour, minute, err := parseClock(c.Time)
	if err != nil {
		return false, err
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.Before(target) {
		return false, nil
	}

	switch c.Schedule {
	case ScheduleDaily:
		return rule.LastRun == nil || !daterange.SameDay(now, *rule.LastRun), nil
	case ScheduleWeekly:
		day, ok := parseWeekday(c.Day)
		if !ok {
			return false, fmt.Errorf("unknown weekday %q", c.Day)
		}
		if now.Weekday() != day {
			return false, nil
		}
		return rule.LastRun == nil || now.Sub(*rule.LastRun) > week, nil
	default:
		return false, fmt.Errorf("unknown schedule %q", c.Schedule)
	}
}

func conditionMet(c RuleConditions, snap *snapshot.Snapshot, now time.Time) (bool, error) {
	switch {
	case c.ProductStock != nil:
		for _, p := range snap.Products {
			ok, err := compare(float64(p.Quantity), c.ProductStock.Operator, c.ProductStock.Value)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case c.LastPurchase != nil:
		return anyCustomerMatches(c.LastPurchase, snap, now)
	default:
		return false, fmt.Errorf("condition rule has no condition")
	}
}

// anyCustomerMatches checks each customer's latest receipt against the cutoff.
// With gt a customer without receipts counts as inactive.
func anyCustomerMatches(c *Comparison, snap *snapshot.Snapshot, now time.Time) (bool, error) {
	if c.Unit != "" && c.Unit != UnitDays {
		return false, fmt.Errorf("unsupported lastPurchase unit %q", c.Unit)
	}
	cutoff := now.Add(-time.Duration(c.Value * float64(24*time.Hour)))

	for _, customer := range snap.Customers {
		last, ok := snapshot.LastPurchase(snap.Receipts, customer.Name)
		switch c.Operator {
		case OperatorGreaterThan:
			if !ok || last.Before(cutoff) {
				return true, nil
			}
		case OperatorLessThan:
			if ok && last.After(cutoff) {
				return true, nil
			}
		default:
			return false, fmt.Errorf("unsupported lastPurchase operator %q", c.Operator)
		}
	}
	return false, nil
}

func compare(actual float64, op ComparisonOperator, threshold float64) (bool, error) {
	switch op {
	case OperatorLessThan:
		return actual < threshold, nil
	case OperatorLessOrEqual:
		return actual <= threshold, nil
	case OperatorGreaterThan:
		return actual > threshold, nil
	case OperatorGreaterOrEqual:
		return actual >= threshold, nil
	case OperatorEquals:
		return actual == threshold, nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}
