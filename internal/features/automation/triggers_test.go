package automation

import (
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/features/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyRule(at string, lastRun *time.Time) AutomationRule {
	return AutomationRule{
		ID:         "daily",
		Name:       "Daily",
		Trigger:    TriggerSchedule,
		Conditions: RuleConditions{Schedule: ScheduleDaily, Time: at},
		Enabled:    true,
		LastRun:    lastRun,
	}
}

func TestDailyScheduleFiresOncePerDay(t *testing.T) {
	snap := &snapshot.Snapshot{}

	tests := []struct {
		name    string
		now     time.Time
		lastRun *time.Time
		want    bool
	}{
		{"never run, past target", testNow, nil, true},
		{"ran earlier today", testNow, ptr(time.Date(2026, 10, 15, 9, 0, 30, 0, time.UTC)), false},
		{"ran yesterday", testNow, ptr(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)), true},
		{"before target time", time.Date(2026, 10, 15, 8, 59, 0, 0, time.UTC), nil, false},
		{"exactly at target", time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, err := ShouldFire(dailyRule("09:00", tt.lastRun), snap, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fired)
		})
	}
}

func TestWeeklySchedule(t *testing.T) {
	snap := &snapshot.Snapshot{}
	rule := func(day string, lastRun *time.Time) AutomationRule {
		return AutomationRule{
			Trigger:    TriggerSchedule,
			Conditions: RuleConditions{Schedule: ScheduleWeekly, Time: "09:00", Day: day},
			LastRun:    lastRun,
		}
	}

	tests := []struct {
		name string
		rule AutomationRule
		want bool
	}{
		{"matching day, never run", rule("Thursday", nil), true},
		{"day name is case-insensitive", rule("thursday", nil), true},
		{"other day", rule("friday", nil), false},
		{"ran exactly seven days ago", rule("thursday", ptr(testNow.AddDate(0, 0, -7))), false},
		{"ran eight days ago", rule("thursday", ptr(testNow.AddDate(0, 0, -8))), true},
		{"ran this morning", rule("thursday", ptr(testNow.Add(-5*time.Hour))), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, err := ShouldFire(tt.rule, snap, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fired)
		})
	}
}

func stockRule(op ComparisonOperator, value float64) AutomationRule {
	return AutomationRule{
		Trigger:    TriggerCondition,
		Conditions: RuleConditions{ProductStock: &Comparison{Operator: op, Value: value}},
	}
}

func products(quantities ...int) *snapshot.Snapshot {
	snap := &snapshot.Snapshot{}
	for _, q := range quantities {
		snap.Products = append(snap.Products, models.Product{Name: "p", Quantity: q})
	}
	return snap
}

func TestProductStockCondition(t *testing.T) {
	tests := []struct {
		name  string
		rule  AutomationRule
		snap  *snapshot.Snapshot
		fires bool
	}{
		{"one item below threshold", stockRule(OperatorLessThan, 10), products(50, 9, 30), true},
		{"all items at or above threshold", stockRule(OperatorLessThan, 10), products(10, 50), false},
		{"lte boundary", stockRule(OperatorLessOrEqual, 10), products(10), true},
		{"gt", stockRule(OperatorGreaterThan, 100), products(101), true},
		{"gte", stockRule(OperatorGreaterOrEqual, 100), products(99), false},
		{"eq", stockRule(OperatorEquals, 0), products(3, 0), true},
		{"no products", stockRule(OperatorLessThan, 10), products(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, err := ShouldFire(tt.rule, tt.snap, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.fires, fired)
		})
	}
}

func TestProductStockUnknownOperator(t *testing.T) {
	_, err := ShouldFire(stockRule("between", 10), products(1), testNow)
	assert.Error(t, err)
}

func purchaseRule(op ComparisonOperator, days float64, unit string) AutomationRule {
	return AutomationRule{
		Trigger:    TriggerCondition,
		Conditions: RuleConditions{LastPurchase: &Comparison{Operator: op, Value: days, Unit: unit}},
	}
}

func customersWithReceipts(receipts map[string][]time.Time, customers ...string) *snapshot.Snapshot {
	snap := &snapshot.Snapshot{}
	for _, c := range customers {
		snap.Customers = append(snap.Customers, models.Customer{Name: c})
		for _, at := range receipts[c] {
			snap.Receipts = append(snap.Receipts, models.Receipt{CustomerName: c, CreatedAt: at})
		}
	}
	return snap
}

func TestLastPurchaseCondition(t *testing.T) {
	recent := testNow.AddDate(0, 0, -2)
	old := testNow.AddDate(0, 0, -40)

	tests := []struct {
		name  string
		rule  AutomationRule
		snap  *snapshot.Snapshot
		fires bool
	}{
		{"gt: one customer lapsed", purchaseRule(OperatorGreaterThan, 30, UnitDays),
			customersWithReceipts(map[string][]time.Time{"Ann": {recent}, "Bob": {old}}, "Ann", "Bob"), true},
		{"gt: everyone recent", purchaseRule(OperatorGreaterThan, 30, UnitDays),
			customersWithReceipts(map[string][]time.Time{"Ann": {recent}, "Bob": {old, recent}}, "Ann", "Bob"), false},
		{"gt: customer without receipts counts as inactive", purchaseRule(OperatorGreaterThan, 30, ""),
			customersWithReceipts(map[string][]time.Time{"Ann": {recent}}, "Ann", "Cal"), true},
		{"lt: one recent buyer", purchaseRule(OperatorLessThan, 7, UnitDays),
			customersWithReceipts(map[string][]time.Time{"Bob": {old}, "Ann": {recent}}, "Bob", "Ann"), true},
		{"lt: customer without receipts does not match", purchaseRule(OperatorLessThan, 7, UnitDays),
			customersWithReceipts(nil, "Cal"), false},
		{"no customers", purchaseRule(OperatorGreaterThan, 30, UnitDays), &snapshot.Snapshot{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired, err := ShouldFire(tt.rule, tt.snap, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.fires, fired)
		})
	}
}

func TestLastPurchaseRejectsOtherUnits(t *testing.T) {
	snap := customersWithReceipts(nil, "Ann")
	_, err := ShouldFire(purchaseRule(OperatorGreaterThan, 2, "weeks"), snap, testNow)
	assert.Error(t, err)
}

func TestEventTriggerNeverFires(t *testing.T) {
	fired, err := ShouldFire(AutomationRule{Trigger: TriggerEvent}, products(0), testNow)
	require.NoError(t, err)
	assert.False(t, fired)
}
