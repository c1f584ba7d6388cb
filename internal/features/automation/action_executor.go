package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-crm-assistant/internal/common/daterange"
	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/features/activity"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/metrics"

	"github.com/d5/tengo/v2"
	"go.uber.org/zap"
)

var ErrUnknownAction = errors.New("unknown automation action")

const (
	defaultReorderTarget = 50
	defaultInactiveDays  = 30
	defaultPromotionPct  = 10
	defaultSalesPeriod   = daterange.Today

	entityTypeAutomation = "automation"
	entityTypeInventory  = "inventory"
	entityTypeCustomer   = "customer"
	entityTypeSales      = "sales"
)

// ActionExecutor runs the actions of a fired rule
type ActionExecutor interface {
	// ExecuteActions runs actions in order and stops at the first failure.
	// Unknown action types are logged and skipped.
	ExecuteActions(ctx context.Context, rule AutomationRule, snap *snapshot.Snapshot) error
	ExecuteAction(ctx context.Context, rule AutomationRule, action RuleAction, snap *snapshot.Snapshot) error
}

type actionHandler func(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error

type ActionExecutorImpl struct {
	activity activity.ActivityService
	metrics  *metrics.Metrics
	logger   *zap.Logger
	clock    func() time.Time
	handlers map[ActionType]actionHandler
}

func NewActionExecutor(activityService activity.ActivityService, m *metrics.Metrics, logger *zap.Logger) *ActionExecutorImpl {
	e := &ActionExecutorImpl{
		activity: activityService,
		metrics:  m,
		logger:   logger,
		clock:    time.Now,
	}
	e.handlers = map[ActionType]actionHandler{
		ActionCheckLowStock:             e.checkLowStock,
		ActionSendNotification:          e.sendNotification,
		ActionGenerateSalesReport:       e.generateSalesReport,
		ActionAnalyzeTrends:             e.analyzeTrends,
		ActionSuggestReorder:            e.suggestReorder,
		ActionLogActivity:               e.logActivity,
		ActionIdentifyInactiveCustomers: e.identifyInactiveCustomers,
		ActionSuggestPromotion:          e.suggestPromotion,
		ActionAnalyzePerformance:        e.analyzePerformance,
		ActionGenerateInsights:          e.generateInsights,
		ActionRunScript:                 e.runScript,
	}
	return e
}

func (e *ActionExecutorImpl) WithClock(clock func() time.Time) *ActionExecutorImpl {
	e.clock = clock
	return e
}

func (e *ActionExecutorImpl) ExecuteActions(ctx context.Context, rule AutomationRule, snap *snapshot.Snapshot) error {
	for i, action := range rule.Actions {
		err := e.ExecuteAction(ctx, rule, action, snap)
		if errors.Is(err, ErrUnknownAction) {
			e.logger.Warn("Skipping unknown automation action",
				zap.String("rule", rule.Name),
				zap.String("action", string(action.Type)))
			e.metrics.ActionExecuted(string(action.Type), "skipped")
			continue
		}
		if err != nil {
			e.metrics.ActionExecuted(string(action.Type), "failed")
			return fmt.Errorf("action %d (%s): %w", i, action.Type, err)
		}
		e.metrics.ActionExecuted(string(action.Type), "ok")
	}
	return nil
}

func (e *ActionExecutorImpl) ExecuteAction(ctx context.Context, rule AutomationRule, action RuleAction, snap *snapshot.Snapshot) error {
	handler, ok := e.handlers[action.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
	}
	params := action.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return handler(ctx, rule, params, snap)
}

func (e *ActionExecutorImpl) record(ctx context.Context, action, entityType, entityName string, details map[string]any) {
	if e.activity == nil {
		return
	}
	e.activity.Record(ctx, action, entityType, entityName, details)
}

func (e *ActionExecutorImpl) checkLowStock(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error {
	threshold := paramInt(params, "threshold", snapshot.LowStockThreshold)
	low := snapshot.LowStock(snap.Products, threshold)
	if len(low) == 0 {
		e.logger.Info("Low stock check: all products stocked", zap.String("rule", rule.Name), zap.Int("threshold", threshold))
		return nil
	}

	items := make([]map[string]any, 0, len(low))
	names := make([]string, 0, len(low))
	for _, p := range low {
		items = append(items, map[string]any{"name": p.Name, "quantity": p.Quantity})
		names = append(names, fmt.Sprintf("%s (%d)", p.Name, p.Quantity))
	}
	e.logger.Info(fmt.Sprintf("Low stock alert: %d products below %d units: %s", len(low), threshold, strings.Join(names, ", ")),
		zap.String("rule", rule.Name))
	e.record(ctx, "automation_low_stock_alert", entityTypeInventory, rule.Name, map[string]any{
		"threshold": threshold,
		"count":     len(low),
		"items":     items,
	})
	return nil
}

func (e *ActionExecutorImpl) sendNotification(ctx context.Context, rule AutomationRule, params map[string]any, _ *snapshot.Snapshot) error {
	message := paramString(params, "message", fmt.Sprintf("Automation %q fired", rule.Name))
	channel := paramString(params, "channel", "log")
	e.logger.Info("Automation notification: "+message,
		zap.String("rule", rule.Name),
		zap.String("channel", channel))
	e.record(ctx, "automation_notification", entityTypeAutomation, rule.Name, map[string]any{
		"message": message,
		"channel": channel,
	})
	return nil
}

func (e *ActionExecutorImpl) generateSalesReport(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error {
	period := paramString(params, "period", defaultSalesPeriod)
	r, ok := daterange.Resolve(period, e.clock())
	if !ok {
		return fmt.Errorf("unknown period %q", period)
	}

	receipts := snapshot.ReceiptsInRange(snap.Receipts, r)
	revenue := snapshot.TotalRevenue(receipts)
	top := snapshot.TopCustomers(receipts, 3)
	e.logger.Info(fmt.Sprintf("Sales report for %s: %d orders, $%.2f revenue", period, len(receipts), revenue),
		zap.String("rule", rule.Name))
	e.record(ctx, "automation_sales_report", entityTypeSales, period, map[string]any{
		"period":       period,
		"orderCount":   len(receipts),
		"totalRevenue": revenue,
		"topCustomers": top,
	})
	return nil
}

func (e *ActionExecutorImpl) analyzeTrends(ctx context.Context, rule AutomationRule, _ map[string]any, snap *snapshot.Snapshot) error {
	t := snapshot.WeekOverWeek(snap.Receipts, e.clock())
	e.logger.Info(fmt.Sprintf("Sales trend %s: %d transactions this week, %d the week before (%+.1f%%)",
		t.Direction, t.CurrentWeek, t.PreviousWeek, t.ChangePercent),
		zap.String("rule", rule.Name))
	e.record(ctx, "automation_trend_analysis", entityTypeSales, rule.Name, map[string]any{
		"currentWeek":   t.CurrentWeek,
		"previousWeek":  t.PreviousWeek,
		"changePercent": t.ChangePercent,
		"trend":         t.Direction,
	})
	return nil
}

func (e *ActionExecutorImpl) suggestReorder(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error {
	threshold := paramInt(params, "threshold", snapshot.LowStockThreshold)
	target := paramInt(params, "targetQuantity", defaultReorderTarget)

	low := snapshot.LowStock(snap.Products, threshold)
	if len(low) == 0 {
		return nil
	}
	suggestions := make([]map[string]any, 0, len(low))
	for _, p := range low {
		qty := target - p.Quantity
		if qty <= 0 {
			continue
		}
		suggestions = append(suggestions, map[string]any{
			"product":         p.Name,
			"currentQuantity": p.Quantity,
			"reorderQuantity": qty,
		})
		e.logger.Info(fmt.Sprintf("Reorder suggestion: order %d units of %s (currently %d)", qty, p.Name, p.Quantity),
			zap.String("rule", rule.Name))
	}
	if len(suggestions) == 0 {
		return nil
	}
	e.record(ctx, "automation_reorder_suggestion", entityTypeInventory, rule.Name, map[string]any{
		"threshold":      threshold,
		"targetQuantity": target,
		"suggestions":    suggestions,
	})
	return nil
}

func (e *ActionExecutorImpl) logActivity(ctx context.Context, rule AutomationRule, params map[string]any, _ *snapshot.Snapshot) error {
	action := paramString(params, "action", "automation_rule_fired")
	entityType := paramString(params, "entityType", entityTypeAutomation)
	entityName := paramString(params, "entityName", rule.Name)
	details, _ := params["details"].(map[string]any)
	if details == nil {
		details = map[string]any{"ruleId": rule.ID}
	}
	e.logger.Info("Automation activity: "+action, zap.String("rule", rule.Name))
	e.record(ctx, action, entityType, entityName, details)
	return nil
}

func (e *ActionExecutorImpl) inactiveCustomers(params map[string]any, snap *snapshot.Snapshot) (int, []models.Customer) {
	days := paramInt(params, "days", defaultInactiveDays)
	cutoff := e.clock().AddDate(0, 0, -days)
	return days, snapshot.InactiveCustomers(snap.Customers, snap.Receipts, cutoff)
}

func (e *ActionExecutorImpl) identifyInactiveCustomers(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error {
	days, inactive := e.inactiveCustomers(params, snap)
	names := make([]string, 0, len(inactive))
	for _, c := range inactive {
		names = append(names, c.Name)
	}
	e.logger.Info(fmt.Sprintf("%d customers have not purchased in %d days", len(inactive), days),
		zap.String("rule", rule.Name),
		zap.Strings("customers", names))
	if len(inactive) == 0 {
		return nil
	}
	e.record(ctx, "automation_inactive_customers", entityTypeCustomer, rule.Name, map[string]any{
		"days":      days,
		"count":     len(inactive),
		"customers": names,
	})
	return nil
}

func (e *ActionExecutorImpl) suggestPromotion(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error {
	days, inactive := e.inactiveCustomers(params, snap)
	if len(inactive) == 0 {
		return nil
	}
	discount := paramInt(params, "discount", defaultPromotionPct)
	e.logger.Info(fmt.Sprintf("Promotion suggestion: offer %d%% off to %d customers inactive for %d days", discount, len(inactive), days),
		zap.String("rule", rule.Name))
	e.record(ctx, "automation_promotion_suggestion", entityTypeCustomer, rule.Name, map[string]any{
		"discount":  discount,
		"days":      days,
		"customers": len(inactive),
	})
	return nil
}

func (e *ActionExecutorImpl) analyzePerformance(ctx context.Context, rule AutomationRule, _ map[string]any, snap *snapshot.Snapshot) error {
	stats := snapshot.StaffPerformance(nil, snap.Orders)
	top := snapshot.TopCustomers(snap.Receipts, 5)
	e.logger.Info(fmt.Sprintf("Performance review: %d staff with orders, %d top customers", len(stats), len(top)),
		zap.String("rule", rule.Name))
	e.record(ctx, "automation_performance_review", entityTypeSales, rule.Name, map[string]any{
		"staff":        stats,
		"topCustomers": top,
	})
	return nil
}

func (e *ActionExecutorImpl) generateInsights(ctx context.Context, rule AutomationRule, _ map[string]any, snap *snapshot.Snapshot) error {
	insights := summarize(snap, e.clock())
	e.logger.Info(fmt.Sprintf("Business insights: $%.2f revenue, %d low stock products, %d customers, %d sales this week",
		insights["revenue"], insights["lowStockCount"], insights["customerCount"], insights["recentSales"]),
		zap.String("rule", rule.Name))
	insights["categories"] = snapshot.CategoryBreakdown(snap.Products)
	e.record(ctx, "automation_insights", entityTypeAutomation, rule.Name, insights)
	return nil
}

// summarize exposes snapshot aggregates to insights and scripts
func summarize(snap *snapshot.Snapshot, now time.Time) map[string]any {
	return map[string]any{
		"revenue":       snapshot.TotalRevenue(snap.Receipts),
		"productCount":  len(snap.Products),
		"lowStockCount": len(snapshot.LowStock(snap.Products, snapshot.LowStockThreshold)),
		"customerCount": len(snap.Customers),
		"orderCount":    len(snap.Orders),
		"receiptCount":  len(snap.Receipts),
		"recentSales":   snapshot.CountSince(snap.Receipts, now, week),
	}
}

// runScript evaluates a tengo script with the snapshot aggregates in scope.
// The script may set `alert` and `message`; a true alert is logged and recorded.
func (e *ActionExecutorImpl) runScript(ctx context.Context, rule AutomationRule, params map[string]any, snap *snapshot.Snapshot) error {
	source := paramString(params, "script", "")
	if source == "" {
		return fmt.Errorf("script content is required")
	}

	script := tengo.NewScript([]byte(source))
	for name, value := range summarize(snap, e.clock()) {
		if err := script.Add(name, value); err != nil {
			return fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}
	_ = script.Add("alert", false)
	_ = script.Add("message", "")

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile script: %w", err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}

	if !compiled.Get("alert").Bool() {
		return nil
	}
	message := compiled.Get("message").String()
	if message == "" {
		message = fmt.Sprintf("Script alert from %q", rule.Name)
	}
	e.logger.Info("Automation script alert: "+message, zap.String("rule", rule.Name))
	e.record(ctx, "automation_script_alert", entityTypeAutomation, rule.Name, map[string]any{"message": message})
	return nil
}

func paramString(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func paramInt(params map[string]any, key string, fallback int) int {
	return int(models.ParseInt64(params[key], int64(fallback)))
}
