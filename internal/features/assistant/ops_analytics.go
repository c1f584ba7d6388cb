package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/store"
)

const recentWindow = 7 * 24 * time.Hour

func (e *Executor) getBusinessInsights(ctx context.Context, _ Command) (Response, error) {
	snap := e.snapshots.FetchLenient(ctx)
	now := e.clock()

	revenue := snapshot.TotalRevenue(snap.Receipts)
	lowStock := len(snapshot.LowStock(snap.Products, snapshot.LowStockThreshold))
	recent := snapshot.CountSince(snap.Receipts, now, recentWindow)
	categories := snapshot.CategoryBreakdown(snap.Products)

	overview := map[string]any{
		"totalRevenue":  revenue,
		"productCount":  len(snap.Products),
		"lowStockCount": lowStock,
		"customerCount": len(snap.Customers),
		"orderCount":    len(snap.Orders),
		"recentSales":   recent,
	}

	var b strings.Builder
	b.WriteString("Business overview:\n")
	fmt.Fprintf(&b, "• Revenue (last %d sales): %s\n", len(snap.Receipts), money(revenue))
	fmt.Fprintf(&b, "• Products: %d (%d low on stock)\n", len(snap.Products), lowStock)
	fmt.Fprintf(&b, "• Customers: %d\n", len(snap.Customers))
	fmt.Fprintf(&b, "• Sales in the last 7 days: %d", recent)
	if len(categories) > 0 {
		fmt.Fprintf(&b, "\nLargest category: %s (%d products)", categories[0].Name, categories[0].Count)
	}

	suggestions := []string{"analyze trends", "predict sales"}
	if lowStock > 0 {
		suggestions = append([]string{"show low stock items"}, suggestions...)
	}

	return Response{
		Success: true,
		Message: b.String(),
		Data: map[string]any{
			"overview":   overview,
			"categories": categories,
		},
		Visualizations: []Visualization{
			{Type: VizBusinessOverview, Data: overview},
			{Type: VizCategoryDistribution, Data: categories},
		},
		FollowUpSuggestions: suggestions,
	}, nil
}

func (e *Executor) recentReceipts(ctx context.Context) ([]models.Receipt, error) {
	rows, err := e.store.Select(ctx, models.CollectionReceipts, store.Query{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      snapshot.ReceiptLimit,
	})
	if err != nil {
		return nil, err
	}
	return models.ReceiptsFromRows(rows), nil
}

func (e *Executor) analyzeTrends(ctx context.Context, _ Command) (Response, error) {
	receipts, err := e.recentReceipts(ctx)
	if err != nil {
		return Response{}, err
	}

	t := snapshot.WeekOverWeek(receipts, e.clock())
	msg := fmt.Sprintf("Sales trend: %s.\n• This week: %d transactions\n• Previous week: %d transactions\n• Change: %+.1f%%",
		t.Direction, t.CurrentWeek, t.PreviousWeek, t.ChangePercent)
	if t.CurrentWeek == 0 && t.PreviousWeek == 0 {
		msg = "No sales in the last two weeks yet, so there's no trend to show. Trends appear as soon as sales come in."
	}

	return Response{
		Success: true,
		Message: msg,
		Data:    t,
		Visualizations: []Visualization{{Type: VizTrend, Data: []map[string]any{
			{"label": "Previous week", "count": t.PreviousWeek},
			{"label": "This week", "count": t.CurrentWeek},
		}}},
		FollowUpSuggestions: []string{"predict sales", "show sales report for this week"},
	}, nil
}

func (e *Executor) generatePredictions(ctx context.Context, _ Command) (Response, error) {
	receipts, err := e.recentReceipts(ctx)
	if err != nil {
		return Response{}, err
	}

	pred, err := snapshot.Predict(receipts, e.clock())
	if errors.Is(err, snapshot.ErrNotEnoughHistory) {
		return Response{
			Success: false,
			Message: fmt.Sprintf("I need at least %d sales to make predictions, and there are %d so far. Check back once more sales are recorded.",
				snapshot.MinPredictionReceipts, len(receipts)),
			Data:                pred,
			FollowUpSuggestions: []string{"show sales report for this month", "analyze trends"},
		}, nil
	}
	if err != nil {
		return Response{}, err
	}

	return Response{
		Success: true,
		Message: fmt.Sprintf("Forecast for the next %d days (%s confidence, based on %d sales):\n• Expected orders: %d\n• Expected revenue: %s\n• Daily average: %.1f orders",
			snapshot.ForecastDays, pred.Confidence, pred.BasedOn, pred.PredictedOrders, money(pred.PredictedRevenue), pred.DailyAverage),
		Data:                pred,
		FollowUpSuggestions: []string{"analyze trends", "show low stock items"},
	}, nil
}

func (e *Executor) getStaffPerformance(ctx context.Context, _ Command) (Response, error) {
	staffRows, err := e.store.Select(ctx, models.CollectionStaff, store.Query{})
	if err != nil {
		return Response{}, err
	}
	orderRows, err := e.store.Select(ctx, models.CollectionOrders, store.Query{})
	if err != nil {
		return Response{}, err
	}

	staff := make([]models.Staff, 0, len(staffRows))
	for _, r := range staffRows {
		staff = append(staff, models.StaffFromRow(r))
	}
	stats := snapshot.StaffPerformance(staff, models.OrdersFromRows(orderRows))
	if len(stats) == 0 {
		return Response{
			Success: true,
			Message: "No staff members or staff orders are recorded yet.",
			Data:    stats,
		}, nil
	}

	var b strings.Builder
	b.WriteString("Staff performance:")
	for i, s := range stats {
		fmt.Fprintf(&b, "\n%d. %s: %d orders, %s", i+1, s.Name, s.Orders, money(s.Revenue))
	}
	return Response{
		Success:             true,
		Message:             b.String(),
		Data:                stats,
		Visualizations:      []Visualization{{Type: VizStaffPerformance, Data: stats}},
		FollowUpSuggestions: []string{"show business insights"},
	}, nil
}

const helpText = `Here's what I can do:

Inventory
• add 10 units of iPhone 15
• update iPhone stock to 50
• check stock for Samsung
• show low stock items

Customers
• create customer Jane Doe
• find customer Jane
• show history for Jane Doe

Sales
• create order of 2 iPhone 15 for Jane Doe
• create invoice for Jane Doe
• show sales report for this week

Insights
• show business insights
• analyze trends
• predict sales
• show staff performance`

func (e *Executor) showHelp(context.Context, Command) (Response, error) {
	return Response{
		Success:             true,
		Message:             helpText,
		FollowUpSuggestions: []string{"show low stock items", "show sales report for today", "show business insights"},
	}, nil
}
