package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-crm-assistant/internal/common/daterange"
	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/features/activity"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/store"
	"go-crm-assistant/pkg/utils"

	"go.uber.org/zap"
)

// InvoiceTerms is how long after issue an invoice falls due
const InvoiceTerms = 30 * 24 * time.Hour

type salesPoint struct {
	Date     string  `json:"date"`
	Total    float64 `json:"total"`
	Customer string  `json:"customer"`
}

// createOrder writes the order and then decrements stock. The two writes are
// independent: a failed decrement leaves the order in place.
func (e *Executor) createOrder(ctx context.Context, cmd Command) (Response, error) {
	customerTerm := cmd.Entities.SearchTerm
	productTerm := cmd.Entities.ProductName
	if customerTerm == "" || productTerm == "" {
		return invalid("I need the product, quantity and customer for the order.",
			`create order of 2 iPhone 15 for Jane Doe`,
			`sell 3 Wireless Mouse to John Smith`,
		), nil
	}
	qty := 1
	if cmd.Entities.Quantity != nil {
		qty = *cmd.Entities.Quantity
	}
	if qty < 1 {
		return invalid("An order needs at least one unit.", fmt.Sprintf("create order of 1 %s for %s", productTerm, customerTerm)), nil
	}

	customer, err := e.lookupCustomer(ctx, customerTerm)
	if err != nil {
		return Response{}, err
	}
	if customer == nil {
		return customerNotFound(customerTerm), nil
	}

	rows, err := e.store.Select(ctx, models.CollectionProducts, store.Query{
		Filters: []store.Filter{store.ILike("name", productTerm)},
		Limit:   1,
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success:             true,
			Message:             fmt.Sprintf("I couldn't find a product matching %q.", productTerm),
			FollowUpSuggestions: []string{fmt.Sprintf("add %d units of %s", qty, productTerm)},
		}, nil
	}
	product := models.ProductFromRow(rows[0])
	if product.Quantity < qty {
		return invalid(fmt.Sprintf("Only %d units of %s are in stock.", product.Quantity, product.Name),
			fmt.Sprintf("create order of %d %s for %s", product.Quantity, product.Name, customer.Name),
			fmt.Sprintf("update %s stock to %d", product.Name, qty),
		), nil
	}

	total := product.Price * float64(qty)
	row := models.Row{
		"customer_name": customer.Name,
		"product_name":  product.Name,
		"quantity":      qty,
		"total":         total,
		"status":        "pending",
		"created_by":    activity.CurrentUserEmail(ctx),
		"created_at":    e.clock(),
	}
	if staff := e.actingStaff(ctx); staff != nil {
		row["staff_name"] = staff.Name
	}
	orderRow, err := e.store.Insert(ctx, models.CollectionOrders, row)
	if err != nil {
		return Response{}, err
	}

	err = e.store.Update(ctx, models.CollectionProducts,
		[]store.Filter{store.Eq("id", product.ID)},
		models.Row{"quantity": product.Quantity - qty})
	if err != nil {
		return Response{}, err
	}

	order := models.OrderFromRow(orderRow)
	return Response{
		Success: true,
		Message: fmt.Sprintf("Created order for %s: %d x %s, total %s.\n%s now has %d units left.",
			customer.Name, qty, product.Name, money(total), product.Name, product.Quantity-qty),
		Data:                order,
		FollowUpSuggestions: []string{"create invoice for " + customer.Name},
	}, nil
}

// actingStaff resolves the authenticated user to a staff member, by email
// first and then by user id against the staff name.
func (e *Executor) actingStaff(ctx context.Context) *models.Staff {
	claims := utils.CurrentUser(ctx)
	if claims == nil {
		return nil
	}
	for _, f := range []store.Filter{store.Eq("email", claims.Email), store.Eq("name", claims.UserID)} {
		if f.Value == "" {
			continue
		}
		rows, err := e.store.Select(ctx, models.CollectionStaff, store.Query{Filters: []store.Filter{f}, Limit: 1})
		if err != nil {
			e.logger.Warn("Staff lookup failed", zap.String("field", f.Field), zap.Error(err))
			return nil
		}
		if len(rows) > 0 {
			staff := models.StaffFromRow(rows[0])
			return &staff
		}
	}
	return nil
}

// orderSuggestions offers a complete order command for customer using the
// first product in stock. It is empty when nothing can be sold.
func (e *Executor) orderSuggestions(ctx context.Context, customer string) []string {
	rows, err := e.store.Select(ctx, models.CollectionProducts, store.Query{
		Filters: []store.Filter{store.Gte("quantity", 1)},
		OrderBy: "name",
		Limit:   1,
	})
	if err != nil || len(rows) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("create order of 1 %s for %s", rows[0].String("name"), customer)}
}

func (e *Executor) createInvoice(ctx context.Context, cmd Command) (Response, error) {
	term := cmd.Entities.SearchTerm
	if term == "" {
		return invalid("Who should the invoice be for?", `create invoice for Jane Doe`), nil
	}

	customer, err := e.lookupCustomer(ctx, term)
	if err != nil {
		return Response{}, err
	}
	if customer == nil {
		return customerNotFound(term), nil
	}

	rows, err := e.store.Select(ctx, models.CollectionOrders, store.Query{
		Filters:    []store.Filter{store.Eq("customer_name", customer.Name)},
		OrderBy:    "created_at",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success:             true,
			Message:             fmt.Sprintf("%s has no orders to invoice yet.", customer.Name),
			FollowUpSuggestions: e.orderSuggestions(ctx, customer.Name),
		}, nil
	}

	order := models.OrderFromRow(rows[0])
	now := e.clock()
	due := now.Add(InvoiceTerms)
	invoice, err := e.store.Insert(ctx, models.CollectionInvoices, models.Row{
		"customer_name": customer.Name,
		"customer_id":   customer.ID,
		"order_id":      order.ID,
		"amount":        order.Total,
		"status":        "unpaid",
		"due_date":      due,
		"created_at":    now,
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		Success:             true,
		Message:             fmt.Sprintf("Created invoice for %s: %s due %s.", customer.Name, money(order.Total), formatDate(due)),
		Data:                invoice,
		FollowUpSuggestions: []string{"show history for " + customer.Name},
	}, nil
}

func (e *Executor) salesRange(cmd Command) (string, daterange.Range) {
	period := cmd.Entities.Period
	if period == "" {
		period = daterange.Today
	}
	if cmd.Parameters.DateRange != nil {
		return period, *cmd.Parameters.DateRange
	}
	r, ok := daterange.Resolve(period, e.clock())
	if !ok {
		period = daterange.Today
		r, _ = daterange.Resolve(period, e.clock())
	}
	return period, r
}

// SalesInRange returns receipts created within r, oldest first
func (e *Executor) SalesInRange(ctx context.Context, r daterange.Range) ([]models.Receipt, error) {
	rows, err := e.store.Select(ctx, models.CollectionReceipts, store.Query{
		Filters: []store.Filter{store.Gte("created_at", r.Start), store.Lte("created_at", r.End)},
		OrderBy: "created_at",
	})
	if err != nil {
		return nil, err
	}
	return models.ReceiptsFromRows(rows), nil
}

func (e *Executor) generateSalesReport(ctx context.Context, cmd Command) (Response, error) {
	period, r := e.salesRange(cmd)
	receipts, err := e.SalesInRange(ctx, r)
	if err != nil {
		return Response{}, err
	}

	if len(receipts) == 0 {
		return Response{
			Success: true,
			Message: fmt.Sprintf("No sales recorded for %s yet. Every day is a new opportunity, the next sale could be just around the corner!", period),
			Data: map[string]any{
				"period":       period,
				"dateRange":    r,
				"totalRevenue": 0.0,
				"orderCount":   0,
			},
			FollowUpSuggestions: []string{"show sales report for last week", "show business insights"},
		}, nil
	}

	revenue := snapshot.TotalRevenue(receipts)
	average := revenue / float64(len(receipts))
	top := snapshot.TopCustomers(receipts, 3)

	var b strings.Builder
	fmt.Fprintf(&b, "Sales report for %s:\n", period)
	fmt.Fprintf(&b, "• Revenue: %s\n", money(revenue))
	fmt.Fprintf(&b, "• Orders: %d\n", len(receipts))
	fmt.Fprintf(&b, "• Average order value: %s", money(average))
	if len(top) > 0 {
		b.WriteString("\nTop customers:")
		for i, c := range top {
			fmt.Fprintf(&b, "\n%d. %s (%d orders)", i+1, c.Name, c.Count)
		}
	}

	series := make([]salesPoint, 0, len(receipts))
	for _, rec := range receipts {
		series = append(series, salesPoint{
			Date:     rec.CreatedAt.Format(time.RFC3339),
			Total:    rec.Total,
			Customer: rec.CustomerName,
		})
	}

	return Response{
		Success: true,
		Message: b.String(),
		Data: map[string]any{
			"period":            period,
			"dateRange":         r,
			"totalRevenue":      revenue,
			"orderCount":        len(receipts),
			"averageOrderValue": average,
			"topCustomers":      top,
		},
		Visualizations:      []Visualization{{Type: VizSalesChart, Data: series}},
		FollowUpSuggestions: []string{"analyze trends", "predict sales"},
	}, nil
}
