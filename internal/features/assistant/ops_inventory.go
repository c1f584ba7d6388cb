package assistant

import (
	"context"
	"fmt"
	"strings"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/store"
)

const defaultCategory = "General"

type stockLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	Status   string `json:"status,omitempty"`
}

func (e *Executor) createProduct(ctx context.Context, cmd Command) (Response, error) {
	name := cmd.Entities.ProductName
	if name == "" {
		return invalid("Please tell me which product to add.",
			`add 10 units of iPhone 15`,
			`add product Wireless Mouse`,
		), nil
	}
	qty := 1
	if cmd.Entities.Quantity != nil {
		qty = *cmd.Entities.Quantity
	}

	row, err := e.store.Insert(ctx, models.CollectionProducts, models.Row{
		"name":        name,
		"quantity":    qty,
		"category":    defaultCategory,
		"price":       0.0,
		"cost":        0.0,
		"description": "",
		"created_at":  e.clock(),
	})
	if err != nil {
		return Response{}, err
	}

	product := models.ProductFromRow(row)
	return Response{
		Success: true,
		Message: fmt.Sprintf("Added %q to inventory with %d units.\nThe price is set to %s and the category to %q, please update them.",
			product.Name, product.Quantity, money(0), defaultCategory),
		Data: product,
		FollowUpSuggestions: []string{
			"check stock for " + product.Name,
			"show low stock items",
		},
	}, nil
}

func (e *Executor) updateInventory(ctx context.Context, cmd Command) (Response, error) {
	name := cmd.Entities.ProductName
	if name == "" || cmd.Entities.Quantity == nil {
		return invalid("I need both the product name and the new quantity.",
			`update iPhone stock to 50`,
			`set stock of Wireless Mouse to 20`,
		), nil
	}
	qty := *cmd.Entities.Quantity

	rows, err := e.store.Select(ctx, models.CollectionProducts, store.Query{
		Filters: []store.Filter{store.ILike("name", name)},
		Limit:   1,
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success:             true,
			Message:             fmt.Sprintf("I couldn't find a product matching %q. Would you like to add it instead?", name),
			FollowUpSuggestions: []string{fmt.Sprintf("add %d units of %s", qty, name)},
		}, nil
	}

	product := models.ProductFromRow(rows[0])
	err = e.store.Update(ctx, models.CollectionProducts,
		[]store.Filter{store.Eq("id", product.ID)},
		models.Row{"quantity": qty})
	if err != nil {
		return Response{}, err
	}

	delta := qty - product.Quantity
	var change string
	switch {
	case delta > 0:
		change = fmt.Sprintf("increased by %d", delta)
	case delta < 0:
		change = fmt.Sprintf("decreased by %d", -delta)
	default:
		change = "unchanged"
	}

	return Response{
		Success: true,
		Message: fmt.Sprintf("Updated %s stock to %d units (%s).", product.Name, qty, change),
		Data: map[string]any{
			"product":          product.Name,
			"previousQuantity": product.Quantity,
			"newQuantity":      qty,
			"change":           delta,
		},
		FollowUpSuggestions: []string{"check stock for " + product.Name, "show low stock items"},
	}, nil
}

func (e *Executor) checkStock(ctx context.Context, cmd Command) (Response, error) {
	term := cmd.Entities.SearchTerm
	if term == "" {
		return invalid("Which product should I check?",
			`check stock for iPhone`,
			`how many Wireless Mouse do we have`,
		), nil
	}

	rows, err := e.store.Select(ctx, models.CollectionProducts, store.Query{
		Filters: []store.Filter{store.ILike("name", term)},
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success:             true,
			Message:             fmt.Sprintf("No products found matching %q.", term),
			FollowUpSuggestions: []string{"add 10 units of " + term, "show low stock items"},
		}, nil
	}

	lines := make([]stockLine, 0, len(rows))
	for _, p := range models.ProductsFromRows(rows) {
		lines = append(lines, stockLine{
			Name:     p.Name,
			Quantity: p.Quantity,
			Category: p.Category,
			Status:   snapshot.StockStatus(p.Quantity),
		})
	}

	if len(lines) == 1 {
		l := lines[0]
		return Response{
			Success:             true,
			Message:             fmt.Sprintf("%s has %d units in stock (%s).", l.Name, l.Quantity, l.Status),
			Data:                l,
			FollowUpSuggestions: []string{fmt.Sprintf("update %s stock to %d", l.Name, l.Quantity+10)},
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d products matching %q:", len(lines), term)
	for _, l := range lines {
		fmt.Fprintf(&b, "\n• %s: %d units (%s)", l.Name, l.Quantity, l.Status)
	}
	return Response{
		Success:             true,
		Message:             b.String(),
		Data:                lines,
		FollowUpSuggestions: []string{"show low stock items"},
	}, nil
}

func (e *Executor) getLowStockItems(ctx context.Context, _ Command) (Response, error) {
	rows, err := e.store.Select(ctx, models.CollectionProducts, store.Query{
		Filters: []store.Filter{store.Lt("quantity", snapshot.LowStockThreshold)},
		OrderBy: "quantity",
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success: true,
			Message: "Great news! Every product has at least 10 units in stock.",
			Data:    []stockLine{},
		}, nil
	}

	lines := make([]stockLine, 0, len(rows))
	var b strings.Builder
	fmt.Fprintf(&b, "%d products are running low on stock:", len(rows))
	for _, p := range models.ProductsFromRows(rows) {
		lines = append(lines, stockLine{Name: p.Name, Quantity: p.Quantity, Category: p.Category})
		fmt.Fprintf(&b, "\n• %s: %d units", p.Name, p.Quantity)
	}

	suggestions := []string{fmt.Sprintf("update %s stock to 50", lines[0].Name)}
	return Response{
		Success:             true,
		Message:             b.String(),
		Data:                lines,
		Visualizations:      []Visualization{{Type: VizLowStock, Data: lines}},
		FollowUpSuggestions: append(suggestions, "show business insights"),
	}, nil
}
