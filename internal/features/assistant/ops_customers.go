package assistant

import (
	"context"
	"fmt"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/store"
	"go-crm-assistant/pkg/utils"
)

type historyPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

func (e *Executor) createCustomer(ctx context.Context, cmd Command) (Response, error) {
	name := cmd.Entities.SearchTerm
	if name == "" {
		return invalid("Please tell me the customer's full name.",
			`create customer Jane Doe`,
			`add new customer John Smith`,
		), nil
	}

	row, err := e.store.Insert(ctx, models.CollectionCustomers, models.Row{
		"name":       name,
		"email":      utils.PlaceholderEmail(name),
		"phone":      "",
		"address":    "",
		"created_at": e.clock(),
	})
	if err != nil {
		return Response{}, err
	}

	customer := models.CustomerFromRow(row)
	return Response{
		Success: true,
		Message: fmt.Sprintf("Created customer %q with placeholder email %s.\nUpdate their contact details when you have them.",
			customer.Name, customer.Email),
		Data: customer,
		FollowUpSuggestions: append(e.orderSuggestions(ctx, customer.Name), "find customer "+customer.Name),
	}, nil
}

// lookupCustomer returns the first customer whose name contains term
func (e *Executor) lookupCustomer(ctx context.Context, term string) (*models.Customer, error) {
	rows, err := e.store.Select(ctx, models.CollectionCustomers, store.Query{
		Filters: []store.Filter{store.ILike("name", term)},
		Limit:   1,
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	c := models.CustomerFromRow(rows[0])
	return &c, nil
}

func customerNotFound(term string) Response {
	return Response{
		Success:             true,
		Message:             fmt.Sprintf("I couldn't find a customer matching %q.", term),
		FollowUpSuggestions: []string{"create customer " + term},
	}
}

func (e *Executor) findCustomer(ctx context.Context, cmd Command) (Response, error) {
	term := cmd.Entities.SearchTerm
	if term == "" {
		return invalid("Who should I look for?", `find customer Jane`), nil
	}

	rows, err := e.store.Select(ctx, models.CollectionCustomers, store.Query{
		AnyOf: []store.Filter{store.ILike("name", term), store.ILike("email", term)},
		Limit: 1,
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success:             false,
			Message:             fmt.Sprintf("No customer found matching %q.", term),
			FollowUpSuggestions: []string{"create customer " + term},
		}, nil
	}

	c := models.CustomerFromRow(rows[0])
	msg := fmt.Sprintf("Found %s (%s).", c.Name, c.Email)
	if c.Phone != "" {
		msg += "\nPhone: " + c.Phone
	}
	return Response{
		Success: true,
		Message: msg,
		Data:    c,
		FollowUpSuggestions: []string{
			"show history for " + c.Name,
			"create invoice for " + c.Name,
		},
	}, nil
}

func (e *Executor) getCustomerHistory(ctx context.Context, cmd Command) (Response, error) {
	term := cmd.Entities.SearchTerm
	if term == "" {
		return invalid("Whose purchase history should I show?", `show history for Jane Doe`), nil
	}

	customer, err := e.lookupCustomer(ctx, term)
	if err != nil {
		return Response{}, err
	}
	if customer == nil {
		return customerNotFound(term), nil
	}

	// receipts carry the customer's name, not an id
	rows, err := e.store.Select(ctx, models.CollectionReceipts, store.Query{
		Filters:    []store.Filter{store.Eq("customer_name", customer.Name)},
		OrderBy:    "created_at",
		Descending: true,
	})
	if err != nil {
		return Response{}, err
	}
	if len(rows) == 0 {
		return Response{
			Success:             true,
			Message:             fmt.Sprintf("%s hasn't purchased anything yet.", customer.Name),
			Data:                map[string]any{"customer": customer, "receipts": []models.Receipt{}},
			FollowUpSuggestions: e.orderSuggestions(ctx, customer.Name),
		}, nil
	}

	receipts := models.ReceiptsFromRows(rows)
	total := snapshot.TotalRevenue(receipts)
	series := make([]historyPoint, 0, len(receipts))
	for _, r := range receipts {
		series = append(series, historyPoint{Date: r.CreatedAt.Format("2006-01-02"), Total: r.Total})
	}

	return Response{
		Success: true,
		Message: fmt.Sprintf("%s has made %d purchases totalling %s.\nMost recent purchase: %s (%s).",
			customer.Name, len(receipts), money(total), formatDate(receipts[0].CreatedAt), money(receipts[0].Total)),
		Data: map[string]any{
			"customer":     customer,
			"receipts":     receipts,
			"totalSpent":   total,
			"orderCount":   len(receipts),
			"lastPurchase": receipts[0].CreatedAt,
		},
		Visualizations:      []Visualization{{Type: VizCustomerHistory, Data: series}},
		FollowUpSuggestions: []string{"create invoice for " + customer.Name},
	}, nil
}
