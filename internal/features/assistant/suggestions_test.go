package assistant

import (
	"context"
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededExecutor() (*Executor, *store.MemoryStore) {
	e, s := newTestExecutor()
	s.Seed(models.CollectionProducts,
		models.Row{"name": "Cable", "quantity": 3, "category": "Accessories", "price": 5.0},
		models.Row{"name": "Mouse", "quantity": 40, "category": "Accessories", "price": 20.0},
	)
	s.Seed(models.CollectionCustomers,
		models.Row{"name": "Jane Doe", "email": "jane@shop.test"},
		models.Row{"name": "Ann Lee", "email": "ann@shop.test"},
	)
	s.Seed(models.CollectionStaff, models.Row{"name": "Sam", "email": "sam@shop.test"})
	s.Seed(models.CollectionOrders, models.Row{"customer_name": "Jane Doe", "staff_name": "Sam", "total": 40.0, "created_at": testNow.Add(-time.Hour)})
	for i := 0; i < 12; i++ {
		s.Seed(models.CollectionReceipts, receipt("Jane Doe", 25, testNow.Add(-time.Duration(i)*24*time.Hour)))
	}
	return e, s
}

// promptMessages collects the messages handlers return when required
// entities are missing.
func promptMessages(e *Executor) map[string]bool {
	out := map[string]bool{}
	for action := range e.handlers {
		resp := run(e, action, Entities{})
		if !resp.Success {
			out[resp.Message] = true
		}
	}
	return out
}

func TestEmittedSuggestionsAreRunnable(t *testing.T) {
	classifier := newTestClassifier()
	e, _ := seededExecutor()
	prompts := promptMessages(e)
	require.NotEmpty(t, prompts)

	utterances := []string{
		"add 10 units of Keyboard",
		"update cable stock to 5",
		"check stock for mouse",
		"check stock for tablet",
		"show low stock items",
		"create customer John Smith",
		"find customer jane",
		"show history for jane doe",
		"show history for ann lee",
		"create order of 1 mouse for jane doe",
		"create order of 9 cable for jane doe",
		"create order for jane doe",
		"create invoice for jane doe",
		"create invoice for ann lee",
		"show sales report for today",
		"show business insights",
		"analyze trends",
		"predict sales",
		"show staff performance",
		"help",
	}

	suggestions := map[string]bool{}
	for _, u := range utterances {
		e, _ := seededExecutor()
		cmd := classifier.Parse(u)
		require.NotNil(t, cmd, u)
		for _, s := range e.Execute(context.Background(), *cmd).FollowUpSuggestions {
			suggestions[s] = true
		}
	}
	assert.Contains(t, suggestions, "create order of 1 Cable for Ann Lee")

	for s := range suggestions {
		e, _ := seededExecutor()
		cmd := classifier.Parse(s)
		if !assert.NotNil(t, cmd, "suggestion %q does not parse", s) {
			continue
		}
		resp := e.Execute(context.Background(), *cmd)
		assert.False(t, prompts[resp.Message], "suggestion %q asks for more input: %s", s, resp.Message)
	}
}

func TestOrderSuggestionsSkipOutOfStock(t *testing.T) {
	e, s := newTestExecutor()
	s.Seed(models.CollectionProducts,
		models.Row{"name": "Adapter", "quantity": 0},
		models.Row{"name": "Mouse", "quantity": 4},
	)

	assert.Equal(t, []string{"create order of 1 Mouse for Ann Lee"}, e.orderSuggestions(context.Background(), "Ann Lee"))

	e, _ = newTestExecutor()
	assert.Empty(t, e.orderSuggestions(context.Background(), "Ann Lee"))
}
