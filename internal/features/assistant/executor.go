package assistant

import (
	"context"
	"fmt"
	"time"

	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/store"

	"go.uber.org/zap"
)

var (
	retrySuggestions = []string{"help"}
	helpSuggestions  = []string{"help", "show low stock items", "show sales report for today"}
)

type handlerFunc func(ctx context.Context, cmd Command) (Response, error)

// Executor runs classified commands against the entity store. Execute never
// returns an error: failures become unsuccessful responses.
type Executor struct {
	store     store.Store
	snapshots *snapshot.Fetcher
	logger    *zap.Logger
	clock     func() time.Time
	handlers  map[string]handlerFunc
}

func NewExecutor(s store.Store, snapshots *snapshot.Fetcher, logger *zap.Logger) *Executor {
	e := &Executor{
		store:     s,
		snapshots: snapshots,
		logger:    logger,
		clock:     time.Now,
	}
	e.handlers = map[string]handlerFunc{
		ActionCreateProduct:       e.createProduct,
		ActionUpdateInventory:     e.updateInventory,
		ActionCheckStock:          e.checkStock,
		ActionGetLowStockItems:    e.getLowStockItems,
		ActionCreateCustomer:      e.createCustomer,
		ActionFindCustomer:        e.findCustomer,
		ActionGetCustomerHistory:  e.getCustomerHistory,
		ActionCreateOrder:         e.createOrder,
		ActionCreateInvoice:       e.createInvoice,
		ActionGenerateSalesReport: e.generateSalesReport,
		ActionGetBusinessInsights: e.getBusinessInsights,
		ActionAnalyzeTrends:       e.analyzeTrends,
		ActionGeneratePredictions: e.generatePredictions,
		ActionGetStaffPerformance: e.getStaffPerformance,
		ActionShowHelp:            e.showHelp,
	}
	return e
}

// WithClock sets the time source used for timestamps and relative windows
func (e *Executor) WithClock(clock func() time.Time) *Executor {
	e.clock = clock
	return e
}

func (e *Executor) Execute(ctx context.Context, cmd Command) (resp Response) {
	handler, ok := e.handlers[cmd.Action]
	if !ok {
		return Response{
			Success:             false,
			Message:             "I'm not sure how to handle that yet.",
			FollowUpSuggestions: helpSuggestions,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Command handler panicked",
				zap.String("action", cmd.Action),
				zap.Any("panic", r))
			resp = failure(fmt.Sprintf("%v", r))
		}
	}()

	resp, err := handler(ctx, cmd)
	if err != nil {
		e.logger.Warn("Command failed",
			zap.String("action", cmd.Action),
			zap.Error(err))
		return failure(err.Error())
	}
	return resp
}

func failure(message string) Response {
	return Response{
		Success:             false,
		Message:             message,
		FollowUpSuggestions: retrySuggestions,
		retryable:           true,
	}
}

// invalid reports a missing or malformed entity before any store access
func invalid(message string, examples ...string) Response {
	return Response{
		Success:             false,
		Message:             message,
		FollowUpSuggestions: examples,
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
