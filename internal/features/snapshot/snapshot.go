package snapshot

import (
	"context"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReceiptLimit caps how many of the most recent receipts a snapshot carries
const ReceiptLimit = 100

// Snapshot is a read-only view of the business fetched in one go
type Snapshot struct {
	Products  []models.Product
	Receipts  []models.Receipt // newest first, at most ReceiptLimit
	Customers []models.Customer
	Orders    []models.Order
	FetchedAt time.Time
}

type Fetcher struct {
	store  store.Store
	logger *zap.Logger
	clock  func() time.Time
}

func NewFetcher(s store.Store, logger *zap.Logger) *Fetcher {
	return &Fetcher{store: s, logger: logger, clock: time.Now}
}

// WithClock overrides the time source used for FetchedAt
func (f *Fetcher) WithClock(clock func() time.Time) *Fetcher {
	f.clock = clock
	return f
}

// Fetch loads all four collections concurrently. Any failed fetch fails the whole snapshot.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{FetchedAt: f.clock()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := f.store.Select(gctx, models.CollectionProducts, store.Query{})
		snap.Products = models.ProductsFromRows(rows)
		return err
	})
	g.Go(func() error {
		rows, err := f.store.Select(gctx, models.CollectionReceipts, recentReceipts())
		snap.Receipts = models.ReceiptsFromRows(rows)
		return err
	})
	g.Go(func() error {
		rows, err := f.store.Select(gctx, models.CollectionCustomers, store.Query{})
		snap.Customers = models.CustomersFromRows(rows)
		return err
	})
	g.Go(func() error {
		rows, err := f.store.Select(gctx, models.CollectionOrders, store.Query{})
		snap.Orders = models.OrdersFromRows(rows)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// FetchLenient loads the same collections but defaults each failed fetch to
// empty instead of failing.
func (f *Fetcher) FetchLenient(ctx context.Context) *Snapshot {
	snap := &Snapshot{FetchedAt: f.clock()}
	var g errgroup.Group

	g.Go(func() error {
		snap.Products = models.ProductsFromRows(f.selectOrEmpty(ctx, models.CollectionProducts, store.Query{}))
		return nil
	})
	g.Go(func() error {
		snap.Receipts = models.ReceiptsFromRows(f.selectOrEmpty(ctx, models.CollectionReceipts, recentReceipts()))
		return nil
	})
	g.Go(func() error {
		snap.Customers = models.CustomersFromRows(f.selectOrEmpty(ctx, models.CollectionCustomers, store.Query{}))
		return nil
	})
	g.Go(func() error {
		snap.Orders = models.OrdersFromRows(f.selectOrEmpty(ctx, models.CollectionOrders, store.Query{}))
		return nil
	})

	_ = g.Wait()
	return snap
}

func (f *Fetcher) selectOrEmpty(ctx context.Context, collection string, q store.Query) []models.Row {
	rows, err := f.store.Select(ctx, collection, q)
	if err != nil {
		f.logger.Warn("Snapshot fetch failed, using empty set",
			zap.String("collection", collection),
			zap.Error(err))
		return nil
	}
	return rows
}

func recentReceipts() store.Query {
	return store.Query{OrderBy: "created_at", Descending: true, Limit: ReceiptLimit}
}
