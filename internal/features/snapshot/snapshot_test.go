package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededStore() *store.MemoryStore {
	s := store.NewMemoryStore()
	s.Seed(models.CollectionProducts, models.Row{"name": "iPhone 15", "quantity": 5, "category": "Phones"})
	s.Seed(models.CollectionCustomers, models.Row{"name": "Jane Doe", "email": "jane@example.com"})
	s.Seed(models.CollectionOrders, models.Row{"customer_name": "Jane Doe", "total": 120.0})
	for i := 0; i < 120; i++ {
		s.Seed(models.CollectionReceipts, models.Row{
			"customer_name": "Jane Doe",
			"total":         float64(i),
			"created_at":    now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return s
}

func TestFetchLimitsReceiptsToMostRecent(t *testing.T) {
	f := NewFetcher(seededStore(), zap.NewNop()).WithClock(func() time.Time { return now })

	snap, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Customers, 1)
	assert.Len(t, snap.Orders, 1)
	require.Len(t, snap.Receipts, ReceiptLimit)
	assert.Equal(t, now, snap.Receipts[0].CreatedAt)
	assert.Equal(t, now, snap.FetchedAt)
}

func TestFetchFailsWhenAnyCollectionFails(t *testing.T) {
	s := seededStore()
	s.FailWith(models.CollectionOrders, errors.New("connection reset"))

	_, err := NewFetcher(s, zap.NewNop()).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "connection reset", err.Error())
}

func TestFetchLenientDefaultsFailedCollectionsToEmpty(t *testing.T) {
	s := seededStore()
	s.FailWith(models.CollectionOrders, errors.New("connection reset"))

	snap := NewFetcher(s, zap.NewNop()).FetchLenient(context.Background())
	assert.Empty(t, snap.Orders)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Receipts, ReceiptLimit)
}
