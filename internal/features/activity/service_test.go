package activity

import (
	"context"
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/store"
	"go-crm-assistant/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	entries []models.ActivityLog
}

func (c *captureSink) Append(entry models.ActivityLog) bool {
	c.entries = append(c.entries, entry)
	return true
}

func TestRecordStampsActor(t *testing.T) {
	sink := &captureSink{}
	svc := NewActivityService(sink, store.NewMemoryStore())

	svc.Record(context.Background(), "low_stock_check", "automation", "Daily Low Stock Check", map[string]any{"count": 2})

	userCtx := utils.WithClaims(context.Background(), &utils.UserClaims{UserID: "u1", Email: "owner@shop.test"})
	svc.Record(userCtx, "ai_command", "product", "iphone", nil)

	require.Len(t, sink.entries, 2)
	assert.Equal(t, models.SystemActor, sink.entries[0].UserEmail)
	assert.Equal(t, 2, sink.entries[0].Details["count"])
	assert.Equal(t, "owner@shop.test", sink.entries[1].UserEmail)
	assert.False(t, sink.entries[1].CreatedAt.IsZero())
}

func TestCurrentUserEmailFallsBackToUserID(t *testing.T) {
	ctx := utils.WithClaims(context.Background(), &utils.UserClaims{UserID: "dev-admin-id"})
	assert.Equal(t, "dev-admin-id", CurrentUserEmail(ctx))
	assert.Equal(t, models.SystemActor, CurrentUserEmail(context.Background()))
}

func TestRecentNewestFirst(t *testing.T) {
	s := store.NewMemoryStore()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Seed(models.CollectionActivityLogs, models.Row{"action": "a", "created_at": base.Add(time.Duration(i) * time.Hour)})
	}

	rows, err := NewActivityService(&captureSink{}, s).Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, base.Add(4*time.Hour), rows[0].Time("created_at"))
}
