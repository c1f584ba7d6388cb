package main

import (
	"context"
	"testing"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/logger"
	"go-crm-assistant/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestFlushActivityDrainsAfterLaterStopHooks(t *testing.T) {
	mem := store.NewMemoryStore()
	var appended bool

	app := fxtest.New(t,
		fx.NopLogger,
		fx.Provide(
			func() store.Store { return mem },
			zap.NewNop,
			logger.NewActivityWriter,
		),
		fx.Invoke(
			FlushActivity,
			// stands in for the scheduler finishing a pass during shutdown
			func(lc fx.Lifecycle, w *logger.ActivityWriter) {
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						appended = w.Append(models.ActivityLog{Action: "automation_low_stock"})
						return nil
					},
				})
			},
		),
	)
	app.RequireStart().RequireStop()

	assert.True(t, appended)
	rows, err := mem.Select(context.Background(), models.CollectionActivityLogs, store.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "automation_low_stock", rows[0].String("action"))
}
