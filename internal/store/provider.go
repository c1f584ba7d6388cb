package store

import (
	"context"
	"time"

	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New builds the configured entity store, wrapped with the per-call timeout.
func New(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (Store, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("Using in-memory entity store; data is lost on restart")
		return WithTimeout(NewMemoryStore(), cfg.StoreTimeout), nil
	}

	db, err := database.NewDatabase(lc, cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := db.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure store indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})

	return WithTimeout(NewMongoStore(db), cfg.StoreTimeout), nil
}
