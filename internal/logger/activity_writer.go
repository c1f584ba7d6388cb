package logger

import (
	"context"
	"sync"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/store"

	"go.uber.org/zap"
)

// ActivityWriter appends activity_logs rows in the background so callers
// never wait on the store.
type ActivityWriter struct {
	store   store.Store
	logger  *zap.Logger
	logChan chan models.ActivityLog
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewActivityWriter starts the background worker immediately
func NewActivityWriter(s store.Store, logger *zap.Logger) *ActivityWriter {
	w := &ActivityWriter{
		store:   s,
		logger:  logger,
		logChan: make(chan models.ActivityLog, 1000),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}

	go w.processLogs()

	return w
}

// Append queues entry. A full buffer drops the entry rather than blocking.
func (w *ActivityWriter) Append(entry models.ActivityLog) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.logChan <- entry:
		return true
	default:
		w.logger.Warn("Activity log channel full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("entity", entry.EntityName))
		return false
	}
}

// Close stops accepting entries and waits until queued ones are written.
func (w *ActivityWriter) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.logChan)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *ActivityWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if _, err := w.store.Insert(ctx, models.CollectionActivityLogs, entry.Row()); err != nil {
			w.logger.Error("Failed to write activity log",
				zap.String("action", entry.Action),
				zap.Error(err))
		}
		cancel()
	}
}
