package store

import (
	"context"
	"time"

	"go-crm-assistant/internal/common/models"
)

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every call on next by d. A non-positive d returns next unchanged.
func WithTimeout(next Store, d time.Duration) Store {
	if d <= 0 {
		return next
	}
	return &timeoutStore{next: next, timeout: d}
}

func (s *timeoutStore) Select(ctx context.Context, collection string, q Query) ([]models.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Select(ctx, collection, q)
}

func (s *timeoutStore) Insert(ctx context.Context, collection string, row models.Row) (models.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Insert(ctx, collection, row)
}

func (s *timeoutStore) Update(ctx context.Context, collection string, filters []Filter, patch models.Row) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Update(ctx, collection, filters, patch)
}

func (s *timeoutStore) Delete(ctx context.Context, collection string, filters []Filter) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Delete(ctx, collection, filters)
}
