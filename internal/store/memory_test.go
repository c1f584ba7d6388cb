package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *MemoryStore {
	s := NewMemoryStore()
	s.Seed("products",
		models.Row{"name": "iPhone 15", "quantity": 5},
		models.Row{"name": "Samsung S24", "quantity": 30},
		models.Row{"name": "iPhone Case", "quantity": 120},
	)
	return s
}

func names(rows []models.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String("name"))
	}
	return out
}

func TestMemorySelect(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"ilike is case-insensitive", Query{Filters: []Filter{ILike("name", "IPHONE")}}, []string{"iPhone 15", "iPhone Case"}},
		{"numeric lt", Query{Filters: []Filter{Lt("quantity", 10)}}, []string{"iPhone 15"}},
		{"numeric compare across types", Query{Filters: []Filter{Gte("quantity", 30.0)}}, []string{"Samsung S24", "iPhone Case"}},
		{"order and limit", Query{OrderBy: "quantity", Descending: true, Limit: 2}, []string{"iPhone Case", "Samsung S24"}},
		{"any of", Query{AnyOf: []Filter{Eq("name", "Samsung S24"), Lt("quantity", 10)}}, []string{"iPhone 15", "Samsung S24"}},
		{"all filters and any of", Query{Filters: []Filter{ILike("name", "iphone")}, AnyOf: []Filter{Gte("quantity", 100)}}, []string{"iPhone Case"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.Select(ctx, "products", tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestMemoryOrdersTimes(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	s.Seed("receipts",
		models.Row{"name": "b", "created_at": base.Add(time.Hour)},
		models.Row{"name": "a", "created_at": base},
		models.Row{"name": "c", "created_at": base.Add(2 * time.Hour)},
	)

	rows, err := s.Select(context.Background(), "receipts", Query{OrderBy: "created_at", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(rows))
}

func TestMemoryInsertUpdateDelete(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	inserted, err := s.Insert(ctx, "products", models.Row{"name": "Cable", "quantity": 1})
	require.NoError(t, err)
	require.NotEmpty(t, inserted.String("id"))

	require.NoError(t, s.Update(ctx, "products", []Filter{Eq("id", inserted.String("id"))}, models.Row{"quantity": 40}))
	rows, err := s.Select(ctx, "products", Query{Filters: []Filter{Eq("name", "Cable")}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40, rows[0].Int("quantity"))

	require.NoError(t, s.Delete(ctx, "products", []Filter{ILike("name", "iphone")}))
	rows, err = s.Select(ctx, "products", Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Samsung S24", "Cable"}, names(rows))
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := seeded()
	rows, err := s.Select(context.Background(), "products", Query{})
	require.NoError(t, err)
	rows[0]["quantity"] = 999

	rows, err = s.Select(context.Background(), "products", Query{Filters: []Filter{Eq("name", "iPhone 15")}})
	require.NoError(t, err)
	assert.Equal(t, 5, rows[0].Int("quantity"))
}

func TestMemoryFailuresKeepRawMessage(t *testing.T) {
	s := seeded()
	s.FailWith("products", errors.New(`relation "products" is locked`))

	_, err := s.Select(context.Background(), "products", Query{})
	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, `relation "products" is locked`, err.Error())
	assert.Equal(t, "select", storeErr.Op)

	s.FailWith("products", nil)
	_, err = s.Select(context.Background(), "products", Query{})
	assert.NoError(t, err)
}

func TestMemoryUnknownOperator(t *testing.T) {
	s := seeded()
	_, err := s.Select(context.Background(), "products", Query{Filters: []Filter{{Field: "name", Op: "like"}}})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

type slowStore struct {
	Store
}

func (s slowStore) Select(ctx context.Context, collection string, q Query) ([]models.Row, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	s := WithTimeout(slowStore{NewMemoryStore()}, 20*time.Millisecond)

	_, err := s.Select(context.Background(), "products", Query{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	mem := NewMemoryStore()
	assert.Same(t, mem, WithTimeout(mem, 0))
}
