package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-crm-assistant/internal/common/models"

	"github.com/google/uuid"
)

// MemoryStore keeps rows per collection in insertion order. It backs tests
// and the STORE_DRIVER=memory mode.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]models.Row
	failures    map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]models.Row),
		failures:    make(map[string]error),
	}
}

// FailWith makes subsequent calls on collection return err. A nil err clears it.
func (s *MemoryStore) FailWith(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, collection)
		return
	}
	s.failures[collection] = err
}

// Seed appends rows as-is, assigning ids where missing.
func (s *MemoryStore) Seed(collection string, rows ...models.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.collections[collection] = append(s.collections[collection], s.prepare(r))
	}
}

func (s *MemoryStore) prepare(row models.Row) models.Row {
	cp := make(models.Row, len(row)+1)
	for k, v := range row {
		cp[k] = v
	}
	if cp.String("id") == "" {
		cp["id"] = uuid.NewString()
	}
	return cp
}

func (s *MemoryStore) Select(ctx context.Context, collection string, q Query) ([]models.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("select", collection, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[collection]; err != nil {
		return nil, wrap("select", collection, err)
	}

	var out []models.Row
	for _, row := range s.collections[collection] {
		ok, err := matchAll(row, q.Filters)
		if err != nil {
			return nil, wrap("select", collection, err)
		}
		if !ok {
			continue
		}
		if len(q.AnyOf) > 0 {
			hit, err := matchAny(row, q.AnyOf)
			if err != nil {
				return nil, wrap("select", collection, err)
			}
			if !hit {
				continue
			}
		}
		out = append(out, copyRow(row))
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, row models.Row) (models.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("insert", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[collection]; err != nil {
		return nil, wrap("insert", collection, err)
	}
	stored := s.prepare(row)
	s.collections[collection] = append(s.collections[collection], stored)
	return copyRow(stored), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, filters []Filter, patch models.Row) error {
	if err := ctx.Err(); err != nil {
		return wrap("update", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[collection]; err != nil {
		return wrap("update", collection, err)
	}
	for _, row := range s.collections[collection] {
		ok, err := matchAll(row, filters)
		if err != nil {
			return wrap("update", collection, err)
		}
		if !ok {
			continue
		}
		for k, v := range patch {
			row[k] = v
		}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, filters []Filter) error {
	if err := ctx.Err(); err != nil {
		return wrap("delete", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[collection]; err != nil {
		return wrap("delete", collection, err)
	}
	kept := s.collections[collection][:0]
	for _, row := range s.collections[collection] {
		ok, err := matchAll(row, filters)
		if err != nil {
			return wrap("delete", collection, err)
		}
		if !ok {
			kept = append(kept, row)
		}
	}
	s.collections[collection] = kept
	return nil
}

func copyRow(r models.Row) models.Row {
	cp := make(models.Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

func matchAll(row models.Row, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := match(row, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAny(row models.Row, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := match(row, f)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func match(row models.Row, f Filter) (bool, error) {
	val, exists := row[f.Field]
	switch f.Op {
	case OpEq:
		return exists && compareValues(val, f.Value) == 0, nil
	case OpNeq:
		return !exists || compareValues(val, f.Value) != 0, nil
	case OpLt:
		return exists && compareValues(val, f.Value) < 0, nil
	case OpLte:
		return exists && compareValues(val, f.Value) <= 0, nil
	case OpGt:
		return exists && compareValues(val, f.Value) > 0, nil
	case OpGte:
		return exists && compareValues(val, f.Value) >= 0, nil
	case OpILike:
		s, _ := val.(string)
		needle := fmt.Sprintf("%v", f.Value)
		return exists && strings.Contains(strings.ToLower(s), strings.ToLower(needle)), nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownOperator, f.Op)
	}
}

// compareValues orders numbers numerically, times chronologically and
// everything else by its string form.
func compareValues(a, b any) int {
	if at, ok := asTime(a); ok {
		if bt, ok := asTime(b); ok {
			return at.Compare(bt)
		}
	}
	if af, ok := asNumber(a); ok {
		if bf, ok := asNumber(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int, int32, int64, float32, float64:
		return models.ParseFloat64(n, 0), true
	}
	return 0, false
}
