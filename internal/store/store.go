package store

import (
	"context"
	"errors"

	"go-crm-assistant/internal/common/models"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	// OpILike is a case-insensitive substring match on string fields
	OpILike Operator = "ilike"
)

type Filter struct {
	Field string
	Op    Operator
	Value any
}

func Eq(field string, value any) Filter      { return Filter{Field: field, Op: OpEq, Value: value} }
func Lt(field string, value any) Filter      { return Filter{Field: field, Op: OpLt, Value: value} }
func Gte(field string, value any) Filter     { return Filter{Field: field, Op: OpGte, Value: value} }
func Lte(field string, value any) Filter     { return Filter{Field: field, Op: OpLte, Value: value} }
func ILike(field string, value string) Filter { return Filter{Field: field, Op: OpILike, Value: value} }

// Query selects rows of one collection. All Filters must match; when AnyOf
// is non-empty at least one of its filters must match as well.
type Query struct {
	Filters    []Filter
	AnyOf      []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Store is the entity store adapter the assistant and the automation engine
// read and write through. Rows carry their identifier under "id".
type Store interface {
	Select(ctx context.Context, collection string, q Query) ([]models.Row, error)
	Insert(ctx context.Context, collection string, row models.Row) (models.Row, error)
	Update(ctx context.Context, collection string, filters []Filter, patch models.Row) error
	Delete(ctx context.Context, collection string, filters []Filter) error
}

var ErrUnknownOperator = errors.New("unknown filter operator")

// Error wraps a failure reported by the backing store. Its message is the
// backend's own text, unchanged.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Collection: collection, Err: err}
}
