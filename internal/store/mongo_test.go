package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCompileQuery(t *testing.T) {
	filter, err := compileQuery(Query{
		Filters: []Filter{Lt("quantity", 10)},
		AnyOf:   []Filter{ILike("name", "a.b"), Eq("email", "x@y.z")},
	})
	require.NoError(t, err)

	conds, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, conds, 2)
	assert.Equal(t, bson.M{"quantity": bson.M{"$lt": 10}}, conds[0])

	or, ok := conds[1]["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"name": bson.M{"$regex": primitive.Regex{Pattern: `a\.b`, Options: "i"}}}, or[0])
	assert.Equal(t, bson.M{"email": bson.M{"$eq": "x@y.z"}}, or[1])
}

func TestCompileQueryEmpty(t *testing.T) {
	filter, err := compileQuery(Query{})
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestCompileFilterIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	cond, err := compileFilter(Eq("id", oid.Hex()))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": bson.M{"$eq": oid}}, cond)

	cond, err = compileFilter(Eq("id", "rule-1"))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": bson.M{"$eq": "rule-1"}}, cond)
}

func TestCompileFilterErrors(t *testing.T) {
	_, err := compileFilter(Filter{Field: "name", Op: OpILike, Value: 3})
	assert.Error(t, err)

	_, err = compileFilter(Filter{Field: "name", Op: "like", Value: "x"})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestFromDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	row := fromDocument(bson.M{
		"_id":           oid,
		"customer_name": "Ann",
		"receipt_items": primitive.A{bson.M{"sku": "A1"}},
	})

	assert.Equal(t, oid.Hex(), row.String("id"))
	assert.Equal(t, "Ann", row.String("customer_name"))
	assert.Equal(t, []any{map[string]any{"sku": "A1"}}, row["receipt_items"])
}

func TestSortKeysBreakTiesByID(t *testing.T) {
	assert.Nil(t, sortKeys(Query{}))
	assert.Equal(t,
		bson.D{{Key: "quantity", Value: 1}, {Key: "_id", Value: 1}},
		sortKeys(Query{OrderBy: "quantity"}))
	assert.Equal(t,
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
		sortKeys(Query{OrderBy: "created_at", Descending: true}))
	assert.Equal(t, bson.D{{Key: "_id", Value: -1}}, sortKeys(Query{OrderBy: "id", Descending: true}))
}
