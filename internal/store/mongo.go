package store

import (
	"context"
	"fmt"
	"regexp"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps each named collection onto a MongoDB collection.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(mongodb *database.MongodbDB) *MongoStore {
	return &MongoStore{DB: mongodb.DB}
}

// sortKeys orders by q.OrderBy and breaks ties by _id, so equal keys come
// back in insertion order.
func sortKeys(q Query) bson.D {
	if q.OrderBy == "" {
		return nil
	}
	order := 1
	if q.Descending {
		order = -1
	}
	key := fieldName(q.OrderBy)
	keys := bson.D{{Key: key, Value: order}}
	if key != "_id" {
		keys = append(keys, bson.E{Key: "_id", Value: 1})
	}
	return keys
}

func (s *MongoStore) Select(ctx context.Context, collection string, q Query) ([]models.Row, error) {
	filter, err := compileQuery(q)
	if err != nil {
		return nil, wrap("select", collection, err)
	}

	findOptions := options.Find()
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}
	if keys := sortKeys(q); keys != nil {
		findOptions.SetSort(keys)
	}

	cursor, err := s.DB.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, wrap("select", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrap("select", collection, err)
	}

	rows := make([]models.Row, len(docs))
	for i, doc := range docs {
		rows[i] = fromDocument(doc)
	}
	return rows, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, row models.Row) (models.Row, error) {
	doc := bson.M{}
	for k, v := range row {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	doc["_id"] = objectIDOrRaw(row["id"])
	if doc["_id"] == nil {
		doc["_id"] = primitive.NewObjectID()
	}

	if _, err := s.DB.Collection(collection).InsertOne(ctx, doc); err != nil {
		return nil, wrap("insert", collection, err)
	}
	return fromDocument(doc), nil
}

func (s *MongoStore) Update(ctx context.Context, collection string, filters []Filter, patch models.Row) error {
	filter, err := compileQuery(Query{Filters: filters})
	if err != nil {
		return wrap("update", collection, err)
	}
	set := bson.M{}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = v
	}
	_, err = s.DB.Collection(collection).UpdateMany(ctx, filter, bson.M{"$set": set})
	return wrap("update", collection, err)
}

func (s *MongoStore) Delete(ctx context.Context, collection string, filters []Filter) error {
	filter, err := compileQuery(Query{Filters: filters})
	if err != nil {
		return wrap("delete", collection, err)
	}
	_, err = s.DB.Collection(collection).DeleteMany(ctx, filter)
	return wrap("delete", collection, err)
}

func compileQuery(q Query) (bson.M, error) {
	var conditions []bson.M
	for _, f := range q.Filters {
		cond, err := compileFilter(f)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	if len(q.AnyOf) > 0 {
		var or []bson.M
		for _, f := range q.AnyOf {
			cond, err := compileFilter(f)
			if err != nil {
				return nil, err
			}
			or = append(or, cond)
		}
		conditions = append(conditions, bson.M{"$or": or})
	}

	if len(conditions) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": conditions}, nil
}

func compileFilter(f Filter) (bson.M, error) {
	field := fieldName(f.Field)
	val := f.Value
	if field == "_id" {
		val = objectIDOrRaw(val)
	}

	switch f.Op {
	case OpEq:
		return bson.M{field: bson.M{"$eq": val}}, nil
	case OpNeq:
		return bson.M{field: bson.M{"$ne": val}}, nil
	case OpGt:
		return bson.M{field: bson.M{"$gt": val}}, nil
	case OpLt:
		return bson.M{field: bson.M{"$lt": val}}, nil
	case OpGte:
		return bson.M{field: bson.M{"$gte": val}}, nil
	case OpLte:
		return bson.M{field: bson.M{"$lte": val}}, nil
	case OpILike:
		strVal, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("ilike operator requires string value")
		}
		return bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(strVal), Options: "i"}}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, f.Op)
	}
}

func fieldName(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func objectIDOrRaw(v any) any {
	switch id := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return id
	case string:
		if id == "" {
			return nil
		}
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			return oid
		}
		return id
	default:
		return id
	}
}

func fromDocument(doc bson.M) models.Row {
	row := make(models.Row, len(doc))
	for k, v := range doc {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				row["id"] = oid.Hex()
			} else {
				row["id"] = fmt.Sprintf("%v", v)
			}
			continue
		}
		row[k] = fromValue(v)
	}
	return row
}

func fromValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromValue(item)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromValue(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = fromValue(e.Value)
		}
		return out
	default:
		return v
	}
}
