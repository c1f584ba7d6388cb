package models

import (
	"encoding/json"
	"strconv"
	"time"
)

type ContextKey string

const (
	SessionIDKey ContextKey = "session_id"
)

// Collection names in the entity store
const (
	CollectionProducts     = "products"
	CollectionCustomers    = "customers"
	CollectionOrders       = "orders"
	CollectionInvoices     = "invoices"
	CollectionReceipts     = "receipts"
	CollectionPayments     = "payments"
	CollectionStaff        = "staff"
	CollectionActivityLogs = "activity_logs"
)

// SystemActor is recorded on activity logs written without an authenticated user
const SystemActor = "system"

// Row is a single record read from or written to the entity store
type Row map[string]any

func (r Row) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r Row) Int(key string) int {
	return int(ParseInt64(r[key], 0))
}

func (r Row) Float(key string) float64 {
	return ParseFloat64(r[key], 0)
}

func (r Row) Time(key string) time.Time {
	return ParseTime(r[key])
}

// ParseInt64 parses a string or number into an int64
func ParseInt64(val any, defaultVal int64) int64 {
	if val == nil {
		return defaultVal
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
	}
	return defaultVal
}

// ParseFloat64 parses a string or number into a float64
func ParseFloat64(val any, defaultVal float64) float64 {
	if val == nil {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return defaultVal
}

// ParseTime accepts time.Time values and RFC3339 / date-only strings.
// Anything else yields the zero time.
func ParseTime(val any) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// ActivityLog is one entry of the activity_logs collection
type ActivityLog struct {
	Action     string         `json:"action" bson:"action"`
	EntityType string         `json:"entity_type" bson:"entity_type"`
	EntityName string         `json:"entity_name" bson:"entity_name"`
	UserEmail  string         `json:"user_email" bson:"user_email"`
	Details    map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

func (l ActivityLog) Row() Row {
	return Row{
		"action":      l.Action,
		"entity_type": l.EntityType,
		"entity_name": l.EntityName,
		"user_email":  l.UserEmail,
		"details":     l.Details,
		"created_at":  l.CreatedAt,
	}
}
