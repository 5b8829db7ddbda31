// Package query is a fixed library of parameterized, read-only
// templates answering bibliometric questions. Conventions applied
// uniformly: nullable numerics are coalesced to 0 before sort or
// filter, matching is substring containment, and every result set has
// a caller-overridable cap bounded by a server maximum.
package query

import (
	"citegraph/internal/store"
	"citegraph/pkg/logger"

	"go.uber.org/zap"
)

// Engine answers read-only queries through the shared store client.
// It is stateless and safe for concurrent use.
type Engine struct {
	store        *store.Client
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// New constructs a query engine. Non-positive limits fall back to
// 20/500.
func New(client *store.Client, defaultLimit, maxLimit int) *Engine {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	if maxLimit < 1 {
		maxLimit = 500
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Engine{
		store:        client,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.Named("query"),
	}
}

// clampLimit applies the default for unset caps and the server maximum
// for oversized ones.
func (e *Engine) clampLimit(limit int) int {
	if limit < 1 {
		return e.defaultLimit
	}
	if limit > e.maxLimit {
		return e.maxLimit
	}
	return limit
}

// Row helpers. ExecuteQuery returns normalized maps; external records
// surface numerics as int64.

func rowString(row map[string]any, key string) string {
	if s, ok := row[key].(string); ok {
		return s
	}
	return ""
}

func rowInt(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func rowFloat(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func rowStringSlice(row map[string]any, key string) []string {
	list, ok := row[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func rowIntSlice(row map[string]any, key string) []int {
	list, ok := row[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case int64:
			out = append(out, int(v))
		case float64:
			out = append(out, int(v))
		}
	}
	return out
}
