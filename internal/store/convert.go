package store

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// normalizeValue converts driver-native values into portable
// primitives: temporal types become ISO-8601 strings, spatial points
// become {x, y, z?, srid} maps, graph entities collapse to their
// property maps, and containers are walked structurally. Scalars pass
// through untouched. The dispatch is a single type switch so new
// driver types slot in as additional cases.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339)
	case dbtype.Date:
		return val.String()
	case dbtype.LocalTime:
		return val.String()
	case dbtype.Time:
		return val.String()
	case dbtype.LocalDateTime:
		return val.String()
	case dbtype.Duration:
		return val.String()
	case dbtype.Point2D:
		return map[string]any{
			"x":    val.X,
			"y":    val.Y,
			"srid": int64(val.SpatialRefId),
		}
	case dbtype.Point3D:
		return map[string]any{
			"x":    val.X,
			"y":    val.Y,
			"z":    val.Z,
			"srid": int64(val.SpatialRefId),
		}
	case dbtype.Node:
		return normalizeMap(val.Props)
	case dbtype.Relationship:
		return normalizeMap(val.Props)
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return val
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}
