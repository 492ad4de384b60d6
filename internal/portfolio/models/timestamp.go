package models

import (
	"time"
)

// coerceTimestamp converts the heterogeneous timestamp representations found
// in remote documents into a single RFC3339 UTC string:
//
//   - RFC3339 strings are re-formatted in UTC
//   - JSON numbers are treated as epoch seconds
//   - {"seconds": n, "nanos": m} objects (native store timestamps)
//
// Anything unparseable degrades to def rather than erroring, so normalizers
// never fail on malformed input. The output is a fixed point: coercing an
// already-coerced value yields the same string.
func coerceTimestamp(v any, def string) string {
	switch value := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		// Date-only strings appear in older blog documents.
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		return def
	case float64:
		return time.Unix(int64(value), 0).UTC().Format(time.RFC3339)
	case int64:
		return time.Unix(value, 0).UTC().Format(time.RFC3339)
	case map[string]any:
		secs, ok := value["seconds"].(float64)
		if !ok {
			return def
		}
		nanos, _ := value["nanos"].(float64)
		return time.Unix(int64(secs), int64(nanos)).UTC().Format(time.RFC3339)
	default:
		return def
	}
}
