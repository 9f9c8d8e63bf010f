package docstore

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Lookup resolves a dotted path ("location.address") inside nested maps.
func Lookup(doc map[string]any, path string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	if v, ok := doc[path]; ok {
		return v, v != nil
	}
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := AsMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// AsMap accepts the map flavours produced by the different drivers.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// String returns the first non-blank value among keys. Numbers are formatted.
func String(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := Lookup(doc, k)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		case fmt.Stringer:
			return s.String()
		default:
			if f, ok := toFloat(v); ok {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
	return ""
}

// Float returns the first numeric value among keys. Numeric strings count.
func Float(doc map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := Lookup(doc, k)
		if !ok {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func Int(doc map[string]any, keys ...string) (int, bool) {
	f, ok := Float(doc, keys...)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func Bool(doc map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := Lookup(doc, k)
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			parsed, err := strconv.ParseBool(b)
			if err == nil {
				return parsed
			}
		}
	}
	return false
}

// Time understands time.Time, RFC3339 strings, epoch milliseconds and
// {seconds, nanoseconds} maps left behind by serialized client timestamps.
func Time(doc map[string]any, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := Lookup(doc, k)
		if !ok {
			continue
		}
		if t, ok := toTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func Map(doc map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		v, ok := Lookup(doc, k)
		if !ok {
			continue
		}
		if m, ok := AsMap(v); ok {
			return m
		}
	}
	return nil
}

// Slice returns the first non-empty list among keys.
func Slice(doc map[string]any, keys ...string) []any {
	for _, k := range keys {
		v, ok := Lookup(doc, k)
		if !ok {
			continue
		}
		if s := toSlice(v); len(s) > 0 {
			return s
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(n), "$£€₦"))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}
	if m, ok := AsMap(v); ok {
		secs, ok := Float(m, "seconds", "_seconds")
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := Float(m, "nanoseconds", "_nanoseconds")
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	}
	if ms, ok := toFloat(v); ok && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	case []Document:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
