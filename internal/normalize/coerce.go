package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// fields is a loosely typed backend object. Every accessor takes a list of
// alias keys because the backend mixes snake_case and camelCase.
type fields map[string]any

// get returns the first alias present with a non-nil value.
func (f fields) get(keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

// text returns the trimmed string value, or "" when absent or blank.
func (f fields) text(keys ...string) string {
	v, _, ok := f.get(keys...)
	if !ok {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// number returns the numeric value. present is true when some alias carried a
// value; ok is false when that value was not a finite number.
func (f fields) number(keys ...string) (value float64, key string, present bool, ok bool) {
	v, key, present := f.get(keys...)
	if !present {
		return 0, "", false, false
	}
	n, ok := toNumber(v)
	return n, key, true, ok
}

func (f fields) boolean(keys ...string) bool {
	v, _, ok := f.get(keys...)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

// toNumber coerces v to a finite float64.
func toNumber(v any) (float64, bool) {
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
		if v == "" {
			return 0, false
		}
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// maxCount bounds every count so totals and sums stay well inside int range.
const maxCount = math.MaxInt32

// toCount rounds a number to a non-negative integer. inRange is false when n
// exceeded maxCount and was clamped.
func toCount(n float64) (count int, inRange bool) {
	if n <= 0 {
		return 0, true
	}
	if n > maxCount {
		return maxCount, false
	}
	return int(math.Round(n)), true
}

// maxEpochMillis is year 9999 in milliseconds.
const maxEpochMillis = 253402300799999

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts RFC 3339, common SQL style layouts and epoch seconds or
// milliseconds. Zone-less values are read in loc. The zero time means invalid.
func parseTime(v any, loc *time.Location) time.Time {
	if v == nil {
		return time.Time{}
	}
	if s, isString := v.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t
			}
		}
	}
	n, ok := toNumber(v)
	if !ok || n <= 0 || n > maxEpochMillis {
		return time.Time{}
	}
	if n >= 1e12 {
		return time.UnixMilli(int64(n)).In(loc)
	}
	return time.Unix(int64(n), 0).In(loc)
}

// asObjects extracts a list of objects from a payload that is either a bare
// array or an object holding the array under one of keys.
func asObjects(v any, keys ...string) ([]fields, bool) {
	if obj, ok := v.(map[string]any); ok {
		for _, k := range keys {
			if inner, found := obj[k]; found {
				v = inner
				break
			}
		}
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]fields, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		out = append(out, obj)
	}
	return out, true
}
