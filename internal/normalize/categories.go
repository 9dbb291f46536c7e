package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"viksitkanpur/internal/models/records"
)

// Categories decodes a category breakdown, keeping the order the backend
// sent. Both shapes are accepted:
//
//	{"Road Damage": 12, "Water Supply": 7}
//	[{"category": "Road Damage", "count": 12}]
//
// Counts that are not numbers become 0; negative counts are clamped to 0.
func Categories(raw json.RawMessage) ([]records.CategoryCount, []Issue) {
	out := []records.CategoryCount{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return out, []Issue{{Source: "categoryBreakdown", Index: -1, Message: "invalid JSON: " + err.Error()}}
	}

	var issues []Issue
	switch tok {
	case json.Delim('{'):
		for i := 0; dec.More(); i++ {
			keyTok, err := dec.Token()
			if err != nil {
				return out, append(issues, Issue{Source: "categoryBreakdown", Index: i, Message: "invalid JSON: " + err.Error()})
			}
			var value any
			if err := dec.Decode(&value); err != nil {
				return out, append(issues, Issue{Source: "categoryBreakdown", Index: i, Message: "invalid JSON: " + err.Error()})
			}
			name := strings.TrimSpace(fmt.Sprint(keyTok))
			n, ok := toNumber(value)
			if !ok {
				issues = append(issues, Issue{Source: "categoryBreakdown", Index: i, Field: name, Message: "not a number, using 0"})
			}
			count, inRange := toCount(n)
			if !inRange {
				issues = append(issues, Issue{Source: "categoryBreakdown", Index: i, Field: name, Message: "out of range, clamped"})
			}
			out = append(out, records.CategoryCount{Name: name, Count: count})
		}

	case json.Delim('['):
		var items []any
		if err := json.Unmarshal(raw, &items); err != nil {
			return out, []Issue{{Source: "categoryBreakdown", Index: -1, Message: "invalid JSON: " + err.Error()}}
		}
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				issues = append(issues, Issue{Source: "categoryBreakdown", Index: i, Message: "not an object, skipped"})
				continue
			}
			f := fields(obj)
			name := f.text("category", "name", "_id")
			n, key, present, ok := f.number("count", "value", "total")
			if present && !ok {
				issues = append(issues, Issue{Source: "categoryBreakdown", Index: i, Field: key, Message: "not a number, using 0"})
			}
			count, inRange := toCount(n)
			if !inRange {
				issues = append(issues, Issue{Source: "categoryBreakdown", Index: i, Field: key, Message: "out of range, clamped"})
			}
			out = append(out, records.CategoryCount{Name: name, Count: count})
		}

	default:
		if tok != nil {
			issues = append(issues, Issue{Source: "categoryBreakdown", Index: -1, Message: "payload is neither an object nor a list"})
		}
	}

	return out, issues
}
