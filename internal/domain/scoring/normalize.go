package scoring

import (
	"encoding/json"
	"fmt"
	"strings"
)

// asIndex coerces the numeric shapes a JSON decoder or native caller can
// produce into an option index. Non-integral floats are rejected.
func asIndex(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	}
	return 0, false
}

// gapAnswers normalizes a raw answer into exactly count entries. Accepted
// shapes: an ordered list (strings or anything printable) or a map keyed
// "<prefix>1".."<prefix>N". Extra entries are truncated, missing ones padded
// with the empty string. Anything else yields count empty entries.
func gapAnswers(raw any, count int, prefix string) []string {
	if count < 0 {
		count = 0
	}
	var answers []string

	switch v := raw.(type) {
	case []string:
		for _, a := range v {
			answers = append(answers, trimmed(a))
		}
	case []any:
		for _, a := range v {
			answers = append(answers, toString(a))
		}
	case map[string]any:
		for i := 1; i <= count; i++ {
			answers = append(answers, toString(v[fmt.Sprintf("%s%d", prefix, i)]))
		}
	case map[string]string:
		for i := 1; i <= count; i++ {
			answers = append(answers, trimmed(v[fmt.Sprintf("%s%d", prefix, i)]))
		}
	}

	if len(answers) > count {
		answers = answers[:count]
	}
	for len(answers) < count {
		answers = append(answers, "")
	}
	return answers
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return trimmed(s)
	}
	return trimmed(fmt.Sprint(v))
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func upper(s string) string { return strings.ToUpper(s) }
