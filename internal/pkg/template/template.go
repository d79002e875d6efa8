// Package template implements the format-columns mini-language used by source
// definitions: "{firstname} {lastname}" with optional indexed accessors such
// as "{numbers[0]}", "{numbers_by_label[mobile]}" and
// "{numbers_except_label[mobile][0]}". Unresolved placeholders render as the
// empty string.
package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Render substitutes every {placeholder} in tmpl with its value from fields.
func Render(tmpl string, fields map[string]any) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); {
		open := strings.IndexByte(tmpl[i:], '{')
		if open < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		b.WriteString(tmpl[i : i+open])
		i += open

		close := strings.IndexByte(tmpl[i:], '}')
		if close < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		expr := tmpl[i+1 : i+close]
		b.WriteString(eval(expr, fields))
		i += close + 1
	}
	return b.String()
}

// eval resolves one placeholder expression: a field name followed by zero or
// more bracketed accessors.
func eval(expr string, fields map[string]any) string {
	name := expr
	var accessors []string
	if bracket := strings.IndexByte(expr, '['); bracket >= 0 {
		name = expr[:bracket]
		rest := expr[bracket:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				return ""
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return ""
			}
			accessors = append(accessors, rest[1:end])
			rest = rest[end+1:]
		}
	}

	value, ok := fields[name]
	if !ok {
		return ""
	}
	for _, key := range accessors {
		value, ok = access(value, key)
		if !ok {
			return ""
		}
	}
	return stringify(value)
}

func access(value any, key string) (any, bool) {
	switch v := value.(type) {
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	case []string:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	case map[string]any:
		out, ok := v[key]
		return out, ok
	case map[string]string:
		out, ok := v[key]
		return out, ok
	default:
		return nil, false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(v)
	case float64:
		// JSON numbers decode as float64; render integers without a dot.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return stringify(float64(v))
	default:
		return ""
	}
}
