package multicode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatLiteral renders a Go value (usually decoded from JSON) as a C++
// literal of the given port type. A nil value yields the type default.
func FormatLiteral(t PortType, v any) string {
	if v == nil {
		return DefaultLiteral(t)
	}

	switch t {
	case PortExecution:
		return ""
	case PortBool:
		if b, ok := toBool(v); ok {
			return strconv.FormatBool(b)
		}
	case PortInt32:
		if f, ok := toFloat(v); ok {
			return strconv.FormatInt(int64(f), 10)
		}
	case PortInt64:
		if f, ok := toFloat(v); ok {
			return strconv.FormatInt(int64(f), 10) + "LL"
		}
	case PortFloat:
		if f, ok := toFloat(v); ok {
			return formatFloat(f, 32) + "f"
		}
	case PortDouble:
		if f, ok := toFloat(v); ok {
			return formatFloat(f, 64)
		}
	case PortString:
		if s, ok := v.(string); ok {
			return QuoteString(s)
		}
		return QuoteString(fmt.Sprint(v))
	case PortVector:
		if items, ok := v.([]any); ok {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				f, ok := toFloat(item)
				if !ok {
					return DefaultLiteral(t)
				}
				parts = append(parts, formatFloat(f, 64))
			}
			return "std::vector<double>{" + strings.Join(parts, ", ") + "}"
		}
	case PortPointer, PortObject:
		return DefaultLiteral(t)
	default:
		return inferLiteral(v, DefaultLiteral(t))
	}
	return DefaultLiteral(t)
}

// QuoteString produces a C++ string literal
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// inferLiteral is used for any and unknown port types
func inferLiteral(v any, def string) string {
	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val)
	case string:
		return "std::string(" + QuoteString(val) + ")"
	case int, int32, int64, float32, float64:
		f, _ := toFloat(val)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
		return formatFloat(f, 64)
	}
	return def
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return b, err == nil
	}
	if f, ok := toFloat(v); ok {
		return f != 0, true
	}
	return false, false
}
