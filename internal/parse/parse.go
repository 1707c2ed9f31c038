// Package parse converts loosely typed inputs (provider text, decoded JSON)
// into typed values. Every function reports absence through its second return
// value instead of coercing to zero, since zero is a meaningful breadth count.
package parse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted date form.
const DateLayout = "2006-01-02"

var missingTokens = map[string]bool{"": true, "-": true, "--": true, "N/A": true}

// ParseNumber accepts Go numerics, json.Number and text such as "1,234.5".
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case uint32:
		f = float64(n)
	case bool:
		if n {
			f = 1
		}
	case json.Number:
		return ParseNumber(string(n))
	case string:
		text := strings.TrimSpace(n)
		if missingTokens[text] {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt is ParseNumber rounded half-to-even.
func ParseInt(v any) (int, bool) {
	f, ok := ParseNumber(v)
	if !ok {
		return 0, false
	}
	r := math.RoundToEven(f)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return 0, false
	}
	return int(r), true
}

// ParseBool accepts booleans, numbers (0 is false) and on/off style text.
// Unrecognised text is absent, not false.
func ParseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case nil:
		return false, false
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
		return false, false
	}
	if f, ok := ParseNumber(v); ok {
		return f != 0, true
	}
	return false, false
}

// ParseDate accepts strict ISO YYYY-MM-DD text.
func ParseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDate reports whether v is a valid YYYY-MM-DD date.
func IsDate(v any) bool {
	_, ok := ParseDate(v)
	return ok
}

// NumberPtr is ParseNumber as a pointer; unparseable input is nil.
func NumberPtr(v any) *float64 {
	if f, ok := ParseNumber(v); ok {
		return &f
	}
	return nil
}

// IntPtr is ParseInt as a pointer; unparseable input is nil.
func IntPtr(v any) *int {
	if n, ok := ParseInt(v); ok {
		return &n
	}
	return nil
}

// BoolPtr is ParseBool as a pointer; unparseable input is nil.
func BoolPtr(v any) *bool {
	if b, ok := ParseBool(v); ok {
		return &b
	}
	return nil
}

// StringPtr trims text values; empty or non-string input is nil.
func StringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
