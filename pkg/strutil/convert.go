package strutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Str2Int parses s as a decimal integer, returning def on failure.
func Str2Int(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// Str2Int64 parses s as a decimal int64, returning def on failure.
func Str2Int64(s string, def int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return def
	}
	return v
}

// Str2Float parses s as a float, returning def on failure.
func Str2Float(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// Str2Bool accepts true/false, yes/no, y/n, on/off and 1/0 in any case.
func Str2Bool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "on", "1", "t":
		return true
	case "false", "no", "n", "off", "0", "f":
		return false
	}
	return def
}

// ToInt converts any scalar to an int, returning def on failure.
func ToInt(v any, def int) int {
	if s, ok := v.(string); ok {
		return Str2Int(s, def)
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// ToFloat converts any scalar to a float64, returning def on failure.
func ToFloat(v any, def float64) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// ToBool converts any scalar to a bool, returning def on failure.
func ToBool(v any, def bool) bool {
	if s, ok := v.(string); ok {
		return Str2Bool(s, def)
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// ToString renders v as a string. Nil becomes "" and byte slices are
// interpreted as text.
func ToString(v any) string {
	if v == nil {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
