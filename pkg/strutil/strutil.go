// Package strutil provides the string, conversion, date and number helpers
// shared by the rest of the toolkit.
//
// All functions are pure and safe for any input: they never panic and
// fall back to a caller supplied default when a value cannot be parsed.
package strutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IsNothing reports whether s is empty or contains only white space.
func IsNothing(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Nvl returns s, or def when s is nothing.
func Nvl(s, def string) string {
	if IsNothing(s) {
		return def
	}
	return s
}

// PadLeft left-pads s with pad up to width runes.
func PadLeft(s string, width int, pad rune) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return strings.Repeat(string(pad), n) + s
}

// PadRight right-pads s with pad up to width runes.
func PadRight(s string, width int, pad rune) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(string(pad), n)
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// ReplaceIgnoreCase replaces every case-insensitive occurrence of old in s.
func ReplaceIgnoreCase(s, old, replacement string) string {
	if old == "" {
		return s
	}
	lower := strings.ToLower(s)
	lowerOld := strings.ToLower(old)

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(lower[start:], lowerOld)
		if i < 0 {
			break
		}
		b.WriteString(s[start : start+i])
		b.WriteString(replacement)
		start += i + len(old)
	}
	b.WriteString(s[start:])
	return b.String()
}

// SplitQuoted splits s on sep, ignoring separators inside single or double
// quotes. Parts are trimmed; quotes are kept.
func SplitQuoted(s string, sep rune) []string {
	if s == "" {
		return nil
	}
	var (
		parts []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == sep:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, strings.TrimSpace(cur.String()))
	return parts
}

// Quote wraps s in q, doubling any embedded q.
func Quote(s string, q rune) string {
	qs := string(q)
	return qs + strings.ReplaceAll(s, qs, qs+qs) + qs
}

// Unquote removes a matching pair of single quotes, double quotes or
// backticks around s and undoubles embedded quotes.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '\'' && first != '"' && first != '`') {
		return s
	}
	q := string(first)
	return strings.ReplaceAll(s[1:len(s)-1], q+q, q)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// CamelToWords turns "firstName" or "first_name" into "First Name".
func CamelToWords(s string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, Capitalize(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return strings.Join(words, " ")
}

// ToCamel turns "first_name" or "First Name" into "firstName".
func ToCamel(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	var b strings.Builder
	for i, f := range fields {
		if i == 0 {
			b.WriteString(strings.ToLower(f[:1]) + f[1:])
			continue
		}
		b.WriteString(Capitalize(strings.ToLower(f)))
	}
	return b.String()
}

// NewUUID returns a random RFC 4122 UUID string.
func NewUUID() string {
	return uuid.New().String()
}
