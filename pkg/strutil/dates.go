package strutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// javaTokens maps pattern letters runs to Go reference-time fragments.
// Longer runs are matched first.
var javaTokens = []struct {
	pattern string
	layout  string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"E", "Mon"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"SS", "00"},
	{"S", "0"},
	{"a", "PM"},
	{"XXX", "-07:00"},
	{"X", "-07"},
	{"Z", "-0700"},
	{"z", "MST"},
}

// dateSegment is a run of a Java date pattern: either literal text or one
// pattern token with its Go layout.
type dateSegment struct {
	text    string
	literal bool
	// fraction is the digit count of an S run, formatted by hand since Go
	// only knows fractional seconds after a '.' or ','.
	fraction int
}

// splitPattern cuts a Java date pattern into literal and token segments.
// Quoted text is literal and '' stands for a single quote, inside or
// outside quotes.
func splitPattern(pattern string) []dateSegment {
	var (
		segs []dateSegment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, dateSegment{text: lit.String(), literal: true})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				lit.WriteByte('\'')
				i += 2
				continue
			}
			i++
			for i < len(pattern) {
				if pattern[i] == '\'' {
					if i+1 < len(pattern) && pattern[i+1] == '\'' {
						lit.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				lit.WriteByte(pattern[i])
				i++
			}
			continue
		}

		matched := false
		for _, tok := range javaTokens {
			if strings.HasPrefix(pattern[i:], tok.pattern) {
				flush()
				seg := dateSegment{text: tok.layout}
				if tok.pattern[0] == 'S' {
					seg.fraction = len(tok.pattern)
				}
				segs = append(segs, seg)
				i += len(tok.pattern)
				matched = true
				break
			}
		}
		if !matched {
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return segs
}

// layoutProbes differ in every field, so text that formats to itself
// under both holds no layout element.
var layoutProbes = []time.Time{
	time.Date(2009, time.November, 17, 20, 34, 58, 651387237, time.FixedZone("XYZ", 5*3600)),
	time.Date(1998, time.April, 5, 7, 12, 33, 0, time.FixedZone("ABC", -3*3600)),
}

func isPlainText(s string) bool {
	for _, t := range layoutProbes {
		if t.Format(s) != s {
			return false
		}
	}
	return true
}

// ToGoLayout converts a Java style date pattern such as
// "yyyy-MM-dd HH:mm:ss.SSS" into a Go time layout. Text in single quotes
// is copied literally and '' stands for a single quote. Literal text that
// contains a Go layout element (e.g. 'Q1') cannot be expressed in a
// layout; ToGoLayoutE reports it.
func ToGoLayout(pattern string) string {
	var b strings.Builder
	for _, seg := range splitPattern(pattern) {
		b.WriteString(seg.text)
	}
	return b.String()
}

// ToGoLayoutE is ToGoLayout that fails when literal text would be read as
// a layout element.
func ToGoLayoutE(pattern string) (string, error) {
	var b strings.Builder
	for _, seg := range splitPattern(pattern) {
		if seg.literal && !isPlainText(seg.text) {
			return "", fmt.Errorf("literal %q in date pattern %q clashes with a Go layout element", seg.text, pattern)
		}
		b.WriteString(seg.text)
	}
	return b.String(), nil
}

// FormatDate formats t with a Java style pattern. Each token is formatted
// on its own, so literal text is never substituted.
func FormatDate(t time.Time, pattern string) string {
	var b strings.Builder
	for _, seg := range splitPattern(pattern) {
		switch {
		case seg.literal:
			b.WriteString(seg.text)
		case seg.fraction > 0:
			b.WriteString(fmt.Sprintf("%09d", t.Nanosecond())[:seg.fraction])
		default:
			b.WriteString(t.Format(seg.text))
		}
	}
	return b.String()
}

// ParseDate parses s with a Java style pattern.
func ParseDate(s, pattern string) (time.Time, error) {
	layout, err := ToGoLayoutE(pattern)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q with pattern %q: %w", s, pattern, err)
	}
	return t, nil
}

// ParseAnyDate parses s using a list of common layouts.
func ParseAnyDate(s string) (time.Time, error) {
	t, err := cast.ToTimeE(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return t, nil
}
