// Package sqlutil provides SQL text helpers: identifier quoting, qualified
// name parsing, statement splitting and LIKE pattern conversion.
package sqlutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, SQLite, DuckDB, ODBC).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAtP uses @p1, @p2, etc. (SQL Server).
	PlaceholderAtP
	// PlaceholderColon uses :1, :2, etc. (Oracle).
	PlaceholderColon
)

// Placeholder returns the placeholder for the 1-based parameter index n.
func Placeholder(style PlaceholderStyle, n int) string {
	switch style {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(n)
	case PlaceholderAtP:
		return "@p" + strconv.Itoa(n)
	case PlaceholderColon:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// QualifiedName is a catalog.schema.object reference.
type QualifiedName struct {
	Catalog string
	Schema  string
	Object  string
}

// String joins the non-empty parts with dots.
func (q QualifiedName) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.Catalog, q.Schema, q.Object} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// ParseQualifiedName splits name into catalog, schema and object. Dots
// inside double quotes, backticks or brackets do not split. Quotes are
// removed from the parts. defaultSchema is used when no schema is given.
func ParseQualifiedName(name, defaultSchema string) QualifiedName {
	parts := splitIdentifier(name)
	q := QualifiedName{Schema: defaultSchema}
	switch len(parts) {
	case 0:
	case 1:
		q.Object = parts[0]
	case 2:
		q.Schema, q.Object = parts[0], parts[1]
	default:
		n := len(parts)
		q.Catalog = strings.Join(parts[:n-2], ".")
		q.Schema, q.Object = parts[n-2], parts[n-1]
	}
	return q
}

func splitIdentifier(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	var (
		parts []string
		cur   strings.Builder
		closing rune
	)
	for _, r := range name {
		switch {
		case closing != 0:
			if r == closing {
				closing = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '`':
			closing = r
		case r == '[':
			closing = ']'
		case r == '.':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}

// NeedsQuoting reports whether name must be quoted to be used as an
// identifier: it is empty, starts with a digit, or contains characters
// other than letters, digits, underscores and dollar signs.
func NeedsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return true
		}
	}
	return false
}

// QuoteIdentifier wraps name in quote, doubling embedded quotes. A quote of
// "[" uses "]" as the closing bracket.
func QuoteIdentifier(name, quote string) string {
	end := quote
	if quote == "[" {
		end = "]"
	}
	return quote + strings.ReplaceAll(name, end, end+end) + end
}

// QuoteIfNeeded quotes name only when NeedsQuoting reports true.
func QuoteIfNeeded(name, quote string) string {
	if NeedsQuoting(name) {
		return QuoteIdentifier(name, quote)
	}
	return name
}

// scanner walks SQL text and reports which bytes are code, string
// literal or comment.
type scanner struct {
	src string
	pos int
}

type segmentKind int

const (
	segCode segmentKind = iota
	segString
	segComment
)

// next returns the kind and end offset of the segment starting at pos.
func (s *scanner) next() (segmentKind, int) {
	src, i := s.src, s.pos
	switch {
	case strings.HasPrefix(src[i:], "--"):
		end := strings.IndexByte(src[i:], '\n')
		if end < 0 {
			return segComment, len(src)
		}
		return segComment, i + end
	case strings.HasPrefix(src[i:], "/*"):
		end := strings.Index(src[i+2:], "*/")
		if end < 0 {
			return segComment, len(src)
		}
		return segComment, i + 2 + end + 2
	case src[i] == '\'' || src[i] == '"' || src[i] == '`':
		q := src[i]
		j := i + 1
		for j < len(src) {
			if src[j] == q {
				if j+1 < len(src) && src[j+1] == q {
					j += 2
					continue
				}
				return segString, j + 1
			}
			j++
		}
		return segString, len(src)
	default:
		return segCode, i + 1
	}
}

// SplitStatements splits sql on semicolons outside of string literals,
// quoted identifiers and comments. Empty statements are dropped and each
// statement is trimmed.
func SplitStatements(sql string) []string {
	var (
		out   []string
		start int
	)
	s := &scanner{src: sql}
	for s.pos < len(sql) {
		kind, end := s.next()
		if kind == segCode && sql[s.pos] == ';' {
			if stmt := strings.TrimSpace(sql[start:s.pos]); stmt != "" {
				out = append(out, stmt)
			}
			start = end
		}
		s.pos = end
	}
	if stmt := strings.TrimSpace(sql[start:]); stmt != "" {
		out = append(out, stmt)
	}
	return out
}

// StripComments removes -- and /* */ comments outside of string literals.
func StripComments(sql string) string {
	var b strings.Builder
	s := &scanner{src: sql}
	for s.pos < len(sql) {
		kind, end := s.next()
		if kind != segComment {
			b.WriteString(sql[s.pos:end])
		}
		s.pos = end
	}
	return strings.TrimSpace(b.String())
}

// IsSelect reports whether sql is a query: its first keyword, ignoring
// comments and leading parentheses, is SELECT, WITH, VALUES, SHOW,
// DESCRIBE, EXPLAIN or PRAGMA.
func IsSelect(sql string) bool {
	s := strings.TrimLeft(StripComments(sql), "( \t\r\n")
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end >= 0 {
		s = s[:end]
	}
	switch strings.ToUpper(s) {
	case "SELECT", "WITH", "VALUES", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "PRAGMA":
		return true
	}
	return false
}

// LikeToRegexp converts a SQL LIKE pattern to an anchored, case-sensitive
// regular expression. % matches any run, _ matches one character, and a
// backslash escapes the next character.
func LikeToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(`\\`)
	}
	b.WriteString("$")
	return b.String()
}

// CompileLike compiles a LIKE pattern. When fold is set matching ignores case.
func CompileLike(pattern string, fold bool) (*regexp.Regexp, error) {
	expr := LikeToRegexp(pattern)
	if fold {
		expr = "(?is)" + expr
	} else {
		expr = "(?s)" + expr
	}
	return regexp.Compile(expr)
}

// MatchLike reports whether s matches the LIKE pattern. Invalid patterns
// never match.
func MatchLike(s, pattern string, fold bool) bool {
	re, err := CompileLike(pattern, fold)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
