package script

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuoted
	tokBind
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
	tokComma
)

// token is a lexical unit of a SQL condition. For strings, quoted
// identifiers and bind variables text holds the unquoted value.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// TranslateError reports a condition that cannot be tokenized or parsed.
// Pos is the byte offset into the source.
type TranslateError struct {
	Source  string
	Pos     int
	Message string
}

func (e *TranslateError) Error() string {
	return fmt.Sprintf("at position %d: %s in %q", e.Pos, e.Message, e.Source)
}

func isIdentStart(r byte) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= 0x80
}

func isIdentPart(r byte) bool {
	return isIdentStart(r) || r == '$' || r >= '0' && r <= '9'
}

func isDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

var twoCharOps = []string{"<>", "!=", "<=", ">=", "||", "=="}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '\'':
			text, end, ok := readQuoted(src, i, '\'')
			if !ok {
				return nil, &TranslateError{Source: src, Pos: i, Message: "unterminated string literal"}
			}
			toks = append(toks, token{kind: tokString, text: text, pos: i})
			i = end

		case c == '"' || c == '`':
			text, end, ok := readQuoted(src, i, c)
			if !ok {
				return nil, &TranslateError{Source: src, Pos: i, Message: "unterminated quoted identifier"}
			}
			toks = append(toks, token{kind: tokQuoted, text: text, pos: i})
			i = end

		case c == '[':
			end := strings.IndexByte(src[i:], ']')
			if end < 0 {
				return nil, &TranslateError{Source: src, Pos: i, Message: "unterminated quoted identifier"}
			}
			toks = append(toks, token{kind: tokQuoted, text: src[i+1 : i+end], pos: i})
			i += end + 1

		case c == ':' && i+1 < len(src) && isIdentStart(src[i+1]):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokBind, text: src[i+1 : j], pos: i})
			i = j

		case isDigit(c) || c == '.' && i+1 < len(src) && isDigit(src[i+1]):
			j := scanNumber(src, i)
			toks = append(toks, token{kind: tokNumber, text: src[i:j], pos: i})
			i = j

		case isIdentStart(c):
			j := i
			for j < len(src) {
				if isIdentPart(src[j]) {
					j++
					continue
				}
				if src[j] == '.' && j+1 < len(src) && isIdentStart(src[j+1]) {
					j++
					continue
				}
				break
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j

		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++

		default:
			matched := false
			for _, op := range twoCharOps {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, token{kind: tokOp, text: op, pos: i})
					i += 2
					matched = true
					break
				}
			}
			if matched {
				continue
			}
			if strings.IndexByte("=<>+-*/%", c) >= 0 {
				toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
				i++
				continue
			}
			return nil, &TranslateError{Source: src, Pos: i, Message: fmt.Sprintf("unexpected character %q", rune(c))}
		}
	}
	return toks, nil
}

// readQuoted reads a literal opened by q at src[start]. A doubled quote
// inside the literal stands for one quote character.
func readQuoted(src string, start int, q byte) (string, int, bool) {
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		if src[i] == q {
			if i+1 < len(src) && src[i+1] == q {
				b.WriteByte(q)
				i += 2
				continue
			}
			return b.String(), i + 1, true
		}
		b.WriteByte(src[i])
		i++
	}
	return "", i, false
}

func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

// sqlKeywords are the words with a meaning in conditions. They are never
// reported as variables.
var sqlKeywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IS": true, "NULL": true,
	"IN": true, "BETWEEN": true, "LIKE": true, "TRUE": true, "FALSE": true,
}

func isKeyword(t token, kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func isSQLKeyword(t token) bool {
	return t.kind == tokIdent && sqlKeywords[strings.ToUpper(t.text)]
}

// targetReserved are words that cannot be used as identifiers in the
// expression languages.
var targetReserved = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "if": true, "else": true,
	"for": true, "def": true, "lambda": true, "return": true, "pass": true,
	"load": true, "while": true, "break": true, "continue": true, "elif": true,
	"nil": true, "true": true, "false": true, "None": true, "True": true, "False": true,
	"let": true, "matches": true, "contains": true, "startsWith": true, "endsWith": true,
}

// Identifier returns the name a SQL column or bind variable gets in
// translated expressions. Characters that are not letters, digits or
// underscores become underscores, a leading digit gets an underscore
// prefix and reserved words get an underscore suffix.
func Identifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if targetReserved[out] {
		out += "_"
	}
	return out
}

// dottedIdentifier applies Identifier to each segment of a.b.c.
func dottedIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = Identifier(p)
	}
	return strings.Join(parts, ".")
}
