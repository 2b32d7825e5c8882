package script

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect is the target language of Translate.
type Dialect int

const (
	// DialectExpr targets github.com/expr-lang/expr.
	DialectExpr Dialect = iota
	// DialectStarlark targets Starlark expressions.
	DialectStarlark
)

func (d Dialect) String() string {
	if d == DialectStarlark {
		return "starlark"
	}
	return "expr"
}

func (d Dialect) null() string {
	if d == DialectStarlark {
		return "None"
	}
	return "nil"
}

func (d Dialect) boolean(v bool) string {
	switch {
	case d == DialectStarlark && v:
		return "True"
	case d == DialectStarlark:
		return "False"
	case v:
		return "true"
	default:
		return "false"
	}
}

// sqlFunctions maps SQL function names to builtin names.
var sqlFunctions = map[string]string{
	"UPPER":     "upper",
	"UCASE":     "upper",
	"LOWER":     "lower",
	"LCASE":     "lower",
	"TRIM":      "trim",
	"LENGTH":    "length",
	"LEN":       "length",
	"NVL":       "nvl",
	"IFNULL":    "nvl",
	"COALESCE":  "nvl",
	"SUBSTR":    "substr",
	"SUBSTRING": "substr",
}

var comparisonOps = map[string]string{
	"=": "==", "==": "==", "<>": "!=", "!=": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

// Translate rewrites a SQL condition (a WHERE clause body) as an
// expression in the target dialect. An empty condition translates to "".
//
//	Translate("status = 'A' AND amount BETWEEN 1 AND 10", DialectExpr)
//	// status == "A" and (amount >= 1 and amount <= 10)
func Translate(sqlCond string, d Dialect) (string, error) {
	toks, err := lex(sqlCond)
	if err != nil {
		return "", err
	}
	if len(toks) == 0 {
		return "", nil
	}
	t := &translator{src: sqlCond, toks: toks, d: d}
	out, err := t.parseOr()
	if err != nil {
		return "", err
	}
	if tok := t.peek(); tok.kind != tokEOF {
		return "", t.errorf(tok, "unexpected %q", tok.text)
	}
	return out, nil
}

type translator struct {
	src  string
	toks []token
	pos  int
	d    Dialect
}

func (t *translator) peek() token {
	if t.pos < len(t.toks) {
		return t.toks[t.pos]
	}
	return token{kind: tokEOF, pos: len(t.src)}
}

func (t *translator) peekAt(n int) token {
	if t.pos+n < len(t.toks) {
		return t.toks[t.pos+n]
	}
	return token{kind: tokEOF, pos: len(t.src)}
}

func (t *translator) next() token {
	tok := t.peek()
	if t.pos < len(t.toks) {
		t.pos++
	}
	return tok
}

func (t *translator) errorf(tok token, format string, args ...any) error {
	return &TranslateError{Source: t.src, Pos: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (t *translator) expect(kind tokenKind, what string) error {
	tok := t.next()
	if tok.kind != kind {
		if tok.kind == tokEOF {
			return t.errorf(tok, "expected %s, got end of condition", what)
		}
		return t.errorf(tok, "expected %s, got %q", what, tok.text)
	}
	return nil
}

func (t *translator) expectKeyword(kw string) error {
	tok := t.next()
	if !isKeyword(tok, kw) {
		return t.errorf(tok, "expected %s", kw)
	}
	return nil
}

func (t *translator) parseOr() (string, error) {
	left, err := t.parseAnd()
	if err != nil {
		return "", err
	}
	for isKeyword(t.peek(), "OR") {
		t.next()
		right, err := t.parseAnd()
		if err != nil {
			return "", err
		}
		left = left + " or " + right
	}
	return left, nil
}

func (t *translator) parseAnd() (string, error) {
	left, err := t.parseNot()
	if err != nil {
		return "", err
	}
	for isKeyword(t.peek(), "AND") {
		t.next()
		right, err := t.parseNot()
		if err != nil {
			return "", err
		}
		left = left + " and " + right
	}
	return left, nil
}

func (t *translator) parseNot() (string, error) {
	if isKeyword(t.peek(), "NOT") {
		t.next()
		operand, err := t.parseNot()
		if err != nil {
			return "", err
		}
		return "not (" + operand + ")", nil
	}
	return t.parsePredicate()
}

func (t *translator) parsePredicate() (string, error) {
	left, err := t.parseAdditive()
	if err != nil {
		return "", err
	}

	tok := t.peek()
	if tok.kind == tokOp {
		if op, ok := comparisonOps[tok.text]; ok {
			t.next()
			right, err := t.parseAdditive()
			if err != nil {
				return "", err
			}
			return left + " " + op + " " + right, nil
		}
	}

	if isKeyword(tok, "IS") {
		t.next()
		op := "=="
		if isKeyword(t.peek(), "NOT") {
			t.next()
			op = "!="
		}
		val := t.next()
		switch {
		case isKeyword(val, "NULL"):
			return left + " " + op + " " + t.d.null(), nil
		case isKeyword(val, "TRUE"):
			return left + " " + op + " " + t.d.boolean(true), nil
		case isKeyword(val, "FALSE"):
			return left + " " + op + " " + t.d.boolean(false), nil
		default:
			return "", t.errorf(val, "expected NULL, TRUE or FALSE after IS")
		}
	}

	negate := false
	if isKeyword(tok, "NOT") {
		after := t.peekAt(1)
		if isKeyword(after, "IN") || isKeyword(after, "BETWEEN") || isKeyword(after, "LIKE") {
			t.next()
			negate = true
			tok = t.peek()
		}
	}

	switch {
	case isKeyword(tok, "IN"):
		t.next()
		items, err := t.parseList()
		if err != nil {
			return "", err
		}
		op := " in "
		if negate {
			op = " not in "
		}
		return left + op + "[" + strings.Join(items, ", ") + "]", nil

	case isKeyword(tok, "BETWEEN"):
		t.next()
		lo, err := t.parseAdditive()
		if err != nil {
			return "", err
		}
		if err := t.expectKeyword("AND"); err != nil {
			return "", err
		}
		hi, err := t.parseAdditive()
		if err != nil {
			return "", err
		}
		out := "(" + left + " >= " + lo + " and " + left + " <= " + hi + ")"
		if negate {
			out = "not " + out
		}
		return out, nil

	case isKeyword(tok, "LIKE"):
		t.next()
		pattern, err := t.parseAdditive()
		if err != nil {
			return "", err
		}
		out := "like(" + left + ", " + pattern + ")"
		if negate {
			out = "not " + out
		}
		return out, nil
	}

	return left, nil
}

func (t *translator) parseList() ([]string, error) {
	if err := t.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	var items []string
	if t.peek().kind == tokRParen {
		t.next()
		return items, nil
	}
	for {
		item, err := t.parseAdditive()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if t.peek().kind != tokComma {
			break
		}
		t.next()
	}
	if err := t.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return items, nil
}

func (t *translator) parseAdditive() (string, error) {
	left, err := t.parseMultiplicative()
	if err != nil {
		return "", err
	}
	for {
		tok := t.peek()
		if tok.kind != tokOp || (tok.text != "+" && tok.text != "-" && tok.text != "||") {
			return left, nil
		}
		t.next()
		right, err := t.parseMultiplicative()
		if err != nil {
			return "", err
		}
		op := tok.text
		if op == "||" {
			op = "+"
		}
		left = left + " " + op + " " + right
	}
}

func (t *translator) parseMultiplicative() (string, error) {
	left, err := t.parseUnary()
	if err != nil {
		return "", err
	}
	for {
		tok := t.peek()
		if tok.kind != tokOp || (tok.text != "*" && tok.text != "/" && tok.text != "%") {
			return left, nil
		}
		t.next()
		right, err := t.parseUnary()
		if err != nil {
			return "", err
		}
		left = left + " " + tok.text + " " + right
	}
}

func (t *translator) parseUnary() (string, error) {
	tok := t.peek()
	if tok.kind == tokOp && (tok.text == "-" || tok.text == "+") {
		t.next()
		operand, err := t.parseUnary()
		if err != nil {
			return "", err
		}
		return tok.text + operand, nil
	}
	return t.parsePrimary()
}

func (t *translator) parsePrimary() (string, error) {
	tok := t.next()
	switch tok.kind {
	case tokNumber:
		return tok.text, nil
	case tokString:
		return strconv.Quote(tok.text), nil
	case tokBind, tokQuoted:
		return Identifier(tok.text), nil
	case tokLParen:
		inner, err := t.parseOr()
		if err != nil {
			return "", err
		}
		if err := t.expect(tokRParen, ")"); err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case tokIdent:
		switch {
		case isKeyword(tok, "NULL"):
			return t.d.null(), nil
		case isKeyword(tok, "TRUE"):
			return t.d.boolean(true), nil
		case isKeyword(tok, "FALSE"):
			return t.d.boolean(false), nil
		case isSQLKeyword(tok):
			return "", t.errorf(tok, "unexpected keyword %s", strings.ToUpper(tok.text))
		}
		if t.peek().kind == tokLParen {
			return t.parseCall(tok)
		}
		return dottedIdentifier(tok.text), nil
	case tokEOF:
		return "", t.errorf(tok, "unexpected end of condition")
	default:
		return "", t.errorf(tok, "unexpected %q", tok.text)
	}
}

func (t *translator) parseCall(name token) (string, error) {
	t.next() // (
	fn, ok := sqlFunctions[strings.ToUpper(name.text)]
	if !ok {
		fn = Identifier(strings.ToLower(name.text))
	}
	var args []string
	if t.peek().kind == tokRParen {
		t.next()
		return fn + "()", nil
	}
	for {
		arg, err := t.parseOr()
		if err != nil {
			return "", err
		}
		args = append(args, arg)
		if t.peek().kind != tokComma {
			break
		}
		t.next()
	}
	if err := t.expect(tokRParen, ")"); err != nil {
		return "", err
	}
	return fn + "(" + strings.Join(args, ", ") + ")", nil
}
