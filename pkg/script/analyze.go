package script

import "strings"

// Variables returns the variables referenced by a SQL condition in order
// of first appearance. Keywords, literals and function names are skipped.
// Bind variables are reported without the leading colon and quoted
// identifiers without their quotes.
func Variables(sqlCond string) ([]string, error) {
	toks, err := lex(sqlCond)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var vars []string
	for i, tok := range toks {
		switch tok.kind {
		case tokIdent:
			if isSQLKeyword(tok) {
				continue
			}
			if i+1 < len(toks) && toks[i+1].kind == tokLParen {
				continue
			}
		case tokBind, tokQuoted:
		default:
			continue
		}
		if !seen[tok.text] {
			seen[tok.text] = true
			vars = append(vars, tok.text)
		}
	}
	return vars, nil
}

// FunctionCall is a function call found in a condition.
type FunctionCall struct {
	Name string
	// Text is the full call, name through closing parenthesis.
	Text string
	// Args holds the raw text of each top-level argument.
	Args []string
	Pos  int
}

// Functions returns the function calls in a SQL condition, outer calls
// before the calls nested in their arguments.
func Functions(sqlCond string) ([]FunctionCall, error) {
	toks, err := lex(sqlCond)
	if err != nil {
		return nil, err
	}
	var calls []FunctionCall
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].kind != tokIdent || toks[i+1].kind != tokLParen || isSQLKeyword(toks[i]) {
			continue
		}
		open := toks[i+1]
		depth := 0
		argStart := open.pos + 1
		var args []string
		closeIdx := -1
	scan:
		for j := i + 1; j < len(toks); j++ {
			switch toks[j].kind {
			case tokLParen:
				depth++
			case tokRParen:
				depth--
				if depth == 0 {
					closeIdx = j
					break scan
				}
			case tokComma:
				if depth == 1 {
					args = append(args, strings.TrimSpace(sqlCond[argStart:toks[j].pos]))
					argStart = toks[j].pos + 1
				}
			}
		}
		if closeIdx < 0 {
			return nil, &TranslateError{Source: sqlCond, Pos: open.pos, Message: "unbalanced parentheses"}
		}
		closePos := toks[closeIdx].pos
		if last := strings.TrimSpace(sqlCond[argStart:closePos]); last != "" || len(args) > 0 {
			args = append(args, last)
		}
		calls = append(calls, FunctionCall{
			Name: toks[i].text,
			Text: sqlCond[toks[i].pos : closePos+1],
			Args: args,
			Pos:  toks[i].pos,
		})
	}
	return calls, nil
}
