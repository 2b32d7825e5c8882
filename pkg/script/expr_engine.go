package script

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEngineName is the registry name of the expr-lang engine.
const ExprEngineName = "expr"

// ExprEngine evaluates github.com/expr-lang/expr expressions.
type ExprEngine struct {
	opts []expr.Option
}

// NewExprEngine creates an engine with the builtin functions installed.
func NewExprEngine() *ExprEngine {
	opts := []expr.Option{
		expr.AllowUndefinedVariables(),
		// replaced by the SQL-compatible versions below
		expr.DisableBuiltin("upper"),
		expr.DisableBuiltin("lower"),
		expr.DisableBuiltin("trim"),
	}
	for name, fn := range Builtins {
		opts = append(opts, expr.Function(name, fn))
	}
	return &ExprEngine{opts: opts}
}

func (e *ExprEngine) Name() string { return ExprEngineName }

func (e *ExprEngine) Dialect() Dialect { return DialectExpr }

// Compile parses and type-checks src.
func (e *ExprEngine) Compile(name, src string) (Program, error) {
	prg, err := expr.Compile(src, e.opts...)
	if err != nil {
		return nil, &EvalError{File: name, Expr: src, Message: err.Error()}
	}
	return &exprProgram{name: name, src: src, prg: prg}, nil
}

type exprProgram struct {
	name string
	src  string
	prg  *vm.Program
}

func (p *exprProgram) Run(vars map[string]any) (any, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	out, err := expr.Run(p.prg, vars)
	if err != nil {
		return nil, &EvalError{File: p.name, Expr: p.src, Message: err.Error()}
	}
	return out, nil
}
