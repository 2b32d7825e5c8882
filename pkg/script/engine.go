package script

import (
	"github.com/toolsverse/foundation/pkg/classutil"
)

// Program is a compiled expression. Implementations are safe for
// concurrent use.
type Program interface {
	Run(vars map[string]any) (any, error)
}

// Engine compiles expressions in one language.
type Engine interface {
	Name() string
	// Dialect is the language Translate must target for this engine.
	Dialect() Dialect
	Compile(name, src string) (Program, error)
}

var engines = classutil.NewRegistry[Engine]("script engine")

func init() {
	engines.Register(ExprEngineName, func() Engine { return NewExprEngine() })
	engines.Register(StarlarkEngineName, func() Engine { return NewStarlarkEngine(0) })
}

// RegisterEngine makes an engine available to NewEngine.
func RegisterEngine(name string, factory func() Engine) {
	engines.Register(name, factory)
}

// NewEngine creates the engine registered under name. An empty name
// selects the expr engine.
func NewEngine(name string) (Engine, error) {
	if name == "" {
		name = ExprEngineName
	}
	return engines.New(name)
}

// EngineNames lists the registered engines.
func EngineNames() []string {
	return engines.Names()
}
