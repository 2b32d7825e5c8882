package script

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// StarlarkEngineName is the registry name of the Starlark engine.
const StarlarkEngineName = "starlark"

// resultVar receives the value of the compiled expression.
const resultVar = "result"

// StarlarkEngine evaluates Starlark expressions. Threads are reused
// through a pool.
type StarlarkEngine struct {
	pool     *ThreadPool
	builtins starlark.StringDict
}

// NewStarlarkEngine creates an engine whose thread pool holds up to
// poolSize idle threads (10 when poolSize <= 0).
func NewStarlarkEngine(poolSize int) *StarlarkEngine {
	builtins := make(starlark.StringDict, len(Builtins))
	for name, fn := range Builtins {
		builtins[name] = wrapBuiltin(name, fn)
	}
	return &StarlarkEngine{
		pool:     NewThreadPool(poolSize),
		builtins: builtins,
	}
}

func (e *StarlarkEngine) Name() string { return StarlarkEngineName }

func (e *StarlarkEngine) Dialect() Dialect { return DialectStarlark }

// SetLogger receives the output of Starlark print() calls.
func (e *StarlarkEngine) SetLogger(logger *slog.Logger) { e.pool.SetLogger(logger) }

// Pool returns the engine's thread pool.
func (e *StarlarkEngine) Pool() *ThreadPool { return e.pool }

// Compile parses src as an expression and resolves it into a program.
// Every name outside the Starlark universe is predeclared, so unbound
// variables fail at run time rather than compile time.
func (e *StarlarkEngine) Compile(name, src string) (Program, error) {
	opts := &syntax.FileOptions{}
	if _, err := opts.ParseExpr(name, src, 0); err != nil {
		return nil, &EvalError{File: name, Expr: src, Message: err.Error()}
	}
	isPredeclared := func(n string) bool {
		_, universal := starlark.Universe[n]
		return !universal
	}
	wrapped := fmt.Sprintf("%s = (%s\n)\n", resultVar, src)
	_, prog, err := starlark.SourceProgramOptions(opts, name, wrapped, isPredeclared)
	if err != nil {
		return nil, &EvalError{File: name, Expr: src, Message: err.Error()}
	}
	return &starlarkProgram{engine: e, name: name, src: src, prog: prog}, nil
}

type starlarkProgram struct {
	engine *StarlarkEngine
	name   string
	src    string
	prog   *starlark.Program
}

func (p *starlarkProgram) Run(vars map[string]any) (any, error) {
	predeclared := make(starlark.StringDict, len(p.engine.builtins)+len(vars))
	for k, v := range p.engine.builtins {
		predeclared[k] = v
	}
	for k, v := range vars {
		sv, err := GoToStarlark(v)
		if err != nil {
			return nil, &EvalError{File: p.name, Expr: p.src, Message: fmt.Sprintf("variable %s: %v", k, err)}
		}
		predeclared[k] = sv
	}

	thread := p.engine.pool.Get(p.name)
	defer p.engine.pool.Put(thread)

	globals, err := p.prog.Init(thread, predeclared)
	if err != nil {
		return nil, &EvalError{File: p.name, Expr: p.src, Message: err.Error()}
	}
	return ToGo(globals[resultVar])
}

func wrapBuiltin(name string, fn Builtin) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		goArgs := make([]any, len(args))
		for i, a := range args {
			v, err := ToGo(a)
			if err != nil {
				return nil, err
			}
			goArgs[i] = v
		}
		out, err := fn(goArgs...)
		if err != nil {
			return nil, err
		}
		return GoToStarlark(out)
	})
}

// DefaultMaxSteps is the Starlark step budget of one program run.
const DefaultMaxSteps = 1_000_000

// ThreadPool keeps idle Starlark threads for reuse by program runs. A
// thread handed out by Get carries a fresh step budget; Put clears its
// name and cancellation before the thread goes back to the idle list.
type ThreadPool struct {
	mu       sync.Mutex
	idle     []*starlark.Thread
	maxIdle  int
	maxSteps uint64
	logger   *slog.Logger
}

// NewThreadPool creates a pool keeping at most maxIdle idle threads (10
// when maxIdle <= 0) with a DefaultMaxSteps budget per run.
func NewThreadPool(maxIdle int) *ThreadPool {
	if maxIdle <= 0 {
		maxIdle = 10
	}
	return &ThreadPool{
		idle:     make([]*starlark.Thread, 0, maxIdle),
		maxIdle:  maxIdle,
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// SetMaxSteps changes the step budget of later runs. Zero means no limit.
func (p *ThreadPool) SetMaxSteps(n uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxSteps = n
}

// SetLogger routes Starlark print() output to logger at debug level.
func (p *ThreadPool) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = logger
}

func (p *ThreadPool) print(thread *starlark.Thread, msg string) {
	p.mu.Lock()
	logger := p.logger
	p.mu.Unlock()
	logger.Debug("starlark print", slog.String("expr", thread.Name), slog.String("msg", msg))
}

// Get takes an idle thread, or creates one, named after the program.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	var thread *starlark.Thread
	if n := len(p.idle); n > 0 {
		thread = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	maxSteps := p.maxSteps
	p.mu.Unlock()

	if thread == nil {
		thread = &starlark.Thread{Print: p.print}
	}
	thread.Name = name
	// The step counter is cumulative over the thread's life, and a zero
	// limit only means unlimited before the thread's first call.
	if maxSteps > 0 {
		thread.SetMaxExecutionSteps(thread.ExecutionSteps() + maxSteps)
	} else {
		thread.SetMaxExecutionSteps(math.MaxUint64)
	}
	return thread
}

// Put returns thread to the idle list, dropping it when the list is full.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	thread.Name = ""
	thread.Uncancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) < p.maxIdle {
		p.idle = append(p.idle, thread)
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: nil, strings, integers, floats, bool, time.Time,
// []byte, []string, []any and map[string]any.
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case starlark.Value:
		return val, nil
	case string:
		return starlark.String(val), nil
	case []byte:
		return starlark.String(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int8, int16, int32, int64:
		return starlark.MakeInt64(cast.ToInt64(val)), nil
	case uint, uint8, uint16, uint32, uint64:
		return starlark.MakeUint64(cast.ToUint64(val)), nil
	case float32:
		return starlark.Float(val), nil
	case float64:
		return starlark.Float(val), nil
	case bool:
		return starlark.Bool(val), nil
	case time.Time:
		return starlark.String(val.Format(time.RFC3339Nano)), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, float64, bool, []any, map[string]any, or nil
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case nil, starlark.NoneType:
		return nil, nil

	case starlark.String:
		return string(val), nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return val.String(), nil
		}
		return i64, nil

	case starlark.Float:
		return float64(val), nil

	case starlark.Bool:
		return bool(val), nil

	case *starlark.List:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil

	case starlark.Tuple:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil

	case *starlark.Dict:
		result := make(map[string]any)
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %T", item[0])
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			result[string(key)] = gv
		}
		return result, nil

	default:
		return val.String(), nil
	}
}
