// Package script translates SQL conditions into expressions and
// evaluates them with a pluggable engine. Compiled programs are cached
// and shared across goroutines.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// EvalError represents an error during compilation or evaluation.
type EvalError struct {
	File    string
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("error evaluating %q: %s", e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}

type cached struct {
	src  string
	prog Program
}

// Script evaluates expressions with an engine, caching compiled programs
// keyed by a hash of their source.
type Script struct {
	engine Engine
	logger *slog.Logger

	cache sync.Map // uint64 -> *cached
	size  atomic.Int64
}

// New creates a Script on engine. A nil logger discards output.
func New(engine Engine, logger *slog.Logger) *Script {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if l, ok := engine.(interface{ SetLogger(*slog.Logger) }); ok {
		l.SetLogger(logger)
	}
	return &Script{engine: engine, logger: logger}
}

// Engine returns the engine used for compilation.
func (s *Script) Engine() Engine {
	return s.engine
}

// Compile returns the cached program for src, compiling it on first use.
func (s *Script) Compile(src string) (Program, error) {
	key := xxh3.HashString(src)
	if v, ok := s.cache.Load(key); ok {
		if c := v.(*cached); c.src == src {
			return c.prog, nil
		}
		// hash collision: compile without caching
		s.logger.Debug("script cache collision", slog.String("expr", src))
		return s.engine.Compile("expr", src)
	}

	prog, err := s.engine.Compile("expr", src)
	if err != nil {
		return nil, err
	}
	if _, loaded := s.cache.LoadOrStore(key, &cached{src: src, prog: prog}); !loaded {
		s.size.Add(1)
		s.logger.Debug("compiled expression",
			slog.String("engine", s.engine.Name()),
			slog.String("expr", src))
	}
	return prog, nil
}

// Eval compiles (or reuses) src and runs it with vars.
func (s *Script) Eval(src string, vars map[string]any) (any, error) {
	prog, err := s.Compile(src)
	if err != nil {
		return nil, err
	}
	return prog.Run(vars)
}

// EvalBool evaluates src and converts the result to a bool. A nil result
// is false.
func (s *Script) EvalBool(src string, vars map[string]any) (bool, error) {
	v, err := s.Eval(src, vars)
	if err != nil {
		return false, err
	}
	return toBool(src, v)
}

func toBool(src string, v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, &EvalError{Expr: src, Message: fmt.Sprintf("result %v (%T) is not a boolean", v, v)}
	}
	return b, nil
}

// EvalCondition translates a SQL condition for the engine and evaluates
// it. Variable names are mapped through Identifier, so callers pass the
// names as they appear in SQL. An empty condition is true.
func (s *Script) EvalCondition(sqlCond string, vars map[string]any) (bool, error) {
	if strings.TrimSpace(sqlCond) == "" {
		return true, nil
	}
	src, err := Translate(sqlCond, s.engine.Dialect())
	if err != nil {
		return false, err
	}
	return s.EvalBool(src, conditionVars(vars))
}

func conditionVars(vars map[string]any) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
		if id := Identifier(k); id != k {
			out[id] = v
		}
	}
	return out
}

// Task is one evaluation for EvalAll.
type Task struct {
	Name string
	Expr string
	Vars map[string]any
	// Condition marks Expr as a SQL condition for EvalCondition.
	Condition bool
}

// Result is the outcome of a Task.
type Result struct {
	Name  string
	Value any
	Err   error
}

// EvalAll evaluates tasks concurrently. Results are in task order and
// carry per-task errors; the returned error is only set when ctx is
// cancelled.
func (s *Script) EvalAll(ctx context.Context, tasks []Task) ([]Result, error) {
	results := make([]Result, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := Result{Name: task.Name}
			if task.Condition {
				r.Value, r.Err = s.EvalCondition(task.Expr, task.Vars)
			} else {
				r.Value, r.Err = s.Eval(task.Expr, task.Vars)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CacheSize returns the number of cached programs.
func (s *Script) CacheSize() int {
	return int(s.size.Load())
}

// ClearCache drops all cached programs.
func (s *Script) ClearCache() {
	s.cache.Range(func(k, _ any) bool {
		if _, loaded := s.cache.LoadAndDelete(k); loaded {
			s.size.Add(-1)
		}
		return true
	})
}
