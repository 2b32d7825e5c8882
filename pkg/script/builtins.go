package script

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/toolsverse/foundation/pkg/collections"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Builtin is a function available to expressions in every engine.
type Builtin func(args ...any) (any, error)

// Builtins are the functions every engine predeclares. SQL functions are
// translated to these names.
var Builtins = map[string]Builtin{
	"like":   builtinLike,
	"upper":  stringFunc("upper", strings.ToUpper),
	"lower":  stringFunc("lower", strings.ToLower),
	"trim":   stringFunc("trim", strings.TrimSpace),
	"length": builtinLength,
	"nvl":    builtinNvl,
	"substr": builtinSubstr,
}

func arity(name string, args []any, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%s: want %d arguments, got %d", name, lo, len(args))
		}
		return fmt.Errorf("%s: want %d to %d arguments, got %d", name, lo, hi, len(args))
	}
	return nil
}

func toString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// builtinLike matches SQL LIKE semantics. NULL operands never match.
func builtinLike(args ...any) (any, error) {
	if err := arity("like", args, 2, 2); err != nil {
		return nil, err
	}
	if args[0] == nil || args[1] == nil {
		return false, nil
	}
	re := likePatterns.compile(toString(args[1]))
	return re != nil && re.MatchString(toString(args[0])), nil
}

// LikeCacheSize bounds the number of compiled LIKE patterns kept.
const LikeCacheSize = 256

// likeCache holds compiled LIKE patterns, least recently used evicted
// first. Invalid patterns are cached as nil.
type likeCache struct {
	mu       sync.Mutex
	patterns *collections.LimitedMap[string, *regexp.Regexp]
}

var likePatterns = newLikeCache(LikeCacheSize)

func newLikeCache(size int) *likeCache {
	m := collections.NewLimitedMap[string, *regexp.Regexp](size)
	m.AccessOrder = true
	return &likeCache{patterns: m}
}

func (c *likeCache) compile(pattern string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.patterns.Get(pattern); ok {
		return re
	}
	re, err := sqlutil.CompileLike(pattern, false)
	if err != nil {
		re = nil
	}
	c.patterns.Put(pattern, re)
	return re
}

func (c *likeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patterns.Len()
}

func stringFunc(name string, fn func(string) string) Builtin {
	return func(args ...any) (any, error) {
		if err := arity(name, args, 1, 1); err != nil {
			return nil, err
		}
		if args[0] == nil {
			return nil, nil
		}
		return fn(toString(args[0])), nil
	}
}

func builtinLength(args ...any) (any, error) {
	if err := arity("length", args, 1, 1); err != nil {
		return nil, err
	}
	if args[0] == nil {
		return nil, nil
	}
	return utf8.RuneCountInString(toString(args[0])), nil
}

// builtinNvl returns the first non-nil argument.
func builtinNvl(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("nvl: want at least 1 argument")
	}
	for _, a := range args {
		if a != nil {
			return a, nil
		}
	}
	return nil, nil
}

// builtinSubstr is SQL SUBSTR: start is 1-based, length is optional.
func builtinSubstr(args ...any) (any, error) {
	if err := arity("substr", args, 2, 3); err != nil {
		return nil, err
	}
	if args[0] == nil {
		return nil, nil
	}
	runes := []rune(toString(args[0]))
	start, err := cast.ToIntE(args[1])
	if err != nil {
		return nil, fmt.Errorf("substr: start: %w", err)
	}
	if start < 1 {
		start = 1
	}
	from := start - 1
	if from > len(runes) {
		return "", nil
	}
	to := len(runes)
	if len(args) == 3 {
		n, err := cast.ToIntE(args[2])
		if err != nil {
			return nil, fmt.Errorf("substr: length: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("substr: negative length %d", n)
		}
		if from+n < to {
			to = from + n
		}
	}
	return string(runes[from:to]), nil
}
