package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/toolsverse/foundation/internal/cli/config"
	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/history"
	"github.com/toolsverse/foundation/pkg/script"
	"github.com/toolsverse/foundation/pkg/strutil"
)

// NewScriptCommand creates the script command group.
func NewScriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Translate and evaluate SQL conditions",
		Long: `Translate SQL conditions into expressions and evaluate them with the
configured script engine (expr or starlark).`,
	}
	cmd.AddCommand(newScriptTranslateCommand())
	cmd.AddCommand(newScriptVariablesCommand())
	cmd.AddCommand(newScriptFunctionsCommand())
	cmd.AddCommand(newScriptEvalCommand())
	cmd.AddCommand(newScriptREPLCommand())
	return cmd
}

func newScriptTranslateCommand() *cobra.Command {
	var dialect string
	cmd := &cobra.Command{
		Use:   "translate <sql-condition>",
		Short: "Translate a SQL condition into an expression",
		Long: `Translate a SQL condition into an expression.

Examples:
  foundation script translate "status = 'A' AND amount > 10"
  foundation script translate "name LIKE 'J%'" --dialect starlark`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDialect(dialect)
			if err != nil {
				return err
			}
			out, err := script.Translate(args[0], d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "expr", "Target expression language (expr|starlark)")
	_ = cmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"expr", "starlark"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func parseDialect(name string) (script.Dialect, error) {
	switch strings.ToLower(name) {
	case "", "expr":
		return script.DialectExpr, nil
	case "starlark":
		return script.DialectStarlark, nil
	}
	return script.DialectExpr, fmt.Errorf("unknown dialect %q (expected expr or starlark)", name)
}

func newScriptVariablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "variables <sql-condition>",
		Short: "List the variables a SQL condition references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := script.Variables(args[0])
			if err != nil {
				return err
			}
			ds := dataset.NewWithNames("Variables", "NAME", "IDENTIFIER")
			for _, v := range vars {
				if err := ds.AddRecord(v, script.Identifier(v)); err != nil {
					return err
				}
			}
			return renderDataSet(cmd, ds)
		},
	}
}

func newScriptFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions <sql-condition>",
		Short: "List the function calls in a SQL condition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calls, err := script.Functions(args[0])
			if err != nil {
				return err
			}
			ds := dataset.NewWithNames("Functions", "NAME", "CALL", "ARGS", "POSITION")
			for _, c := range calls {
				if err := ds.AddRecord(c.Name, c.Text, strings.Join(c.Args, ", "), c.Pos); err != nil {
					return err
				}
			}
			return renderDataSet(cmd, ds)
		},
	}
}

func newScriptEvalCommand() *cobra.Command {
	var (
		rawVars []string
		sqlMode bool
	)
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression",
		Long: `Evaluate an expression with the configured engine. With --sql the input
is a SQL condition, translated before evaluation.

Examples:
  foundation script eval "amount * 2" --var amount=21
  foundation script eval "status = 'A' AND amount > 10" --sql --var status=A --var amount=12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(rawVars)
			if err != nil {
				return err
			}
			s, err := newScript(cmd)
			if err != nil {
				return err
			}
			out, err := evaluate(s, args[0], vars, sqlMode)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rawVars, "var", nil, "Variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&sqlMode, "sql", false, "Treat the input as a SQL condition")
	return cmd
}

func newScript(cmd *cobra.Command) (*script.Script, error) {
	ctx := cmd.Context()
	engine, err := script.NewEngine(config.GetConfig(ctx).ScriptEngine)
	if err != nil {
		return nil, err
	}
	return script.New(engine, config.GetLogger(ctx)), nil
}

// evaluate runs src, or the SQL condition src when sqlMode is set, and
// formats the result.
func evaluate(s *script.Script, src string, vars map[string]any, sqlMode bool) (string, error) {
	if sqlMode {
		ok, err := s.EvalCondition(src, vars)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(ok), nil
	}
	v, err := s.Eval(src, vars)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "null", nil
	}
	return strutil.ToString(v), nil
}

// parseVars parses name=value pairs.
func parseVars(raw []string) (map[string]any, error) {
	vars := make(map[string]any, len(raw))
	for _, r := range raw {
		name, value, err := parseVar(r)
		if err != nil {
			return nil, err
		}
		vars[name] = value
	}
	return vars, nil
}

func parseVar(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid variable %q (expected name=value)", s)
	}
	return name, parseValue(strings.TrimSpace(raw)), nil
}

// parseValue types a literal: quoted text stays a string, then int,
// float, bool and null are tried before falling back to the raw text.
func parseValue(raw string) any {
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return strutil.Unquote(raw)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	case "null", "nil", "none":
		return nil
	}
	return raw
}

func newScriptREPLCommand() *cobra.Command {
	var sqlMode bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newScript(cmd)
			if err != nil {
				return err
			}
			session := newREPLSession(s, config.GetConfig(cmd.Context()).HistorySize, cmd.OutOrStdout(), cmd.ErrOrStderr())
			session.sqlMode = sqlMode
			return runScriptREPL(session)
		},
	}
	cmd.Flags().BoolVar(&sqlMode, "sql", false, "Start in SQL condition mode")
	return cmd
}

const replPrompt = "foundation> "

func runScriptREPL(session *replSession) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(session.out, "foundation script REPL (engine: %s)\n", session.script.Engine().Name())
	_, _ = fmt.Fprintln(session.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(session.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := session.handle(line); quit {
			return nil
		}
	}
}

func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".vars"),
		readline.PcItem(".set"),
		readline.PcItem(".unset"),
		readline.PcItem(".sql", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(".translate"),
		readline.PcItem(".history"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// replSession holds the state of one REPL: variables, mode and the
// expressions entered so far.
type replSession struct {
	script  *script.Script
	vars    map[string]any
	sqlMode bool
	history *history.History[string]
	out     io.Writer
	errOut  io.Writer
}

func newREPLSession(s *script.Script, historySize int, out, errOut io.Writer) *replSession {
	if historySize <= 0 {
		historySize = config.DefaultHistorySize
	}
	return &replSession{
		script:  s,
		vars:    make(map[string]any),
		history: history.New[string](historySize),
		out:     out,
		errOut:  errOut,
	}
}

// handle processes one input line and reports whether the REPL should exit.
func (r *replSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return r.dotCommand(line)
	}

	r.history.Add(line)
	out, err := evaluate(r.script, line, r.vars, r.sqlMode)
	if err != nil {
		_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return false
	}
	_, _ = fmt.Fprintln(r.out, out)
	return false
}

func (r *replSession) dotCommand(line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printScriptREPLHelp(r.out)

	case ".set":
		name, value, err := parseVar(rest)
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			return false
		}
		r.vars[name] = value

	case ".unset":
		delete(r.vars, rest)

	case ".vars":
		names := make([]string, 0, len(r.vars))
		for name := range r.vars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := r.vars[name]
			_, _ = fmt.Fprintf(r.out, "%s = %v (%s)\n", name, v, dataset.TypeOf(v))
		}

	case ".sql":
		switch strings.ToLower(rest) {
		case "on":
			r.sqlMode = true
		case "off":
			r.sqlMode = false
		case "":
		default:
			_, _ = fmt.Fprintln(r.errOut, "Usage: .sql on|off")
			return false
		}
		_, _ = fmt.Fprintf(r.out, "sql mode %s\n", onOff(r.sqlMode))

	case ".translate":
		if rest == "" {
			_, _ = fmt.Fprintln(r.errOut, "Usage: .translate <sql-condition>")
			return false
		}
		out, err := script.Translate(rest, r.script.Engine().Dialect())
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintln(r.out, out)

	case ".history":
		for i, item := range r.history.Items() {
			_, _ = fmt.Fprintf(r.out, "%3d  %s\n", i+1, item)
		}

	default:
		_, _ = fmt.Fprintf(r.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printScriptREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                Show this help message
  .set name=value      Set a variable
  .unset name          Remove a variable
  .vars                List variables
  .sql on|off          Treat input as SQL conditions
  .translate <cond>    Show the translation of a SQL condition
  .history             List evaluated expressions
  .quit / .exit        Exit the REPL
`
	_, _ = fmt.Fprintln(w, help)
}
