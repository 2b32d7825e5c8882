package commands

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsverse/foundation/internal/cli/config"
	"github.com/toolsverse/foundation/internal/testutil"
	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/driver"
	_ "github.com/toolsverse/foundation/pkg/driver/all"
	"github.com/toolsverse/foundation/pkg/metadata"
	"github.com/toolsverse/foundation/pkg/script"
)

// testConfig returns defaults with CSV output, which is stable to assert on.
func testConfig() *config.Config {
	cfg := config.GetConfig(context.Background())
	cfg.OutputFormat = string(dataset.FormatCSV)
	return cfg
}

func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func sqliteDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range []string{
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER REFERENCES customers(id), amount REAL)`,
		`CREATE VIEW big_orders AS SELECT * FROM orders WHERE amount > 100`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		output string
		want   dataset.Format
	}{
		{"", dataset.FormatMarkdown},
		{"auto", dataset.FormatMarkdown},
		{"json", dataset.FormatJSON},
		{"table", dataset.FormatTable},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			got, err := resolveFormat(new(bytes.Buffer), tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolveFormat(new(bytes.Buffer), "pdf")
	assert.Error(t, err)
}

func TestRenderDataSet_XLSX(t *testing.T) {
	cfg := testConfig()
	cfg.OutputFormat = string(dataset.FormatXLSX)

	_, _, err := execute(t, NewDriversCommand(), cfg)
	assert.ErrorContains(t, err, "--out-file")

	cfg.OutFile = filepath.Join(t.TempDir(), "drivers.xlsx")
	out, _, err := execute(t, NewDriversCommand(), cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "drivers.xlsx")

	ds, err := dataset.ReadXLSX(cfg.OutFile, "", 0)
	require.NoError(t, err)
	assert.Equal(t, len(driver.List()), ds.Len())
}

func TestDriversCommand(t *testing.T) {
	cfg := testConfig()
	cfg.Connection.Type = "sqlite"

	out, _, err := execute(t, NewDriversCommand(), cfg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "NAME,DEFAULT_SCHEMA,QUOTING,UNSUPPORTED,CONFIGURED", lines[0])
	for _, name := range []string{"duckdb", "mssql", "mysql", "postgres", "sqlite"} {
		assert.Contains(t, out, "\n"+name+",")
	}
	assert.Contains(t, out, "mysql,,`a b`,Sequences,false")
	assert.Contains(t, out, "sqlite,main,")
}

func TestMetadataTypesCommand(t *testing.T) {
	out, _, err := execute(t, NewMetadataCommand(), testConfig(), "types")
	require.NoError(t, err)
	assert.Equal(t, len(metadata.AllTypes)+1, strings.Count(out, "\n"))
	assert.Contains(t, out, "Primary Key,Tables,")

	out, _, err = execute(t, NewMetadataCommand(), testConfig(), "types", "--parent", "procedures")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "Procedure Columns,Procedures,COLUMN_NAME")

	_, _, err = execute(t, NewMetadataCommand(), testConfig(), "types", "--parent", "rows")
	var ute *metadata.UnsupportedTypeError
	assert.ErrorAs(t, err, &ute)
}

func TestMetadataGetCommand(t *testing.T) {
	cfg := testConfig()
	cfg.Connection = driver.Config{Type: "sqlite", Path: sqliteDB(t)}

	out, _, err := execute(t, NewMetadataCommand(), cfg, "get", "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "orders")
	assert.NotContains(t, out, "big_orders")

	out, _, err = execute(t, NewMetadataCommand(), cfg, "get", "tables", "--pattern", "cust%")
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
	assert.NotContains(t, out, "orders")

	out, _, err = execute(t, NewMetadataCommand(), cfg, "get", "views")
	require.NoError(t, err)
	assert.Contains(t, out, "big_orders")

	out, _, err = execute(t, NewMetadataCommand(), cfg, "get", "foreign_keys", "--object", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "customer_id")
}

func TestMetadataGetCommand_Errors(t *testing.T) {
	_, _, err := execute(t, NewMetadataCommand(), testConfig(), "get", "tables")
	assert.ErrorContains(t, err, "connection type is required")

	cfg := testConfig()
	cfg.Connection = driver.Config{Type: "sqlite", Path: sqliteDB(t)}
	_, _, err = execute(t, NewMetadataCommand(), cfg, "get", "sequences")
	var ute *metadata.UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "sqlite", ute.Source)

	_, _, err = execute(t, NewMetadataCommand(), cfg, "get")
	assert.Error(t, err)
}

func TestMetadataFilesCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "orders.csv"), "id,amount\n1,10.5\n2,7\n")
	testutil.WriteFile(t, filepath.Join(dir, "sub", "items.tsv"), "sku\tqty\nA\t3\n")

	out, _, err := execute(t, NewMetadataCommand(), testConfig(), "files", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "orders.csv")
	assert.NotContains(t, out, "items.tsv")

	out, _, err = execute(t, NewMetadataCommand(), testConfig(), "files", dir, "--recursive")
	require.NoError(t, err)
	assert.Contains(t, out, "items.tsv")

	out, _, err = execute(t, NewMetadataCommand(), testConfig(), "files", dir, "columns", "--object", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "amount")
	assert.Contains(t, out, "FLOAT")
}

func TestMetadataTreeCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "orders.csv"), "id,amount\n1,10.5\n")

	out, _, err := execute(t, NewMetadataCommand(), testConfig(), "tree", "tables", "--dir", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Tables (1): orders.csv", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  Columns"))
	assert.True(t, strings.HasSuffix(lines[1], "(2): id, amount"))
}

func TestScriptTranslateCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"expr", []string{"translate", "a IS NULL"}, "a == nil"},
		{"starlark", []string{"translate", "a IS NULL", "--dialect", "starlark"}, "a == None"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewScriptCommand(), testConfig(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	_, _, err := execute(t, NewScriptCommand(), testConfig(), "translate", "a =", "--dialect", "lua")
	assert.ErrorContains(t, err, "unknown dialect")

	_, _, err = execute(t, NewScriptCommand(), testConfig(), "translate", "a = 'open")
	var te *script.TranslateError
	assert.ErrorAs(t, err, &te)
}

func TestScriptVariablesAndFunctions(t *testing.T) {
	out, _, err := execute(t, NewScriptCommand(), testConfig(), "variables", `a = 1 AND "first name" = 'x'`)
	require.NoError(t, err)
	assert.Equal(t, "NAME,IDENTIFIER\na,a\nfirst name,first_name\n", out)

	out, _, err = execute(t, NewScriptCommand(), testConfig(), "functions", "UPPER(name) = 'A'")
	require.NoError(t, err)
	assert.Contains(t, out, "UPPER,UPPER(name),name,0")
}

func TestScriptEvalCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"arithmetic", []string{"eval", "amount * 2", "--var", "amount=21"}, "42"},
		{"string", []string{"eval", "upper(name)", "--var", "name='ann'"}, "ANN"},
		{"sql condition", []string{"eval", "status = 'A' AND amount > 10", "--sql", "--var", "status=A", "--var", "amount=12"}, "true"},
		{"sql condition false", []string{"eval", "amount BETWEEN 1 AND 10", "--sql", "--var", "amount=12"}, "false"},
		{"null", []string{"eval", "nil"}, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewScriptCommand(), testConfig(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	t.Run("starlark engine", func(t *testing.T) {
		cfg := testConfig()
		cfg.ScriptEngine = script.StarlarkEngineName
		out, _, err := execute(t, NewScriptCommand(), cfg, "eval", "a IN (1, 2)", "--sql", "--var", "a=2")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)
	})

	_, _, err := execute(t, NewScriptCommand(), testConfig(), "eval", "a", "--var", "=1")
	assert.ErrorContains(t, err, "invalid variable")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"12", int64(12)},
		{"-3", int64(-3)},
		{"1.5", 1.5},
		{"true", true},
		{"FALSE", false},
		{"null", nil},
		{"'12'", "12"},
		{`"it''s"`, "it''s"},
		{"A", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.raw))
		})
	}
}

func TestREPLSession(t *testing.T) {
	engine, err := script.NewEngine(script.ExprEngineName)
	require.NoError(t, err)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	r := newREPLSession(script.New(engine, nil), 2, out, errOut)

	assert.False(t, r.handle(".set x = 4"))
	assert.False(t, r.handle("x + 1"))
	assert.Equal(t, "5\n", out.String())

	out.Reset()
	assert.False(t, r.handle(".sql on"))
	assert.False(t, r.handle("x BETWEEN 1 AND 5"))
	assert.Equal(t, "sql mode on\ntrue\n", out.String())

	out.Reset()
	assert.False(t, r.handle(".vars"))
	assert.Equal(t, "x = 4 (INTEGER)\n", out.String())

	out.Reset()
	assert.False(t, r.handle(".translate x <> 'a'"))
	assert.Equal(t, "x != \"a\"\n", out.String())

	out.Reset()
	assert.False(t, r.handle("x > 10"))
	assert.False(t, r.handle(".history"))
	assert.Equal(t, "false\n  1  x BETWEEN 1 AND 5\n  2  x > 10\n", out.String())

	assert.False(t, r.handle("x = "))
	assert.Contains(t, errOut.String(), "Error:")

	errOut.Reset()
	assert.False(t, r.handle(".bogus"))
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")

	assert.False(t, r.handle(".unset x"))
	assert.Empty(t, r.vars)
	assert.False(t, r.handle("   "))
	assert.True(t, r.handle(".quit"))
}
