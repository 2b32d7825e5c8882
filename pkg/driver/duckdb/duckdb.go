// Package duckdb provides the DuckDB driver.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/toolsverse/foundation/pkg/driver"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Name is the registry name of the driver.
const Name = "duckdb"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Driver { return New(logger) })
}

// Params holds DuckDB-specific configuration.
// Parsed from driver.Config.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "spatial", "json")
	Extensions []string `mapstructure:"extensions"`

	// Settings applied globally after connecting (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`
}

// Driver opens DuckDB databases.
type Driver struct {
	logger *slog.Logger
}

// New creates a DuckDB driver.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

func (d *Driver) Name() string { return Name }

func (d *Driver) Dialect() *driver.Dialect { return Dialect }

// Open opens the database file at cfg.Path.
// Use ":memory:" (the default) for an in-memory database.
func (d *Driver) Open(ctx context.Context, cfg driver.Config) (*sql.DB, error) {
	var p Params
	if err := driver.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}

	path := cfg.DSN
	if path == "" {
		path = cfg.Path
	}
	if path == "" {
		path = ":memory:"
	}

	db, err := driver.OpenDB(ctx, "duckdb", path, d.logger)
	if err != nil {
		return nil, err
	}

	for _, stmt := range setupStatements(p) {
		d.logger.Debug("duckdb setup", slog.String("sql", stmt))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("duckdb setup failed: %w", err)
		}
	}
	return db, nil
}

// setupStatements returns the INSTALL/LOAD and SET statements for p.
func setupStatements(p Params) []string {
	var stmts []string
	for _, ext := range p.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.ReplaceAll(p.Settings[k], "'", "''")
		stmts = append(stmts, fmt.Sprintf("SET GLOBAL %s = '%s'", k, v))
	}
	return stmts
}

// Dialect is the DuckDB dialect.
var Dialect = &driver.Dialect{
	Name:          Name,
	DefaultSchema: "main",
	Placeholder:   sqlutil.PlaceholderQuestion,
	Quote:         `"`,
	TypeAliases: map[string]string{
		"INT":      "INTEGER",
		"INT4":     "INTEGER",
		"INT8":     "BIGINT",
		"FLOAT8":   "DOUBLE",
		"BOOL":     "BOOLEAN",
		"STRING":   "VARCHAR",
		"TEXT":     "VARCHAR",
		"DATETIME": "TIMESTAMP",
	},
	Unsupported: []string{"Triggers", "Procedures", "Procedure Columns"},
	Queries:     map[string]driver.QueryFunc{},
}

func init() {
	Dialect.Queries["Catalogs"] = func(_ driver.Scope) (string, []any) {
		return "SELECT database_name AS table_catalog FROM duckdb_databases() WHERE NOT internal ORDER BY database_name", nil
	}
	Dialect.Queries["Indexes"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT schema_name AS table_schema, table_name, index_name,
				NOT is_unique AS non_unique, expressions AS column_name, 1 AS ordinal_position
			FROM duckdb_indexes()`).
			Eq("schema_name", s.Schema).
			Eq("table_name", s.Object).
			OrderBy("schema_name, table_name, index_name").
			Build()
	}
	Dialect.Queries["Sequences"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT schema_name AS sequence_schema, sequence_name, 'BIGINT' AS data_type,
				start_value, increment_by AS increment
			FROM duckdb_sequences()`).
			Eq("schema_name", s.Schema).
			OrderBy("schema_name, sequence_name").
			Build()
	}
	Dialect.Queries["Functions"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT DISTINCT schema_name AS function_schema, function_name, return_type
			FROM duckdb_functions()`).
			Raw("NOT internal").
			Eq("schema_name", s.Schema).
			OrderBy("schema_name, function_name").
			Build()
	}
	Dialect.Queries["Types"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT DISTINCT schema_name AS type_schema, type_name
			FROM duckdb_types()`).
			Eq("schema_name", s.Schema).
			OrderBy("schema_name, type_name").
			Build()
	}
}
