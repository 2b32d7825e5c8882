// Package sqlite provides the SQLite driver backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/toolsverse/foundation/pkg/driver"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Name is the registry name of the driver.
const Name = "sqlite"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Driver { return New(logger) })
}

// Params holds SQLite-specific settings.
type Params struct {
	// Pragmas applied after connecting, e.g. foreign_keys: "on".
	Pragmas map[string]string `mapstructure:"pragmas"`
}

// Driver opens SQLite databases.
type Driver struct {
	logger *slog.Logger
}

// New creates a SQLite driver.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

func (d *Driver) Name() string { return Name }

func (d *Driver) Dialect() *driver.Dialect { return Dialect }

// Open opens the database at cfg.Path, ":memory:" when empty.
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

	db, err := driver.OpenDB(ctx, "sqlite", path, d.logger)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	keys := make([]string, 0, len(p.Pragmas))
	for k := range p.Pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stmt := fmt.Sprintf("PRAGMA %s = %s", k, p.Pragmas[k])
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return db, nil
}

// Dialect is the SQLite dialect. SQLite has no information_schema, so
// every supported metadata type has its own query.
var Dialect = &driver.Dialect{
	Name:          Name,
	DefaultSchema: "main",
	Placeholder:   sqlutil.PlaceholderQuestion,
	Quote:         `"`,
	TypeAliases: map[string]string{
		"INT":     "INTEGER",
		"BOOL":    "BOOLEAN",
		"STRING":  "TEXT",
		"VARCHAR": "TEXT",
	},
	Unsupported: []string{
		"Catalogs", "Types", "Sequences", "Procedures", "Procedure Columns", "Functions",
	},
	Queries: map[string]driver.QueryFunc{},
}

// objectsOfType lists sqlite_master entries of one kind. Only the main
// schema is inspected.
func objectsOfType(kind string) driver.QueryFunc {
	return func(s driver.Scope) (string, []any) {
		tableType := "TABLE"
		if kind == "view" {
			tableType = "VIEW"
		}
		return Dialect.NewQuery(fmt.Sprintf(`
			SELECT NULL AS table_catalog, 'main' AS table_schema, name AS table_name, '%s' AS table_type
			FROM sqlite_master`, tableType)).
			Raw(fmt.Sprintf("type = '%s'", kind)).
			Raw(`name NOT LIKE 'sqlite\_%' ESCAPE '\'`).
			Eq("name", s.Object).
			OrderBy("name").
			Build()
	}
}

func init() {
	Dialect.Queries["Schemas"] = func(_ driver.Scope) (string, []any) {
		return "SELECT NULL AS table_catalog, name AS table_schema FROM pragma_database_list ORDER BY seq", nil
	}
	Dialect.Queries["Tables"] = objectsOfType("table")
	Dialect.Queries["Views"] = objectsOfType("view")
	Dialect.Queries["Columns"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT 'main' AS table_schema, m.name AS table_name, p.name AS column_name,
				p.type AS type_name, NULL AS column_size, NULL AS decimal_digits,
				CASE WHEN p."notnull" = 1 OR p.pk > 0 THEN 'NO' ELSE 'YES' END AS nullable,
				p.dflt_value AS column_default, p.cid + 1 AS ordinal_position
			FROM sqlite_master m
			JOIN pragma_table_info(m.name) p`).
			Raw("m.type IN ('table', 'view')").
			Raw(`m.name NOT LIKE 'sqlite\_%' ESCAPE '\'`).
			Eq("m.name", s.Object).
			OrderBy("m.name, p.cid").
			Build()
	}
	Dialect.Queries["Primary Key"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT 'main' AS table_schema, m.name AS table_name, p.name AS column_name,
				p.pk AS key_seq, NULL AS pk_name
			FROM sqlite_master m
			JOIN pragma_table_info(m.name) p`).
			Raw("m.type = 'table'").
			Raw("p.pk > 0").
			Eq("m.name", s.Object).
			OrderBy("m.name, p.pk").
			Build()
	}
	foreignKeys := func(exported bool) driver.QueryFunc {
		return func(s driver.Scope) (string, []any) {
			q := Dialect.NewQuery(`
				SELECT NULL AS fk_name,
					'main' AS fktable_schema, m.name AS fktable_name, f."from" AS fkcolumn_name,
					'main' AS pktable_schema, f."table" AS pktable_name, f."to" AS pkcolumn_name,
					f.seq + 1 AS key_seq
				FROM sqlite_master m
				JOIN pragma_foreign_key_list(m.name) f`).
				Raw("m.type = 'table'")
			if exported {
				q.Eq(`f."table"`, s.Object)
			} else {
				q.Eq("m.name", s.Object)
			}
			return q.OrderBy("m.name, f.id, f.seq").Build()
		}
	}
	Dialect.Queries["Foreign Keys"] = foreignKeys(false)
	Dialect.Queries["Exported Keys"] = foreignKeys(true)
	Dialect.Queries["Indexes"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT 'main' AS table_schema, m.name AS table_name, il.name AS index_name,
				CASE WHEN il."unique" = 1 THEN 0 ELSE 1 END AS non_unique,
				ii.name AS column_name, ii.seqno + 1 AS ordinal_position
			FROM sqlite_master m
			JOIN pragma_index_list(m.name) il
			JOIN pragma_index_info(il.name) ii`).
			Raw("m.type = 'table'").
			Eq("m.name", s.Object).
			OrderBy("m.name, il.name, ii.seqno").
			Build()
	}
	Dialect.Queries["Triggers"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT 'main' AS trigger_schema, name AS trigger_name, tbl_name AS table_name,
				NULL AS event, NULL AS timing
			FROM sqlite_master`).
			Raw("type = 'trigger'").
			Eq("tbl_name", s.Object).
			OrderBy("name").
			Build()
	}
}
