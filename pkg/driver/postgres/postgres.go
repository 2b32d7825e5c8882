// Package postgres provides the PostgreSQL driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/toolsverse/foundation/pkg/driver"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Name is the registry name of the driver.
const Name = "postgres"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Driver { return New(logger) })
}

// Params holds PostgreSQL-specific settings from driver.Config.Params.
type Params struct {
	SearchPath      []string `mapstructure:"search_path"`
	ApplicationName string   `mapstructure:"application_name"`
	ConnectTimeout  int      `mapstructure:"connect_timeout"`
}

// Driver connects to PostgreSQL through pgx.
type Driver struct {
	logger *slog.Logger
}

// New creates a PostgreSQL driver.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

func (d *Driver) Name() string { return Name }

func (d *Driver) Dialect() *driver.Dialect { return Dialect }

// Open connects to PostgreSQL. cfg.DSN wins over the individual fields.
func (d *Driver) Open(ctx context.Context, cfg driver.Config) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		if dsn, err = buildDSN(cfg); err != nil {
			return nil, err
		}
	}
	d.logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))
	return driver.OpenDB(ctx, "pgx", dsn, d.logger)
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg driver.Config) (string, error) {
	var p Params
	if err := driver.DecodeParams(cfg.Params, &p); err != nil {
		return "", err
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	parts := []string{
		"host=" + quoteValue(host),
		fmt.Sprintf("port=%d", port),
		"sslmode=" + quoteValue(cfg.Option("sslmode", "disable")),
	}
	if cfg.Database != "" {
		parts = append(parts, "dbname="+quoteValue(cfg.Database))
	}
	if cfg.User != "" {
		parts = append(parts, "user="+quoteValue(cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteValue(cfg.Password))
	}
	if p.ApplicationName != "" {
		parts = append(parts, "application_name="+quoteValue(p.ApplicationName))
	}
	if p.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", p.ConnectTimeout))
	}
	if len(p.SearchPath) > 0 {
		parts = append(parts, "search_path="+quoteValue(strings.Join(p.SearchPath, ",")))
	}
	return strings.Join(parts, " "), nil
}

// quoteValue quotes a libpq keyword value when it contains spaces or quotes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Dialect is the PostgreSQL dialect.
var Dialect = &driver.Dialect{
	Name:          Name,
	DefaultSchema: "public",
	Placeholder:   sqlutil.PlaceholderDollar,
	Quote:         `"`,
	TypeAliases: map[string]string{
		"INT2":                        "SMALLINT",
		"INT4":                        "INTEGER",
		"INT8":                        "BIGINT",
		"FLOAT4":                      "REAL",
		"FLOAT8":                      "DOUBLE PRECISION",
		"BOOL":                        "BOOLEAN",
		"CHARACTER VARYING":           "VARCHAR",
		"TIMESTAMPTZ":                 "TIMESTAMP WITH TIME ZONE",
		"TIMESTAMP WITHOUT TIME ZONE": "TIMESTAMP",
	},
	Queries: map[string]driver.QueryFunc{},
}

func init() {
	Dialect.Queries["Catalogs"] = func(_ driver.Scope) (string, []any) {
		return "SELECT datname AS table_catalog FROM pg_database WHERE NOT datistemplate ORDER BY datname", nil
	}
	Dialect.Queries["Indexes"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT n.nspname AS table_schema, t.relname AS table_name, i.relname AS index_name,
				NOT ix.indisunique AS non_unique, a.attname AS column_name, k.ord AS ordinal_position
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_class i ON i.oid = ix.indexrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum`).
			Eq("n.nspname", s.Schema).
			Eq("t.relname", s.Object).
			OrderBy("n.nspname, t.relname, i.relname, k.ord").
			Build()
	}
	Dialect.Queries["Types"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT n.nspname AS type_schema, t.typname AS type_name
			FROM pg_type t
			JOIN pg_namespace n ON n.oid = t.typnamespace`).
			Raw("t.typtype IN ('b', 'd', 'e', 'r')").
			Raw("t.typname NOT LIKE '\\_%'").
			Eq("n.nspname", s.Schema).
			OrderBy("n.nspname, t.typname").
			Build()
	}
}
