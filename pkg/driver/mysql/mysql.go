// Package mysql provides the MySQL / MariaDB driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/toolsverse/foundation/pkg/driver"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Name is the registry name of the driver.
const Name = "mysql"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Driver { return New(logger) })
}

// Params holds MySQL-specific settings from driver.Config.Params.
type Params struct {
	// Connection attributes passed through to the server, e.g. charset.
	Attributes map[string]string `mapstructure:"attributes"`
	TLS        string            `mapstructure:"tls"`
	Timeout    time.Duration     `mapstructure:"timeout"`
}

// Driver connects to MySQL through go-sql-driver/mysql.
type Driver struct {
	logger *slog.Logger
}

// New creates a MySQL driver.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

func (d *Driver) Name() string { return Name }

func (d *Driver) Dialect() *driver.Dialect { return Dialect }

// Open connects to MySQL. cfg.DSN wins over the individual fields.
func (d *Driver) Open(ctx context.Context, cfg driver.Config) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		if dsn, err = buildDSN(cfg); err != nil {
			return nil, err
		}
	}
	d.logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))
	return driver.OpenDB(ctx, "mysql", dsn, d.logger)
}

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
		port = 3306
	}

	c := gomysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	c.DBName = cfg.Database
	c.ParseTime = true
	c.TLSConfig = p.TLS
	if p.Timeout > 0 {
		c.Timeout = p.Timeout
	}
	if len(p.Attributes) > 0 {
		c.Params = p.Attributes
	}
	dsn := c.FormatDSN()
	if dsn == "" {
		return "", fmt.Errorf("failed to build mysql dsn")
	}
	return dsn, nil
}

// Dialect is the MySQL dialect. Schemas and databases are the same thing
// in MySQL, so the default schema is the connected database.
var Dialect = &driver.Dialect{
	Name:        Name,
	Placeholder: sqlutil.PlaceholderQuestion,
	Quote:       "`",
	TypeAliases: map[string]string{
		"INT":     "INTEGER",
		"TINYINT": "SMALLINT",
		"BOOL":    "BOOLEAN",
	},
	Unsupported: []string{"Sequences"},
	Queries:     map[string]driver.QueryFunc{},
}

func init() {
	Dialect.Queries["Catalogs"] = func(_ driver.Scope) (string, []any) {
		return "SELECT schema_name AS table_catalog FROM information_schema.schemata ORDER BY schema_name", nil
	}
	Dialect.Queries["Schemas"] = func(_ driver.Scope) (string, []any) {
		return "SELECT schema_name AS table_catalog, schema_name AS table_schema FROM information_schema.schemata ORDER BY schema_name", nil
	}
	foreignKeys := func(exported bool) driver.QueryFunc {
		return func(s driver.Scope) (string, []any) {
			q := Dialect.NewQuery(`
				SELECT constraint_name AS fk_name,
					table_schema AS fktable_schema, table_name AS fktable_name, column_name AS fkcolumn_name,
					referenced_table_schema AS pktable_schema, referenced_table_name AS pktable_name,
					referenced_column_name AS pkcolumn_name, ordinal_position AS key_seq
				FROM information_schema.key_column_usage`).
				Raw("referenced_table_name IS NOT NULL")
			if exported {
				q.Eq("referenced_table_schema", s.Schema).Eq("referenced_table_name", s.Object)
			} else {
				q.Eq("table_schema", s.Schema).Eq("table_name", s.Object)
			}
			return q.OrderBy("table_schema, table_name, constraint_name, ordinal_position").Build()
		}
	}
	Dialect.Queries["Foreign Keys"] = foreignKeys(false)
	Dialect.Queries["Exported Keys"] = foreignKeys(true)
	Dialect.Queries["Indexes"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT table_schema, table_name, index_name, non_unique, column_name, seq_in_index AS ordinal_position
			FROM information_schema.statistics`).
			Eq("table_schema", s.Schema).
			Eq("table_name", s.Object).
			OrderBy("table_schema, table_name, index_name, seq_in_index").
			Build()
	}
}
