// Package mssql provides the Microsoft SQL Server driver.
package mssql

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/toolsverse/foundation/pkg/driver"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Name is the registry name of the driver.
const Name = "mssql"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Driver { return New(logger) })
}

// Params holds SQL Server specific settings.
type Params struct {
	Instance string `mapstructure:"instance"`
	Encrypt  string `mapstructure:"encrypt"`
	AppName  string `mapstructure:"app_name"`
}

// Driver connects to SQL Server through go-mssqldb.
type Driver struct {
	logger *slog.Logger
}

// New creates a SQL Server driver.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

func (d *Driver) Name() string { return Name }

func (d *Driver) Dialect() *driver.Dialect { return Dialect }

// Open connects to SQL Server. cfg.DSN wins over the individual fields.
func (d *Driver) Open(ctx context.Context, cfg driver.Config) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		if dsn, err = buildDSN(cfg); err != nil {
			return nil, err
		}
	}
	d.logger.Debug("connecting to sql server", slog.String("host", cfg.Host), slog.String("database", cfg.Database))
	return driver.OpenDB(ctx, "sqlserver", dsn, d.logger)
}

// buildDSN constructs a sqlserver:// URL.
func buildDSN(cfg driver.Config) (string, error) {
	var p Params
	if err := driver.DecodeParams(cfg.Params, &p); err != nil {
		return "", err
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	u := &url.URL{Scheme: "sqlserver", Host: host}
	if p.Instance != "" {
		u.Path = "/" + p.Instance
	} else {
		port := cfg.Port
		if port == 0 {
			port = 1433
		}
		u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	if p.Encrypt != "" {
		q.Set("encrypt", p.Encrypt)
	}
	if p.AppName != "" {
		q.Set("app name", p.AppName)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dialect is the SQL Server dialect.
var Dialect = &driver.Dialect{
	Name:          Name,
	DefaultSchema: "dbo",
	Placeholder:   sqlutil.PlaceholderAtP,
	Quote:         "[",
	TypeAliases: map[string]string{
		"INT":      "INTEGER",
		"BIT":      "BOOLEAN",
		"DATETIME": "TIMESTAMP",
		"FLOAT":    "DOUBLE PRECISION",
	},
	Queries: map[string]driver.QueryFunc{},
}

func init() {
	Dialect.Queries["Catalogs"] = func(_ driver.Scope) (string, []any) {
		return "SELECT name AS table_catalog FROM sys.databases ORDER BY name", nil
	}
	Dialect.Queries["Indexes"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT sc.name AS table_schema, t.name AS table_name, i.name AS index_name,
				CASE WHEN i.is_unique = 1 THEN 0 ELSE 1 END AS non_unique,
				c.name AS column_name, ic.key_ordinal AS ordinal_position
			FROM sys.indexes i
			JOIN sys.tables t ON t.object_id = i.object_id
			JOIN sys.schemas sc ON sc.schema_id = t.schema_id
			JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
			JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id`).
			Raw("i.name IS NOT NULL").
			Eq("sc.name", s.Schema).
			Eq("t.name", s.Object).
			OrderBy("sc.name, t.name, i.name, ic.key_ordinal").
			Build()
	}
	Dialect.Queries["Sequences"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT sc.name AS sequence_schema, sq.name AS sequence_name, TYPE_NAME(sq.user_type_id) AS data_type,
				sq.start_value, sq.increment
			FROM sys.sequences sq
			JOIN sys.schemas sc ON sc.schema_id = sq.schema_id`).
			Eq("sc.name", s.Schema).
			OrderBy("sc.name, sq.name").
			Build()
	}
	Dialect.Queries["Triggers"] = func(s driver.Scope) (string, []any) {
		return Dialect.NewQuery(`
			SELECT sc.name AS trigger_schema, tr.name AS trigger_name, t.name AS table_name,
				te.type_desc AS event,
				CASE WHEN tr.is_instead_of_trigger = 1 THEN 'INSTEAD OF' ELSE 'AFTER' END AS timing
			FROM sys.triggers tr
			JOIN sys.tables t ON t.object_id = tr.parent_id
			JOIN sys.schemas sc ON sc.schema_id = t.schema_id
			JOIN sys.trigger_events te ON te.object_id = tr.object_id`).
			Eq("sc.name", s.Schema).
			Eq("t.name", s.Object).
			OrderBy("sc.name, tr.name").
			Build()
	}
}
