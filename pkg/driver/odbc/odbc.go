//go:build odbc

// Package odbc provides a driver for any database reachable through an
// ODBC driver manager. It needs cgo and unixODBC, so it is only built
// with the odbc build tag.
package odbc

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	_ "github.com/alexbrainman/odbc" // registers the "odbc" database/sql driver

	"github.com/toolsverse/foundation/pkg/driver"
)

// Name is the registry name of the driver.
const Name = "odbc"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Driver { return New(logger) })
}

// Params holds ODBC-specific settings.
type Params struct {
	// Driver is the ODBC driver name, e.g. "PostgreSQL Unicode".
	Driver string `mapstructure:"driver"`
	// DSN names a data source configured in odbc.ini.
	DSN string `mapstructure:"dsn"`
	// Attributes are appended to the connection string as key=value pairs.
	Attributes map[string]string `mapstructure:"attributes"`
}

// Driver connects through the ODBC driver manager.
type Driver struct {
	logger *slog.Logger
}

// New creates an ODBC driver.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

func (d *Driver) Name() string { return Name }

// Dialect returns the generic dialect; ODBC sources differ too much to
// assume anything beyond information_schema.
func (d *Driver) Dialect() *driver.Dialect { return driver.Generic }

// Open connects using cfg.DSN as a full connection string, or one built
// from the individual fields.
func (d *Driver) Open(ctx context.Context, cfg driver.Config) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		if dsn, err = buildConnString(cfg); err != nil {
			return nil, err
		}
	}
	return driver.OpenDB(ctx, "odbc", dsn, d.logger)
}

// buildConnString builds a "Key=Value;..." ODBC connection string.
func buildConnString(cfg driver.Config) (string, error) {
	var p Params
	if err := driver.DecodeParams(cfg.Params, &p); err != nil {
		return "", err
	}

	var parts []string
	add := func(k, v string) {
		if v == "" {
			return
		}
		if strings.ContainsAny(v, ";{}") {
			v = "{" + strings.ReplaceAll(v, "}", "}}") + "}"
		}
		parts = append(parts, k+"="+v)
	}

	add("DSN", p.DSN)
	if p.Driver != "" {
		parts = append(parts, "Driver={"+p.Driver+"}")
	}
	add("Server", cfg.Host)
	if cfg.Port > 0 {
		add("Port", strconv.Itoa(cfg.Port))
	}
	add("Database", cfg.Database)
	add("UID", cfg.User)
	add("PWD", cfg.Password)

	keys := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, p.Attributes[k])
	}
	return strings.Join(parts, ";"), nil
}
