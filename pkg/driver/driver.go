// Package driver provides the database driver abstraction used by the
// metadata layer: connection configuration, SQL dialect settings and a
// registry of named drivers.
//
// Concrete drivers live in subpackages and register themselves in init():
//
//	import _ "github.com/toolsverse/foundation/pkg/driver/postgres"
package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"
)

// ErrNotConnected is returned when an operation needs an open connection.
var ErrNotConnected = errors.New("database connection not established")

// Config holds the settings for opening a database connection.
type Config struct {
	Type     string            `koanf:"type" mapstructure:"type"`
	DSN      string            `koanf:"dsn" mapstructure:"dsn"`
	Path     string            `koanf:"path" mapstructure:"path"`
	Host     string            `koanf:"host" mapstructure:"host"`
	Port     int               `koanf:"port" mapstructure:"port"`
	Database string            `koanf:"database" mapstructure:"database"`
	User     string            `koanf:"user" mapstructure:"user"`
	Password string            `koanf:"password" mapstructure:"password"`
	Schema   string            `koanf:"schema" mapstructure:"schema"`
	Options  map[string]string `koanf:"options" mapstructure:"options"`
	// Params holds driver-specific settings decoded with DecodeParams.
	Params map[string]any `koanf:"params" mapstructure:"params"`
}

// Option returns the named option or def when it is unset.
func (c Config) Option(name, def string) string {
	if v, ok := c.Options[name]; ok && v != "" {
		return v
	}
	return def
}

// Driver opens connections to one kind of database.
type Driver interface {
	// Name is the registry name, e.g. "postgres".
	Name() string

	// Open connects using cfg and verifies the connection.
	Open(ctx context.Context, cfg Config) (*sql.DB, error)

	// Dialect describes the SQL and catalog conventions of the database.
	Dialect() *Dialect
}

// DecodeParams decodes cfg.Params into out, a pointer to a struct with
// mapstructure tags. Scalar values are converted where needed.
func DecodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid driver params: %w", err)
	}
	return nil
}

// OpenDB opens a database/sql handle and pings it, closing the handle
// again when the ping fails.
func OpenDB(ctx context.Context, driverName, dsn string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("opening database", slog.String("driver", driverName))

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driverName, err)
	}
	return db, nil
}
