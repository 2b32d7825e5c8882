package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/driver"
)

// Metadata owns a database connection and the extractor reading its
// catalog.
type Metadata struct {
	*GenericExtractor

	db     *sql.DB
	drv    driver.Driver
	logger *slog.Logger
}

// Open connects with cfg through the driver registry. The request
// default schema is cfg.Schema, then the dialect default, then
// cfg.Database for databases without schemas.
func Open(ctx context.Context, cfg driver.Config, logger *slog.Logger, opts ...ExtractorOption) (*Metadata, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, drv, err := driver.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	schema := cfg.Schema
	if schema == "" {
		schema = drv.Dialect().DefaultSchema
	}
	if schema == "" {
		schema = cfg.Database
	}

	all := append([]ExtractorOption{WithDefaultSchema(schema), WithLogger(logger)}, opts...)
	logger.Debug("metadata connection opened",
		slog.String("driver", drv.Name()),
		slog.String("schema", schema))
	return &Metadata{
		GenericExtractor: NewGenericExtractor(db, drv.Dialect(), all...),
		db:               db,
		drv:              drv,
		logger:           logger,
	}, nil
}

// DB returns the underlying connection pool.
func (m *Metadata) DB() *sql.DB {
	return m.db
}

// Driver returns the driver the connection was opened with.
func (m *Metadata) Driver() driver.Driver {
	return m.drv
}

// Close releases the connection.
func (m *Metadata) Close() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	m.GenericExtractor.db = nil
	m.ClearCache()
	if err != nil {
		return fmt.Errorf("failed to close %s connection: %w", m.drv.Name(), err)
	}
	return nil
}

// Tables lists the tables of schema whose names match pattern.
func (m *Metadata) Tables(ctx context.Context, schema, pattern string) (*dataset.DataSet, error) {
	return m.Extract(ctx, Request{Type: Tables, Schema: schema, Pattern: pattern})
}

// Columns lists the columns of a table.
func (m *Metadata) Columns(ctx context.Context, schema, table string) (*dataset.DataSet, error) {
	return m.Extract(ctx, Request{Type: Columns, Schema: schema, Object: table})
}

// PrimaryKey lists the primary key columns of a table in key order.
func (m *Metadata) PrimaryKey(ctx context.Context, schema, table string) ([]string, error) {
	ds, err := m.Extract(ctx, Request{Type: PrimaryKey, Schema: schema, Object: table})
	if err != nil {
		return nil, err
	}
	if err := ds.Sort("KEY_SEQ", false); err != nil {
		return nil, err
	}
	cols := make([]string, ds.Len())
	for i := range cols {
		cols[i] = ds.StringValue(i, "COLUMN_NAME")
	}
	return cols, nil
}
