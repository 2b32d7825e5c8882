package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/driver"
)

// GenericExtractor reads metadata over database/sql. Each type maps to a
// query function: the dialect's override when it has one, otherwise an
// information_schema query.
type GenericExtractor struct {
	*BaseMetadata

	db            *sql.DB
	dialect       *driver.Dialect
	defaultSchema string
	cacheSize     int
	logger        *slog.Logger
	queries       map[Type]driver.QueryFunc
}

// ExtractorOption configures a GenericExtractor.
type ExtractorOption func(*GenericExtractor)

// WithDefaultSchema sets the schema used when a request names none. It
// overrides the dialect default.
func WithDefaultSchema(schema string) ExtractorOption {
	return func(e *GenericExtractor) {
		e.defaultSchema = schema
	}
}

// WithCacheSize sets how many results are cached; zero disables caching.
func WithCacheSize(n int) ExtractorOption {
	return func(e *GenericExtractor) {
		e.cacheSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *GenericExtractor) {
		e.logger = logger
	}
}

// NewGenericExtractor creates an extractor for db. A nil dialect means
// driver.Generic.
func NewGenericExtractor(db *sql.DB, dialect *driver.Dialect, opts ...ExtractorOption) *GenericExtractor {
	if dialect == nil {
		dialect = driver.Generic
	}
	e := &GenericExtractor{
		db:            db,
		dialect:       dialect,
		defaultSchema: dialect.DefaultSchema,
		cacheSize:     DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.BaseMetadata = NewBaseMetadata(e.cacheSize, e.logger)
	e.logger = e.BaseMetadata.Logger()

	e.queries = make(map[Type]driver.QueryFunc, len(AllTypes))
	for t, q := range informationSchemaQueries(dialect) {
		e.queries[t] = q
	}
	for _, t := range AllTypes {
		if q, ok := dialect.Query(string(t)); ok {
			e.queries[t] = q
		}
		if !dialect.Supports(string(t)) {
			delete(e.queries, t)
		}
	}
	return e
}

// Dialect returns the dialect queries are built with.
func (e *GenericExtractor) Dialect() *driver.Dialect {
	return e.dialect
}

// SupportedTypes lists the types with a query.
func (e *GenericExtractor) SupportedTypes() []Type {
	types := make([]Type, 0, len(e.queries))
	for t := range e.queries {
		types = append(types, t)
	}
	sortTypes(types)
	return types
}

// Extract runs the query for req.Type and returns its canonical result.
func (e *GenericExtractor) Extract(ctx context.Context, req Request) (*dataset.DataSet, error) {
	if e.db == nil {
		return nil, driver.ErrNotConnected
	}
	query, ok := e.queries[req.Type]
	if !ok {
		return nil, &UnsupportedTypeError{
			Type:      req.Type,
			Source:    e.dialect.Name,
			Available: typeNames(e.SupportedTypes()),
		}
	}

	if req.Schema == "" && req.Type != Catalogs && req.Type != Schemas {
		req.Schema = e.defaultSchema
	}
	key := req.String()
	if ds, ok := e.Cached(key); ok {
		return ds, nil
	}

	sqlText, args := query(driver.Scope{
		Catalog: req.Catalog,
		Schema:  req.Schema,
		Object:  req.Object,
		Pattern: req.Pattern,
	})
	e.logger.Debug("extracting metadata",
		slog.String("type", string(req.Type)),
		slog.String("sql", sqlText),
		slog.Any("args", args))

	rows, err := e.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		e.logger.Warn("metadata query failed",
			slog.String("type", string(req.Type)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query %s: %w", req.Type, err)
	}
	defer func() { _ = rows.Close() }()

	raw, err := dataset.FromRows(string(req.Type), rows, remaps[req.Type])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Type, err)
	}

	ds := e.Conform(req.Type, raw)
	e.normalizeTypes(req.Type, ds)
	if ds, err = e.FilterByPattern(req.Type, ds, req.Pattern); err != nil {
		return nil, err
	}

	e.Store(key, ds)
	return ds, nil
}

// normalizeTypes rewrites driver type names through the dialect aliases.
func (e *GenericExtractor) normalizeTypes(t Type, ds *dataset.DataSet) {
	var field string
	switch t {
	case Columns, ProcedureColumns, Types:
		field = "TYPE_NAME"
	case Functions:
		field = "RETURN_TYPE"
	default:
		return
	}
	idx := ds.FieldIndex(field)
	if idx < 0 {
		return
	}
	for _, r := range ds.Records {
		if s, ok := r[idx].(string); ok {
			r[idx] = e.dialect.NormalizeType(s)
		}
	}
}
