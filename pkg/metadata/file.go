package metadata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/fileutil"
	"github.com/toolsverse/foundation/pkg/strutil"
)

// DefaultSampleRows is the number of rows read to infer column types.
const DefaultSampleRows = 100

// FileExtractor describes a directory of data files as a database: the
// directory is the catalog, each sub-directory a schema, each csv, tsv,
// json or xlsx file a table and its header names the columns.
type FileExtractor struct {
	*BaseMetadata

	root       string
	recursive  bool
	sampleRows int
}

// FileOption configures a FileExtractor.
type FileOption func(*FileExtractor)

// WithRecursive includes files in sub-directories.
func WithRecursive(recursive bool) FileOption {
	return func(e *FileExtractor) {
		e.recursive = recursive
	}
}

// WithSampleRows sets how many rows are read to infer column types.
func WithSampleRows(n int) FileOption {
	return func(e *FileExtractor) {
		if n > 0 {
			e.sampleRows = n
		}
	}
}

// NewFileExtractor creates an extractor for the files under root.
// If logger is nil, a discard logger is used.
func NewFileExtractor(root string, logger *slog.Logger, opts ...FileOption) *FileExtractor {
	e := &FileExtractor{
		BaseMetadata: NewBaseMetadata(0, logger),
		root:         filepath.Clean(root),
		sampleRows:   DefaultSampleRows,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fileFormats maps file extensions to the table type reported for them.
var fileFormats = map[string]string{
	"csv":  "CSV",
	"tsv":  "TSV",
	"json": "JSON",
	"xlsx": "XLSX",
}

// SupportedTypes lists the types a directory can describe.
func (e *FileExtractor) SupportedTypes() []Type {
	return []Type{Catalogs, Schemas, Tables, Columns}
}

// Extract describes the directory for req.
func (e *FileExtractor) Extract(ctx context.Context, req Request) (*dataset.DataSet, error) {
	if !fileutil.IsDir(e.root) {
		return nil, fmt.Errorf("%s is not a directory", e.root)
	}

	var (
		ds  *dataset.DataSet
		err error
	)
	switch req.Type {
	case Catalogs:
		ds = e.EmptyDataSet(Catalogs)
		err = ds.AddRecord(e.root)
	case Schemas:
		ds, err = e.schemas()
	case Tables:
		ds, err = e.tables(req)
	case Columns:
		ds, err = e.columns(ctx, req)
	default:
		return nil, &UnsupportedTypeError{Type: req.Type, Source: "files", Available: typeNames(e.SupportedTypes())}
	}
	if err != nil {
		return nil, err
	}
	return e.FilterByPattern(req.Type, ds, req.Pattern)
}

// dataFile is one table candidate.
type dataFile struct {
	path   string
	schema string
	name   string
	format string
}

func (e *FileExtractor) files() ([]dataFile, error) {
	paths, err := fileutil.ListFiles(e.root, "", e.recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", e.root, err)
	}
	var out []dataFile
	for _, p := range paths {
		format, ok := fileFormats[fileutil.Ext(p)]
		if !ok {
			continue
		}
		rel, err := filepath.Rel(e.root, filepath.Dir(p))
		if err != nil {
			return nil, err
		}
		out = append(out, dataFile{
			path:   p,
			schema: filepath.ToSlash(rel),
			name:   filepath.Base(p),
			format: format,
		})
	}
	return out, nil
}

func (e *FileExtractor) schemas() (*dataset.DataSet, error) {
	files, err := e.files()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, f := range files {
		if !seen[f.schema] {
			seen[f.schema] = true
			names = append(names, f.schema)
		}
	}
	sort.Strings(names)

	ds := e.EmptyDataSet(Schemas)
	for _, n := range names {
		if err := ds.AddRecord(e.root, n); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// selected returns the files matching the schema and object of req.
func (e *FileExtractor) selected(req Request) ([]dataFile, error) {
	files, err := e.files()
	if err != nil {
		return nil, err
	}
	var out []dataFile
	for _, f := range files {
		if req.Schema != "" && f.schema != req.Schema {
			continue
		}
		if req.Object != "" && !strings.EqualFold(f.name, req.Object) && !strings.EqualFold(fileutil.BaseName(f.name), req.Object) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (e *FileExtractor) tables(req Request) (*dataset.DataSet, error) {
	files, err := e.selected(req)
	if err != nil {
		return nil, err
	}
	ds := e.EmptyDataSet(Tables)
	for _, f := range files {
		if err := ds.AddRecord(e.root, f.schema, f.name, f.format); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (e *FileExtractor) columns(ctx context.Context, req Request) (*dataset.DataSet, error) {
	files, err := e.selected(req)
	if err != nil {
		return nil, err
	}
	ds := e.EmptyDataSet(Columns)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample, err := e.readSample(f)
		if err != nil {
			e.Logger().Warn("failed to read data file",
				slog.String("path", f.path),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
		}
		for i, col := range describeColumns(sample) {
			if err := ds.AddRecord(f.schema, f.name, col.name, col.typ.String(),
				col.size, nil, yesNo(col.nullable), nil, i+1); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

func (e *FileExtractor) readSample(f dataFile) (*dataset.DataSet, error) {
	switch f.format {
	case "XLSX":
		return dataset.ReadXLSX(f.path, "", e.sampleRows)
	case "JSON":
		return readJSONSample(f.path, e.sampleRows)
	case "TSV":
		return readDelimitedSample(f.path, '\t', e.sampleRows)
	default:
		return readDelimitedSample(f.path, ',', e.sampleRows)
	}
}

func readDelimitedSample(path string, sep rune, limit int) (*dataset.DataSet, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return dataset.New(fileutil.BaseName(path)), nil
	}
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	ds := dataset.NewWithNames(fileutil.BaseName(path), header...)
	for ds.Len() < limit {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(dataset.Record, len(header))
		for i := range rec {
			if i < len(row) {
				rec[i] = row[i]
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// readJSONSample reads a JSON array of objects. Columns are the union of
// the object keys in sorted order.
func readJSONSample(path string, limit int) (*dataset.DataSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("expected an array of objects: %w", err)
	}
	if len(objects) > limit {
		objects = objects[:limit]
	}

	seen := make(map[string]bool)
	var keys []string
	for _, o := range objects {
		for k := range o {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	ds := dataset.NewWithNames(fileutil.BaseName(path), keys...)
	for _, o := range objects {
		rec := make(dataset.Record, len(keys))
		for i, k := range keys {
			rec[i] = o[k]
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

type columnInfo struct {
	name     string
	typ      dataset.FieldType
	size     int
	nullable bool
}

// describeColumns infers a type for each field of sample. A column is
// the narrowest of integer, float, boolean, timestamp and string that
// fits every non-empty value.
func describeColumns(sample *dataset.DataSet) []columnInfo {
	cols := make([]columnInfo, len(sample.Fields))
	for i, f := range sample.Fields {
		col := columnInfo{name: f.Name}
		var kinds []dataset.FieldType
		for _, r := range sample.Records {
			v := r[i]
			if v == nil || v == "" {
				col.nullable = true
				continue
			}
			s := strutil.ToString(v)
			if len(s) > col.size {
				col.size = len(s)
			}
			kinds = append(kinds, inferType(v))
		}
		col.typ = widen(kinds)
		cols[i] = col
	}
	return cols
}

func inferType(v any) dataset.FieldType {
	switch x := v.(type) {
	case float64:
		if x == float64(int64(x)) {
			return dataset.TypeInt
		}
		return dataset.TypeFloat
	case string:
		s := strings.TrimSpace(x)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return dataset.TypeInt
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return dataset.TypeFloat
		}
		if ls := strings.ToLower(s); ls == "true" || ls == "false" {
			return dataset.TypeBool
		}
		if _, err := strutil.ParseAnyDate(s); err == nil {
			return dataset.TypeTime
		}
		return dataset.TypeString
	case map[string]any, []any:
		return dataset.TypeString
	default:
		return dataset.TypeOf(v)
	}
}

func widen(kinds []dataset.FieldType) dataset.FieldType {
	if len(kinds) == 0 {
		return dataset.TypeString
	}
	t := kinds[0]
	for _, k := range kinds[1:] {
		switch {
		case k == t:
		case (t == dataset.TypeInt && k == dataset.TypeFloat) || (t == dataset.TypeFloat && k == dataset.TypeInt):
			t = dataset.TypeFloat
		default:
			return dataset.TypeString
		}
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
