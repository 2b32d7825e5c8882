package metadata

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/toolsverse/foundation/pkg/collections"
	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// DefaultCacheSize is the number of results a BaseMetadata keeps.
const DefaultCacheSize = 64

// BaseMetadata holds what every extractor shares: result shaping, name
// filtering and a bounded result cache.
type BaseMetadata struct {
	logger *slog.Logger

	mu    sync.Mutex
	cache *collections.LimitedMap[string, *dataset.DataSet]
}

// NewBaseMetadata creates a BaseMetadata caching up to cacheSize results.
// A cacheSize of zero or less disables caching.
func NewBaseMetadata(cacheSize int, logger *slog.Logger) *BaseMetadata {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &BaseMetadata{logger: logger}
	if cacheSize > 0 {
		b.cache = collections.NewLimitedMap[string, *dataset.DataSet](cacheSize)
		b.cache.AccessOrder = true
	}
	return b
}

// Logger returns the logger.
func (b *BaseMetadata) Logger() *slog.Logger {
	return b.logger
}

// EmptyDataSet returns a DataSet with the canonical fields of t and no
// records.
func (b *BaseMetadata) EmptyDataSet(t Type) *dataset.DataSet {
	return dataset.NewWithNames(string(t), canonicalFields[t]...)
}

// Conform reorders the fields of ds into the canonical order of t.
// Canonical fields missing from ds are added with nil values; fields
// outside the canonical list are kept at the end, upper-cased.
func (b *BaseMetadata) Conform(t Type, ds *dataset.DataSet) *dataset.DataSet {
	canonical := canonicalFields[t]
	out := dataset.New(string(t))
	src := make([]int, 0, len(canonical)+len(ds.Fields))
	used := make([]bool, len(ds.Fields))

	for _, name := range canonical {
		i := ds.FieldIndex(name)
		f := dataset.Field{Name: name, Type: dataset.TypeString, Nullable: true}
		if i >= 0 {
			f.Type = ds.Fields[i].Type
			f.Size = ds.Fields[i].Size
			used[i] = true
		}
		out.Fields = append(out.Fields, f)
		src = append(src, i)
	}
	for i, f := range ds.Fields {
		if used[i] {
			continue
		}
		f.Name = strings.ToUpper(f.Name)
		out.Fields = append(out.Fields, f)
		src = append(src, i)
	}

	out.Records = make([]dataset.Record, len(ds.Records))
	for r, rec := range ds.Records {
		row := make(dataset.Record, len(src))
		for j, i := range src {
			if i >= 0 {
				row[j] = rec[i]
			}
		}
		out.Records[r] = row
	}
	return out
}

// FilterByPattern keeps the records whose name field matches the LIKE
// pattern, ignoring case. An empty pattern keeps everything.
func (b *BaseMetadata) FilterByPattern(t Type, ds *dataset.DataSet, pattern string) (*dataset.DataSet, error) {
	if pattern == "" || pattern == "%" {
		return ds, nil
	}
	idx := ds.FieldIndex(nameFields[t])
	if idx < 0 {
		return ds, nil
	}
	re, err := sqlutil.CompileLike(pattern, true)
	if err != nil {
		return nil, err
	}
	return ds.Filter(func(r dataset.Record) bool {
		v, _ := r[idx].(string)
		return re.MatchString(v)
	}), nil
}

// Cached returns a copy of the cached result for key.
func (b *BaseMetadata) Cached(key string) (*dataset.DataSet, bool) {
	if b.cache == nil {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ds, ok := b.cache.Get(key)
	if !ok {
		return nil, false
	}
	return ds.Clone(), true
}

// Store caches a copy of ds under key.
func (b *BaseMetadata) Store(key string, ds *dataset.DataSet) {
	if b.cache == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Put(key, ds.Clone())
}

// ClearCache drops every cached result.
func (b *BaseMetadata) ClearCache() {
	if b.cache == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Clear()
}
