package driver

import (
	"strings"

	"github.com/toolsverse/foundation/pkg/sqlutil"
)

// Scope narrows a catalog query.
type Scope struct {
	Catalog string
	Schema  string
	Object  string
	// Pattern is a SQL LIKE pattern applied to object names.
	Pattern string
}

// QueryFunc builds a catalog query and its arguments for a scope. The
// query must alias its columns to the canonical metadata field names.
type QueryFunc func(s Scope) (query string, args []any)

// Dialect describes the SQL conventions of a database.
type Dialect struct {
	Name          string
	DefaultSchema string
	Placeholder   sqlutil.PlaceholderStyle
	// Quote opens a quoted identifier; "[" implies "]" as the closer.
	Quote string
	// Queries overrides the default information_schema query for a
	// metadata type, keyed by type name (e.g. "Tables").
	Queries map[string]QueryFunc
	// Unsupported lists metadata types the database cannot report.
	Unsupported []string
	// TypeAliases maps driver type names to canonical names, keys upper case.
	TypeAliases map[string]string
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	return sqlutil.Placeholder(d.Placeholder, index)
}

// QuoteIdentifier quotes name when it needs quoting.
func (d *Dialect) QuoteIdentifier(name string) string {
	q := d.Quote
	if q == "" {
		q = `"`
	}
	return sqlutil.QuoteIfNeeded(name, q)
}

// Query returns the override for a metadata type.
func (d *Dialect) Query(metadataType string) (QueryFunc, bool) {
	q, ok := d.Queries[metadataType]
	return q, ok
}

// Supports reports whether the metadata type is not marked unsupported.
func (d *Dialect) Supports(metadataType string) bool {
	for _, u := range d.Unsupported {
		if strings.EqualFold(u, metadataType) {
			return false
		}
	}
	return true
}

// NormalizeType returns the canonical upper-case name for a driver type
// name, keeping any length or precision suffix.
func (d *Dialect) NormalizeType(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	base, suffix := n, ""
	if i := strings.IndexByte(n, '('); i >= 0 {
		base, suffix = strings.TrimSpace(n[:i]), n[i:]
	}
	if alias, ok := d.TypeAliases[base]; ok {
		return alias + suffix
	}
	return n
}

// Generic is the dialect for databases reached without a dedicated
// driver. It relies on information_schema only.
var Generic = &Dialect{
	Name:          "generic",
	DefaultSchema: "public",
	Placeholder:   sqlutil.PlaceholderQuestion,
	Quote:         `"`,
}
