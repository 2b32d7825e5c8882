package driver

import "strings"

// QueryBuilder appends WHERE conditions to a catalog query using the
// dialect's placeholders.
type QueryBuilder struct {
	d       *Dialect
	sb      strings.Builder
	args    []any
	hasCond bool
	order   string
}

// NewQuery starts a query from a SELECT ... FROM ... clause without WHERE.
func (d *Dialect) NewQuery(base string) *QueryBuilder {
	q := &QueryBuilder{d: d}
	q.sb.WriteString(strings.TrimSpace(base))
	return q
}

func (q *QueryBuilder) cond(c string) {
	if q.hasCond {
		q.sb.WriteString(" AND ")
	} else {
		q.sb.WriteString(" WHERE ")
		q.hasCond = true
	}
	q.sb.WriteString(c)
}

// Raw adds a literal condition.
func (q *QueryBuilder) Raw(cond string) *QueryBuilder {
	q.cond(cond)
	return q
}

// Eq adds "column = ?" when value is not empty.
func (q *QueryBuilder) Eq(column, value string) *QueryBuilder {
	if value == "" {
		return q
	}
	q.args = append(q.args, value)
	q.cond(column + " = " + q.d.FormatPlaceholder(len(q.args)))
	return q
}

// OrderBy sets the ORDER BY list.
func (q *QueryBuilder) OrderBy(cols string) *QueryBuilder {
	q.order = cols
	return q
}

// Build returns the query text and its arguments.
func (q *QueryBuilder) Build() (string, []any) {
	s := q.sb.String()
	if q.order != "" {
		s += " ORDER BY " + q.order
	}
	return s, q.args
}
