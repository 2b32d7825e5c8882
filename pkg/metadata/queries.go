package metadata

import (
	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/driver"
)

// informationSchemaQueries builds the default queries for d. They read
// information_schema using its own column names; remaps renames those
// to the canonical fields.
func informationSchemaQueries(d *driver.Dialect) map[Type]driver.QueryFunc {
	tables := func(cond string) driver.QueryFunc {
		return func(s driver.Scope) (string, []any) {
			return d.NewQuery(`
				SELECT table_catalog, table_schema, table_name, table_type
				FROM information_schema.tables`).
				Raw(cond).
				Eq("table_catalog", s.Catalog).
				Eq("table_schema", s.Schema).
				Eq("table_name", s.Object).
				OrderBy("table_schema, table_name").
				Build()
		}
	}

	keys := func(exported bool) driver.QueryFunc {
		return func(s driver.Scope) (string, []any) {
			q := d.NewQuery(`
				SELECT rc.constraint_name, fk.table_schema AS fktable_schema, fk.table_name AS fktable_name,
					fk.column_name AS fkcolumn_name, pk.table_schema AS pktable_schema,
					pk.table_name AS pktable_name, pk.column_name AS pkcolumn_name, fk.ordinal_position
				FROM information_schema.referential_constraints rc
				JOIN information_schema.key_column_usage fk
					ON fk.constraint_schema = rc.constraint_schema AND fk.constraint_name = rc.constraint_name
				JOIN information_schema.key_column_usage pk
					ON pk.constraint_schema = rc.unique_constraint_schema
					AND pk.constraint_name = rc.unique_constraint_name
					AND pk.ordinal_position = fk.position_in_unique_constraint`)
			if exported {
				q.Eq("pk.table_schema", s.Schema).Eq("pk.table_name", s.Object)
			} else {
				q.Eq("fk.table_schema", s.Schema).Eq("fk.table_name", s.Object)
			}
			return q.OrderBy("fk.table_schema, fk.table_name, rc.constraint_name, fk.ordinal_position").Build()
		}
	}

	routines := func(routineType string, cols string) driver.QueryFunc {
		return func(s driver.Scope) (string, []any) {
			return d.NewQuery("SELECT "+cols+" FROM information_schema.routines").
				Raw("routine_type = '"+routineType+"'").
				Eq("routine_schema", s.Schema).
				Eq("routine_name", s.Object).
				OrderBy("routine_schema, routine_name").
				Build()
		}
	}

	return map[Type]driver.QueryFunc{
		Catalogs: func(_ driver.Scope) (string, []any) {
			return "SELECT DISTINCT catalog_name FROM information_schema.schemata ORDER BY catalog_name", nil
		},
		Schemas: func(s driver.Scope) (string, []any) {
			return d.NewQuery("SELECT catalog_name, schema_name FROM information_schema.schemata").
				Eq("catalog_name", s.Catalog).
				OrderBy("schema_name").
				Build()
		},
		Tables: tables("table_type IN ('BASE TABLE', 'TABLE')"),
		Views:  tables("table_type = 'VIEW'"),
		Columns: func(s driver.Scope) (string, []any) {
			return d.NewQuery(`
				SELECT table_schema, table_name, column_name, data_type,
					COALESCE(character_maximum_length, numeric_precision) AS column_size,
					numeric_scale, is_nullable, column_default, ordinal_position
				FROM information_schema.columns`).
				Eq("table_catalog", s.Catalog).
				Eq("table_schema", s.Schema).
				Eq("table_name", s.Object).
				OrderBy("table_schema, table_name, ordinal_position").
				Build()
		},
		PrimaryKey: func(s driver.Scope) (string, []any) {
			return d.NewQuery(`
				SELECT kcu.table_schema, kcu.table_name, kcu.column_name, kcu.ordinal_position, tc.constraint_name
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON kcu.constraint_schema = tc.constraint_schema
					AND kcu.constraint_name = tc.constraint_name
					AND kcu.table_name = tc.table_name`).
				Raw("tc.constraint_type = 'PRIMARY KEY'").
				Eq("kcu.table_schema", s.Schema).
				Eq("kcu.table_name", s.Object).
				OrderBy("kcu.table_schema, kcu.table_name, kcu.ordinal_position").
				Build()
		},
		ForeignKeys:  keys(false),
		ExportedKeys: keys(true),
		Procedures:   routines("PROCEDURE", "routine_schema, routine_name, routine_type"),
		ProcedureColumns: func(s driver.Scope) (string, []any) {
			return d.NewQuery(`
				SELECT r.routine_schema, r.routine_name, p.parameter_name, p.parameter_mode,
					p.data_type, p.ordinal_position
				FROM information_schema.parameters p
				JOIN information_schema.routines r
					ON r.specific_schema = p.specific_schema AND r.specific_name = p.specific_name`).
				Eq("r.routine_schema", s.Schema).
				Eq("r.routine_name", s.Object).
				OrderBy("r.routine_schema, r.routine_name, p.ordinal_position").
				Build()
		},
		Functions: routines("FUNCTION", "routine_schema, routine_name, data_type"),
		Types: func(s driver.Scope) (string, []any) {
			return d.NewQuery("SELECT DISTINCT table_schema, data_type FROM information_schema.columns").
				Eq("table_schema", s.Schema).
				OrderBy("table_schema, data_type").
				Build()
		},
		Sequences: func(s driver.Scope) (string, []any) {
			return d.NewQuery(`
				SELECT sequence_schema, sequence_name, data_type, start_value, increment
				FROM information_schema.sequences`).
				Eq("sequence_schema", s.Schema).
				OrderBy("sequence_schema, sequence_name").
				Build()
		},
		Triggers: func(s driver.Scope) (string, []any) {
			return d.NewQuery(`
				SELECT trigger_schema, trigger_name, event_object_table, event_manipulation, action_timing
				FROM information_schema.triggers`).
				Eq("trigger_schema", s.Schema).
				Eq("event_object_table", s.Object).
				OrderBy("trigger_schema, trigger_name").
				Build()
		},
	}
}

// remaps renames information_schema columns to canonical fields. Dialect
// queries that already alias to canonical names pass through unchanged.
var remaps = map[Type]dataset.Remap{
	Catalogs: {Columns: map[string]string{"catalog_name": "TABLE_CATALOG"}},
	Schemas: {Columns: map[string]string{
		"catalog_name": "TABLE_CATALOG",
		"schema_name":  "TABLE_SCHEMA",
	}},
	Columns: {Columns: map[string]string{
		"data_type":     "TYPE_NAME",
		"numeric_scale": "DECIMAL_DIGITS",
		"is_nullable":   "NULLABLE",
	}},
	PrimaryKey: {Columns: map[string]string{
		"ordinal_position": "KEY_SEQ",
		"constraint_name":  "PK_NAME",
	}},
	ForeignKeys: {Columns: map[string]string{
		"constraint_name":  "FK_NAME",
		"ordinal_position": "KEY_SEQ",
	}},
	ExportedKeys: {Columns: map[string]string{
		"constraint_name":  "FK_NAME",
		"ordinal_position": "KEY_SEQ",
	}},
	Procedures: {Columns: map[string]string{
		"routine_schema": "PROCEDURE_SCHEMA",
		"routine_name":   "PROCEDURE_NAME",
		"routine_type":   "PROCEDURE_TYPE",
	}},
	ProcedureColumns: {Columns: map[string]string{
		"routine_schema": "PROCEDURE_SCHEMA",
		"routine_name":   "PROCEDURE_NAME",
		"parameter_name": "COLUMN_NAME",
		"parameter_mode": "COLUMN_MODE",
		"data_type":      "TYPE_NAME",
	}},
	Functions: {Columns: map[string]string{
		"routine_schema": "FUNCTION_SCHEMA",
		"routine_name":   "FUNCTION_NAME",
		"data_type":      "RETURN_TYPE",
	}},
	Types: {Columns: map[string]string{
		"table_schema": "TYPE_SCHEMA",
		"data_type":    "TYPE_NAME",
	}},
	Triggers: {Columns: map[string]string{
		"event_object_table": "TABLE_NAME",
		"event_manipulation": "EVENT",
		"action_timing":      "TIMING",
	}},
}
