// Package metadata turns database catalog information into DataSets.
//
// A metadata type such as "Tables" or "Primary Key" selects what to
// extract; a Request narrows it to a catalog, schema, object or name
// pattern. Every type has a canonical list of field names so results
// look the same whichever database produced them.
package metadata

import (
	"fmt"
	"sort"
	"strings"
)

// Type identifies a kind of catalog information.
type Type string

// Metadata types.
const (
	Catalogs         Type = "Catalogs"
	Schemas          Type = "Schemas"
	Tables           Type = "Tables"
	Views            Type = "Views"
	Columns          Type = "Columns"
	PrimaryKey       Type = "Primary Key"
	ForeignKeys      Type = "Foreign Keys"
	ExportedKeys     Type = "Exported Keys"
	Indexes          Type = "Indexes"
	Procedures       Type = "Procedures"
	ProcedureColumns Type = "Procedure Columns"
	Functions        Type = "Functions"
	Types            Type = "Types"
	Sequences        Type = "Sequences"
	Triggers         Type = "Triggers"
)

// AllTypes lists every metadata type in catalog order.
var AllTypes = []Type{
	Catalogs, Schemas, Tables, Views, Columns, PrimaryKey, ForeignKeys,
	ExportedKeys, Indexes, Procedures, ProcedureColumns, Functions, Types,
	Sequences, Triggers,
}

// TypesByParent maps a type to the types nested below it.
var TypesByParent = map[Type][]Type{
	Catalogs:   {Schemas},
	Schemas:    {Tables, Views, Procedures, Functions, Sequences},
	Tables:     {Columns, PrimaryKey, ForeignKeys, ExportedKeys, Indexes, Triggers},
	Views:      {Columns},
	Procedures: {ProcedureColumns},
}

// ChildTypes returns the types nested below t.
func ChildTypes(t Type) []Type {
	return TypesByParent[t]
}

// ParentType returns the first type that lists t as a child. Columns
// belong to Tables before Views.
func ParentType(t Type) (Type, bool) {
	for _, p := range AllTypes {
		for _, c := range TypesByParent[p] {
			if c == t {
				return p, true
			}
		}
	}
	return "", false
}

// ParseType resolves a type name case-insensitively. Underscores and
// dashes may stand in for spaces, so "primary_key" is PrimaryKey.
func ParseType(name string) (Type, error) {
	n := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(name))
	for _, t := range AllTypes {
		if strings.EqualFold(string(t), n) {
			return t, nil
		}
	}
	return "", &UnsupportedTypeError{Type: Type(name), Available: typeNames(AllTypes)}
}

// UnsupportedTypeError is returned for a type an extractor cannot
// produce.
type UnsupportedTypeError struct {
	Type      Type
	Source    string
	Available []string
}

func (e *UnsupportedTypeError) Error() string {
	msg := fmt.Sprintf("unsupported metadata type %q", e.Type)
	if e.Source != "" {
		msg += " for " + e.Source
	}
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// Request selects what to extract.
type Request struct {
	Type    Type
	Catalog string
	Schema  string
	// Object is the table, view or procedure the type belongs to.
	Object string
	// Pattern is a SQL LIKE pattern matched against the name field of
	// each result, case-insensitively.
	Pattern string
}

func (r Request) String() string {
	parts := []string{string(r.Type)}
	for _, kv := range [][2]string{
		{"catalog", r.Catalog}, {"schema", r.Schema}, {"object", r.Object}, {"pattern", r.Pattern},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}

// canonicalFields lists the result fields of each type in order.
var canonicalFields = map[Type][]string{
	Catalogs: {"TABLE_CATALOG"},
	Schemas:  {"TABLE_CATALOG", "TABLE_SCHEMA"},
	Tables:   {"TABLE_CATALOG", "TABLE_SCHEMA", "TABLE_NAME", "TABLE_TYPE"},
	Views:    {"TABLE_CATALOG", "TABLE_SCHEMA", "TABLE_NAME", "TABLE_TYPE"},
	Columns: {
		"TABLE_SCHEMA", "TABLE_NAME", "COLUMN_NAME", "TYPE_NAME", "COLUMN_SIZE",
		"DECIMAL_DIGITS", "NULLABLE", "COLUMN_DEFAULT", "ORDINAL_POSITION",
	},
	PrimaryKey: {"TABLE_SCHEMA", "TABLE_NAME", "COLUMN_NAME", "KEY_SEQ", "PK_NAME"},
	ForeignKeys: {
		"FK_NAME", "FKTABLE_SCHEMA", "FKTABLE_NAME", "FKCOLUMN_NAME",
		"PKTABLE_SCHEMA", "PKTABLE_NAME", "PKCOLUMN_NAME", "KEY_SEQ",
	},
	ExportedKeys: {
		"FK_NAME", "FKTABLE_SCHEMA", "FKTABLE_NAME", "FKCOLUMN_NAME",
		"PKTABLE_SCHEMA", "PKTABLE_NAME", "PKCOLUMN_NAME", "KEY_SEQ",
	},
	Indexes:    {"TABLE_SCHEMA", "TABLE_NAME", "INDEX_NAME", "NON_UNIQUE", "COLUMN_NAME", "ORDINAL_POSITION"},
	Procedures: {"PROCEDURE_SCHEMA", "PROCEDURE_NAME", "PROCEDURE_TYPE"},
	ProcedureColumns: {
		"PROCEDURE_SCHEMA", "PROCEDURE_NAME", "COLUMN_NAME", "COLUMN_MODE", "TYPE_NAME", "ORDINAL_POSITION",
	},
	Functions: {"FUNCTION_SCHEMA", "FUNCTION_NAME", "RETURN_TYPE"},
	Types:     {"TYPE_SCHEMA", "TYPE_NAME"},
	Sequences: {"SEQUENCE_SCHEMA", "SEQUENCE_NAME", "DATA_TYPE", "START_VALUE", "INCREMENT"},
	Triggers:  {"TRIGGER_SCHEMA", "TRIGGER_NAME", "TABLE_NAME", "EVENT", "TIMING"},
}

// nameFields is the field a Request.Pattern is matched against.
var nameFields = map[Type]string{
	Catalogs:         "TABLE_CATALOG",
	Schemas:          "TABLE_SCHEMA",
	Tables:           "TABLE_NAME",
	Views:            "TABLE_NAME",
	Columns:          "COLUMN_NAME",
	PrimaryKey:       "COLUMN_NAME",
	ForeignKeys:      "FK_NAME",
	ExportedKeys:     "FK_NAME",
	Indexes:          "INDEX_NAME",
	Procedures:       "PROCEDURE_NAME",
	ProcedureColumns: "COLUMN_NAME",
	Functions:        "FUNCTION_NAME",
	Types:            "TYPE_NAME",
	Sequences:        "SEQUENCE_NAME",
	Triggers:         "TRIGGER_NAME",
}

// Fields returns the canonical field names of t.
func Fields(t Type) []string {
	return append([]string(nil), canonicalFields[t]...)
}

// NameField returns the field Request.Pattern applies to for t.
func NameField(t Type) string {
	return nameFields[t]
}

func typeNames(types []Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func sortTypes(types []Type) {
	order := make(map[Type]int, len(AllTypes))
	for i, t := range AllTypes {
		order[t] = i
	}
	sort.Slice(types, func(i, j int) bool { return order[types[i]] < order[types[j]] })
}
