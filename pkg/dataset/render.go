package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output format for Render.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatYAML     Format = "yaml"
	FormatXLSX     Format = "xlsx"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatYAML, FormatXLSX}

// ErrNeedsFile is returned by Render for formats that must be written to a file.
var ErrNeedsFile = errors.New("format requires an output file")

// ParseFormat resolves a format name, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "text":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Render writes d to w in the given format.
func Render(w io.Writer, d *DataSet, format Format) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, d)
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatMarkdown:
		return WriteMarkdown(w, d)
	case FormatYAML:
		return WriteYAML(w, d)
	case FormatXLSX:
		return fmt.Errorf("%s: %w", format, ErrNeedsFile)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteTable renders d as a box-drawn table followed by a row count.
func WriteTable(w io.Writer, d *DataSet) error {
	if d.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(d.Fields))
	for i, f := range d.Fields {
		header[i] = f.Name
	}
	t.AppendHeader(header)

	for _, r := range d.Records {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", d.Len())
	return nil
}

// WriteJSON writes the records as an indented JSON array of objects.
func WriteJSON(w io.Writer, d *DataSet) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonRecords(d))
}

func jsonRecords(d *DataSet) []map[string]any {
	out := d.ToMaps()
	for _, m := range out {
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
	}
	return out
}

// WriteCSV writes a header line and one line per record.
func WriteCSV(w io.Writer, d *DataSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.FieldNames()); err != nil {
		return err
	}
	for _, r := range d.Records {
		line := make([]string, len(r))
		for i, v := range r {
			if v != nil {
				line[i] = formatValue(v)
			}
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown renders d as a GitHub-flavoured markdown table.
func WriteMarkdown(w io.Writer, d *DataSet) error {
	if d.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(d.FieldNames(), " | "))
	seps := make([]string, len(d.Fields))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range d.Records {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = strings.ReplaceAll(formatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// WriteYAML writes the records as a YAML sequence of mappings, keeping
// field order.
func WriteYAML(w io.Writer, d *DataSet) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range d.Records {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, f := range d.Fields {
			key := &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}
			val := &yaml.Node{}
			if err := val.Encode(yamlValue(r[i])); err != nil {
				return fmt.Errorf("failed to encode %s: %w", f.Name, err)
			}
			m.Content = append(m.Content, key, val)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func yamlValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// WriteXLSX saves d to an Excel workbook at path. The sheet defaults to
// the DataSet name.
func WriteXLSX(path, sheet string, d *DataSet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = d.Name
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	// Excel limits sheet names to 31 characters.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, field := range d.Fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, field.Name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for row, r := range d.Records {
		for col, v := range r {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	for col := range d.Fields {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, 18); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// ReadXLSX loads a sheet of an Excel workbook. The first row supplies the
// field names; values are read as strings. An empty sheet name selects
// the first sheet. limit caps the number of records read when positive.
func ReadXLSX(path, sheet string, limit int) (*DataSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	ds := New(sheet)
	if len(rows) == 0 {
		return ds, nil
	}
	ds = NewWithNames(sheet, rows[0]...)
	for _, row := range rows[1:] {
		if limit > 0 && ds.Len() >= limit {
			break
		}
		rec := make([]any, len(ds.Fields))
		for i := range rec {
			if i < len(row) {
				rec[i] = row[i]
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
