package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toolsverse/foundation/internal/cli/config"
	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/metadata"
	"github.com/toolsverse/foundation/pkg/tree"
)

// MetadataOptions holds the scope flags shared by metadata subcommands.
type MetadataOptions struct {
	Catalog string
	Schema  string
	Object  string
	Pattern string
}

func (o *MetadataOptions) request(t metadata.Type) metadata.Request {
	return metadata.Request{
		Type:    t,
		Catalog: o.Catalog,
		Schema:  o.Schema,
		Object:  o.Object,
		Pattern: o.Pattern,
	}
}

func (o *MetadataOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Catalog, "catalog", "", "Catalog (database) to read")
	cmd.Flags().StringVar(&o.Schema, "schema", "", "Schema to read (default: connection schema)")
	cmd.Flags().StringVar(&o.Object, "object", "", "Table, view or procedure name")
	cmd.Flags().StringVar(&o.Pattern, "pattern", "", "SQL LIKE pattern for object names")
}

// NewMetadataCommand creates the metadata command group.
func NewMetadataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Inspect database and file metadata",
		Long: `Read catalogs, schemas, tables, columns, keys and other catalog
information from the configured connection or from a directory of data files.`,
	}
	cmd.AddCommand(newMetadataTypesCommand())
	cmd.AddCommand(newMetadataGetCommand())
	cmd.AddCommand(newMetadataFilesCommand())
	cmd.AddCommand(newMetadataTreeCommand())
	return cmd
}

func newMetadataTypesCommand() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List metadata types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := typesDataSet(parent)
			if err != nil {
				return err
			}
			return renderDataSet(cmd, ds)
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Only list types nested below this type")
	return cmd
}

// typesDataSet lists metadata types with their parent and name field.
func typesDataSet(parent string) (*dataset.DataSet, error) {
	types := metadata.AllTypes
	if parent != "" {
		p, err := metadata.ParseType(parent)
		if err != nil {
			return nil, err
		}
		types = metadata.ChildTypes(p)
	}

	ds := dataset.NewWithNames("Types", "TYPE", "PARENT", "NAME_FIELD", "FIELDS")
	for _, t := range types {
		p, _ := metadata.ParentType(t)
		if err := ds.AddRecord(string(t), string(p), metadata.NameField(t),
			strings.Join(metadata.Fields(t), ", ")); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func newMetadataGetCommand() *cobra.Command {
	opts := &MetadataOptions{}
	cmd := &cobra.Command{
		Use:   "get <type>",
		Short: "Extract one metadata type from the connection",
		Long: `Extract one metadata type from the configured connection.

Examples:
  foundation metadata get tables --schema public --pattern 'ord%'
  foundation metadata get columns --object orders -o json
  foundation metadata get "primary key" --object orders`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := metadata.ParseType(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			md, err := openMetadata(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = md.Close() }()

			ds, err := md.Extract(ctx, opts.request(t))
			if err != nil {
				return err
			}
			return renderDataSet(cmd, ds)
		},
	}
	opts.bind(cmd)
	return cmd
}

// openMetadata connects to the configured database.
func openMetadata(ctx context.Context) (*metadata.Metadata, error) {
	cfg := config.GetConfig(ctx)
	if err := cfg.RequireConnection(); err != nil {
		return nil, err
	}
	logger := config.GetLogger(ctx)
	return metadata.Open(ctx, cfg.Connection, logger,
		metadata.WithCacheSize(cfg.CacheSize), metadata.WithLogger(logger))
}

func newMetadataFilesCommand() *cobra.Command {
	opts := &MetadataOptions{}
	var (
		recursive  bool
		sampleRows int
	)
	cmd := &cobra.Command{
		Use:   "files <dir> [type]",
		Short: "Describe csv, tsv, json and xlsx files in a directory",
		Long: `Describe data files as tables. Columns are inferred from a sample of rows.

Examples:
  foundation metadata files ./data
  foundation metadata files ./data columns --object orders.csv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := metadata.Tables
			if len(args) == 2 {
				var err error
				if t, err = metadata.ParseType(args[1]); err != nil {
					return err
				}
			}
			ext := newFileExtractor(cmd.Context(), args[0], recursive, sampleRows)
			ds, err := ext.Extract(cmd.Context(), opts.request(t))
			if err != nil {
				return err
			}
			return renderDataSet(cmd, ds)
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include subdirectories")
	cmd.Flags().IntVar(&sampleRows, "sample-rows", metadata.DefaultSampleRows, "Rows read to infer column types")
	return cmd
}

func newFileExtractor(ctx context.Context, dir string, recursive bool, sampleRows int) *metadata.FileExtractor {
	return metadata.NewFileExtractor(dir, config.GetLogger(ctx),
		metadata.WithRecursive(recursive), metadata.WithSampleRows(sampleRows))
}

func newMetadataTreeCommand() *cobra.Command {
	opts := &MetadataOptions{}
	var (
		depth int
		dir   string
	)
	cmd := &cobra.Command{
		Use:   "tree <type>",
		Short: "Print nested metadata starting at a type",
		Long: `Extract a metadata type and, depth levels deep, every type nested below it.

Examples:
  foundation metadata tree schemas --depth 2
  foundation metadata tree tables --dir ./data --depth 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := metadata.ParseType(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var ext metadata.Extractor
			if dir != "" {
				ext = newFileExtractor(ctx, dir, true, metadata.DefaultSampleRows)
			} else {
				md, err := openMetadata(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = md.Close() }()
				ext = md
			}

			root, err := metadata.Tree(ctx, ext, opts.request(t), depth)
			if err != nil {
				return err
			}
			writeTree(cmd.OutOrStdout(), root)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVar(&depth, "depth", 1, "Levels of nested types to extract")
	cmd.Flags().StringVar(&dir, "dir", "", "Read data files in this directory instead of the connection")
	return cmd
}

// writeTree prints one line per node, indented by depth, with the names
// found at that node.
func writeTree(w io.Writer, root *tree.Node[metadata.Item]) {
	root.Walk(func(n *tree.Node[metadata.Item]) bool {
		item := n.Value
		indent := strings.Repeat("  ", n.Depth())
		_, _ = fmt.Fprintf(w, "%s%s (%d)", indent, item.Request, item.Data.Len())
		if names := itemNames(item); len(names) > 0 {
			_, _ = fmt.Fprintf(w, ": %s", strings.Join(names, ", "))
		}
		_, _ = fmt.Fprintln(w)
		return true
	})
}

func itemNames(item metadata.Item) []string {
	field := metadata.NameField(item.Request.Type)
	if field == "" {
		return nil
	}
	names := make([]string, 0, item.Data.Len())
	for row := range item.Data.Records {
		if name := item.Data.StringValue(row, field); name != "" {
			names = append(names, name)
		}
	}
	return names
}
