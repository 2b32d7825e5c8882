package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/toolsverse/foundation/internal/cli/config"
	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/driver"
)

// NewDriversCommand creates the drivers command.
func NewDriversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List registered database drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := driversDataSet(config.GetConfig(cmd.Context()))
			if err != nil {
				return err
			}
			return renderDataSet(cmd, ds)
		},
	}
}

// driversDataSet describes every registered driver's dialect.
func driversDataSet(cfg *config.Config) (*dataset.DataSet, error) {
	ds := dataset.NewWithNames("Drivers", "NAME", "DEFAULT_SCHEMA", "QUOTING", "UNSUPPORTED", "CONFIGURED")
	for _, name := range driver.List() {
		d, err := driver.New(driver.Config{Type: name}, nil)
		if err != nil {
			return nil, err
		}
		dialect := d.Dialect()
		if err := ds.AddRecord(name, dialect.DefaultSchema, dialect.QuoteIdentifier("a b"),
			strings.Join(dialect.Unsupported, ", "), name == cfg.Connection.Type); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
