package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toolsverse/foundation/internal/cli/config"
	"github.com/toolsverse/foundation/pkg/dataset"
)

// resolveFormat turns the configured output into a dataset format. Auto
// picks a table on a terminal and markdown otherwise.
func resolveFormat(w io.Writer, output string) (dataset.Format, error) {
	if output == "" || output == config.DefaultOutput {
		if isTerminal(w) {
			return dataset.FormatTable, nil
		}
		return dataset.FormatMarkdown, nil
	}
	return dataset.ParseFormat(output)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderDataSet writes ds in the configured output format. XLSX goes to
// the configured out file.
func renderDataSet(cmd *cobra.Command, ds *dataset.DataSet) error {
	cfg := config.GetConfig(cmd.Context())
	out := cmd.OutOrStdout()

	format, err := resolveFormat(out, cfg.OutputFormat)
	if err != nil {
		return err
	}
	if format == dataset.FormatXLSX {
		if cfg.OutFile == "" {
			return fmt.Errorf("xlsx output needs --out-file")
		}
		if err := dataset.WriteXLSX(cfg.OutFile, ds.Name, ds); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Wrote %d rows to %s\n", ds.Len(), cfg.OutFile)
		return nil
	}
	return dataset.Render(out, ds, format)
}
