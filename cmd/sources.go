package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("search"); err != nil {
			return err
		}
		reg, err := source.Build(*cfg, source.Deps{})
		if err != nil {
			return eris.Wrap(err, "build sources")
		}
		return writeSources(os.Stdout, reg.Infos())
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func writeSources(w io.Writer, infos []source.Info) error {
	if _, err := fmt.Fprintf(w, "%-20s %-16s %-8s %10s  %s\n", "Name", "Kind", "Enabled", "Confidence", "Note"); err != nil {
		return eris.Wrap(err, "sources: write header")
	}
	for _, info := range infos {
		if _, err := fmt.Fprintf(w, "%-20s %-16s %-8v %10.2f  %s\n",
			info.Name, info.Kind, info.Enabled, info.Confidence, info.Reason); err != nil {
			return eris.Wrap(err, "sources: write row")
		}
	}
	return nil
}
