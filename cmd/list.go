package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/andresmejia3/facelens/internal/registry"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known faces in load order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		adapter, _, err := openAdapter(Cfg, 1)
		if err != nil {
			return err
		}
		defer adapter.Close()

		reg, report, err := loadKnown(cmd.Context(), adapter)
		if err != nil {
			return err
		}
		printRegistry(os.Stdout, reg, report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func printRegistry(out io.Writer, reg *registry.Registry, report registry.LoadReport) {
	if reg.Len() == 0 {
		fmt.Fprintln(out, "No known faces found.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "INDEX\tNAME\tFILE")
		fmt.Fprintln(w, "-----\t----\t----")
		for i, k := range reg.Faces() {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i, k.Name, filepath.Base(k.Source))
		}
		w.Flush()
	}

	for _, name := range report.NoFace {
		fmt.Fprintf(out, "⚠️  No face found in %s\n", name)
	}
	for _, name := range report.Failed {
		fmt.Fprintf(out, "⚠️  Could not read %s\n", name)
	}
}
