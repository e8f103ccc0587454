package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/dashspec-cli/internal/ir"
	"github.com/sells-group/dashspec-cli/internal/loader"
	"github.com/sells-group/dashspec-cli/internal/spec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <spec.yaml>",
	Short: "Summarize a dashboard spec and its data source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := spec.ParseFile(args[0])
		if err != nil {
			return err
		}

		if canonical, _ := cmd.Flags().GetBool("canonical"); canonical {
			out, err := spec.Canonicalize(doc.Raw)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		}

		built := ir.Build(doc.Spec)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Dashboard:\t%s (%s)\n", built.DashboardTitle, built.DashboardID)
		fmt.Fprintf(w, "Version:\t%s\n", built.Version)
		fmt.Fprintf(w, "Data source:\t%s\n", built.DataSourcePath)
		fmt.Fprintf(w, "Pages:\t%d\n", len(built.Pages))
		fmt.Fprintf(w, "Data quality rules:\t%v\n", built.DataQuality != nil)
		for _, page := range built.Pages {
			fmt.Fprintf(w, "  %s:\t%d filter(s), %d metric(s), %d component(s)\n",
				page.ID, len(page.Filters), len(page.Metrics), len(page.Components))
		}
		w.Flush()

		withData, _ := cmd.Flags().GetBool("data")
		if !withData || built.DataSourcePath == "" {
			return nil
		}

		ld := loader.New(loader.DefaultPolicy(), nil)
		meta, err := ld.Metadata(built.DataSourcePath)
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Printf("\nRows: %d\n", meta.RowCount)
		p.Printf("Columns: %d\n", meta.ColumnCount)
		p.Printf("File size: %d bytes\n", meta.FileSize)
		for _, name := range meta.ColumnNames {
			fmt.Printf("  - %s\n", name)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().Bool("data", false, "also read the data file's footer metadata")
	inspectCmd.Flags().Bool("canonical", false, "print the canonicalized spec and exit")
	rootCmd.AddCommand(inspectCmd)
}
