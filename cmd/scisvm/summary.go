package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scisvm/dataset"
)

func summaryCommand() *cobra.Command {
	var inputFile string
	var asJSON bool

	var cmd = &cobra.Command{
		Use:   "summary -d data.csv",
		Short: "Shows row and column counts, inferred column types and missing values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.ReadCSVFile(inputFile)
			if err != nil {
				return err
			}
			summary := dataset.Summarize(ds)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "data", "d", "", "CSV file with a header row")
	cmd.Flags().BoolVarP(&asJSON, "json", "", false, "print the summary as JSON")

	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func printSummary(w io.Writer, s dataset.Summary) {
	fmt.Fprintln(w, cyan(fmt.Sprintf("%s: %d rows, %d columns", s.Name, s.Rows, len(s.Columns))))
	fmt.Fprintf(w, "  %-20s %-12s %8s %8s\n", "column", "type", "missing", "unique")
	for _, c := range s.Columns {
		missing := fmt.Sprintf("%8d", c.Missing)
		if c.Missing > 0 {
			missing = yellow(missing)
		}
		fmt.Fprintf(w, "  %-20s %-12s %s %8d\n", c.Name, c.Type, missing, c.Unique)
	}
}
