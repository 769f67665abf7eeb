// Command scisvm preprocesses CSV datasets, trains SVM classifiers and runs
// predictions with saved model bundles.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scisvm/pkg/log"
)

var logLevel string
var logFormat string

func main() {
	root := &cobra.Command{
		Use:               "scisvm",
		Short:             "SVM preprocessing, training and evaluation",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	root.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "logging level: debug, info, warn or error")
	root.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "logging format: pretty or json")

	root.AddCommand(trainCommand())
	root.AddCommand(predictCommand())
	root.AddCommand(summaryCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	return log.Setup(logLevel, logFormat, os.Stderr)
}
