// Command gosod fits and runs the sampling-based outlier detector against
// tabular (CSV) and network (pcap) data.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "gosod",
	Short:         "Sampling-based distance outlier detection",
	Long:          "gosod scores data points by their distance to a fixed random sample of the training set. Points far from every sampled reference point are flagged as outliers.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
