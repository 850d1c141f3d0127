// Package cli implements the imgpyramid command line interface.
package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "imgpyramid",
	Short: "generate multi-resolution image pyramids",
	Long: `imgpyramid builds a multi-resolution pyramid from a single input
image: a configurable number of progressively coarser versions, each
produced by Gaussian smoothing followed by integer-factor downsampling.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
}
