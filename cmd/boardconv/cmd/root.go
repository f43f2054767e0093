package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "boardconv",
	Short: "3D printer board definition converter",
	Long: `Converts board pin definition files into normalized board records
and fits input shapers from resonance measurement data.

Examples:
  boardconv convert boards/                          # Convert a directory of board files
  boardconv convert btt_octopus_v1.1.cfg             # Convert a single board file
  boardconv shaper calibration_data_x.csv            # Fit input shapers from a CSV`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
