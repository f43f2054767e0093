package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/printwizard/backend/internal/models"
	"github.com/printwizard/backend/internal/parser"
	"github.com/printwizard/backend/internal/resonance"
	"github.com/spf13/cobra"
)

var (
	shaperAxis         string
	shaperMaxSmoothing float64
)

var shaperCmd = &cobra.Command{
	Use:   "shaper <csv-file>",
	Short: "Fit input shapers from resonance measurement data",
	Long: `Fit input shapers from a resonance measurement CSV. Accepts either a
precomputed calibration CSV (freq,psd_x,psd_y,psd_z,psd_xyz) or raw
accelerometer samples (t,accel_x,accel_y,accel_z).

Examples:
  boardconv shaper calibration_data_x.csv
  boardconv shaper --axis x raw_data_x.csv
  boardconv shaper --max-smoothing 0.2 calibration_data_y.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runShaper,
}

func init() {
	rootCmd.AddCommand(shaperCmd)

	shaperCmd.Flags().StringVar(&shaperAxis, "axis", "all",
		"axis to fit (x, y, z or all)")
	shaperCmd.Flags().Float64Var(&shaperMaxSmoothing, "max-smoothing", 0,
		"reject shapers smoother than this (0 disables the limit)")
}

func runShaper(cmd *cobra.Command, args []string) error {
	path := args[0]

	p, err := parser.GetGlobalRegistry().FindParser(path)
	if err != nil {
		return err
	}

	var (
		cd        *resonance.CalibrationData
		parseErrs []*models.ParseError
	)
	switch pp := p.(type) {
	case *parser.CalibrationCSVParser:
		samples, errs, err := pp.Parse(path)
		if err != nil {
			return err
		}
		parseErrs = errs
		cd = resonance.NewCalibrationFromSamples(samples)
	case *parser.AccelCSVParser:
		raw, errs, err := pp.Parse(path)
		if err != nil {
			return err
		}
		parseErrs = errs
		cd = resonance.ProcessAccelData(raw)
		if cd == nil {
			return fmt.Errorf("not enough accelerometer samples in %s", path)
		}
	default:
		return fmt.Errorf("%s is not a resonance data file", path)
	}

	if verbose {
		for _, pe := range parseErrs {
			fmt.Fprintf(os.Stderr, "line %d: %s\n", pe.Line, pe.Reason)
		}
	}

	report, err := resonance.FitShapers(cd, shaperAxis, shaperMaxSmoothing)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}
