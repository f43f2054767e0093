package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/printwizard/backend/internal/classify"
	"github.com/printwizard/backend/internal/parser"
	"github.com/spf13/cobra"
)

var (
	outputDir     string
	convToolboard bool
	convSource    string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file-or-directory> [more files...]",
	Short: "Convert board definition files to normalized board records",
	Long: `Convert one or more board definition files into normalized JSON board
records. A directory argument is walked for .cfg files. Files without a pin
alias block are skipped and reported, not treated as errors.

Examples:
  boardconv convert boards/
  boardconv convert btt_octopus_v1.1.cfg -o out/
  boardconv convert --toolboard ebb36.cfg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&outputDir, "output", "o", ".",
		"directory for generated board records")
	convertCmd.Flags().BoolVar(&convToolboard, "toolboard", false,
		"treat boards as CAN toolboards")
	convertCmd.Flags().StringVar(&convSource, "source", "",
		"source label recorded on each board")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputs, skipped := collectInputs(args)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	processed := 0
	for _, path := range inputs {
		if err := convertOne(path); err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			skipped++
			continue
		}
		processed++
	}

	fmt.Printf("converted %d board(s), skipped %d\n", processed, skipped)
	if processed == 0 && skipped > 0 {
		return fmt.Errorf("no boards converted")
	}
	return nil
}

// collectInputs expands directory arguments into their .cfg files. Missing
// arguments are counted as skips so a batch run keeps going.
func collectInputs(args []string) (inputs []string, skipped int) {
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", arg, err)
			skipped++
			continue
		}

		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", arg, err)
			skipped++
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".cfg") {
				continue
			}
			inputs = append(inputs, filepath.Join(arg, e.Name()))
		}
	}

	sort.Strings(inputs)
	return inputs, skipped
}

func convertOne(path string) error {
	bf, err := parser.ParseBoardFile(path)
	if err != nil {
		return err
	}

	name := bf.Name
	if name == "" {
		name = parser.BoardNameFromFile(filepath.Base(path))
	}

	record := classify.Board(name, bf.Aliases, classify.Options{
		Toolboard: bf.Toolboard || convToolboard,
		Source:    firstNonEmpty(convSource, bf.Source),
		MCUName:   bf.MCUName,
	})
	if record.ID == "" {
		return fmt.Errorf("board name %q yields an empty identifier", name)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	outPath := filepath.Join(outputDir, record.ID+".json")
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("%s -> %s (%d ports)\n", path, outPath, record.PortCount())
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
