package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/MichaelAyles/tokn/internal/batch"
	"github.com/spf13/cobra"
)

var (
	batchOutDir  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Convert many files concurrently",
	Long: `Convert every input file into --out. Schematics (.kicad_sch) are
encoded to .tokn and TOKN documents (.tokn) are decoded to .kicad_sch.
A failing file is reported and does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "output directory (required)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "j", 0, "parallel conversions (default from config)")
	_ = batchCmd.MarkFlagRequired("out")
}

func runBatch(cmd *cobra.Command, args []string) error {
	workers := cfg.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}
	if err := checkOutputs(batchOutDir, args); err != nil {
		return err
	}
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Printf("converting %d files with %d workers", len(args), workers)
	results, err := batch.Run(ctx, batch.Config{Workers: workers}, args, convertInto(batchOutDir))

	out := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "FAIL %s: %v\n", r.Input, r.Err)
		case r.Output != "":
			fmt.Fprintf(out, "ok   %s -> %s (%s)\n", r.Input, r.Output, r.Duration.Round(time.Millisecond))
		}
	}
	if err != nil {
		return err
	}

	if failed := batch.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d conversions failed", len(failed), len(results))
	}
	return nil
}

// outputPath names the converted file for input. Schematics become .tokn
// and TOKN documents become .kicad_sch.
func outputPath(dir, input string) (string, error) {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)
	switch ext {
	case ".kicad_sch":
		return filepath.Join(dir, base+".tokn"), nil
	case ".tokn":
		return filepath.Join(dir, base+".kicad_sch"), nil
	default:
		return "", fmt.Errorf("unknown file type %q", ext)
	}
}

// checkOutputs rejects inputs that would write the same output file.
// Inputs of unknown type are left for the conversion to report.
func checkOutputs(dir string, inputs []string) error {
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out, err := outputPath(dir, in)
		if err != nil {
			continue
		}
		if prev, dup := seen[out]; dup {
			return fmt.Errorf("%s and %s would both write %s", prev, in, out)
		}
		seen[out] = in
	}
	return nil
}

// convertInto picks the conversion direction from the file extension.
func convertInto(dir string) batch.ConvertFunc {
	return func(_ context.Context, input string) (string, error) {
		output, err := outputPath(dir, input)
		if err != nil {
			return "", err
		}

		var text string
		if filepath.Ext(input) == ".kicad_sch" {
			text, err = encodeFile(input)
		} else {
			text, err = decodeFile(input)
		}
		if err != nil {
			return "", err
		}

		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return "", fmt.Errorf("failed to write output: %w", err)
		}
		return output, nil
	}
}
