package cmd

import (
	"fmt"
	"io"

	"github.com/MichaelAyles/tokn/pkg/tokn/validate"
	"github.com/spf13/cobra"
)

var validateRoundTrip bool

var validateCmd = &cobra.Command{
	Use:   "validate <tokn_file>...",
	Short: "Check TOKN documents and score them",
	Long: `Check each TOKN document for syntax, references between sections,
unconnected IC power pins and missing supply parts, and print a score
between 0 and 1. With --roundtrip the document is also decoded and the
resulting schematic analyzed.

Exits non-zero when any document is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateRoundTrip, "roundtrip", false, "also decode and re-analyze (default from config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	roundTrip := cfg.RoundTrip
	if cmd.Flags().Changed("roundtrip") {
		roundTrip = validateRoundTrip
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, filename := range args {
		r, err := validate.ValidateFile(filename,
			validate.WithRoundTrip(roundTrip),
			validate.WithTolerance(cfg.Tolerance))
		if err != nil {
			return err
		}
		if !r.Valid {
			invalid++
		}
		printValidation(out, filename, r)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d documents invalid", invalid, len(args))
	}
	return nil
}

func printValidation(w io.Writer, filename string, r *validate.Result) {
	status := "valid"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "%s: %s, score %.2f (%d components, %d nets, %d wires, %d pin tables)\n",
		filename, status, r.Score(), r.ComponentCount, r.NetCount, r.WireCount, r.PinSectionCount)

	for _, group := range []struct {
		label string
		items []string
	}{
		{"syntax", r.SyntaxErrors},
		{"error", r.SemanticErrors},
		{"warning", r.SemanticWarnings},
		{"incomplete", r.CompletenessWarnings},
		{"roundtrip", r.RoundTripErrors},
	} {
		for _, msg := range group.items {
			fmt.Fprintf(w, "  %s: %s\n", group.label, msg)
		}
	}
}
