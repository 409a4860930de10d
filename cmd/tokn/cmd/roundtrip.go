package cmd

import (
	"fmt"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
	"github.com/MichaelAyles/tokn/pkg/tokn"
	"github.com/spf13/cobra"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <schematic_file>",
	Short: "Check that encoding is stable across a decode",
	Long: `Encode a schematic to TOKN, decode the result, encode the decoded
schematic again and compare the two TOKN documents. Reports the first line
that differs and exits non-zero when they are not identical.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoundtrip,
}

func init() {
	rootCmd.AddCommand(roundtripCmd)
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	first, err := encodeFile(args[0])
	if err != nil {
		return err
	}

	second, err := reencode(first)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if first == second {
		fmt.Fprintf(out, "%s: stable (%d lines)\n", args[0], strings.Count(first, "\n"))
		return nil
	}

	line, a, b := firstDifference(first, second)
	fmt.Fprintf(out, "%s: line %d differs\n  first:  %s\n  second: %s\n", args[0], line, a, b)
	return fmt.Errorf("round trip of %s is not stable", args[0])
}

// reencode decodes a TOKN document to a schematic and encodes that again.
func reencode(text string) (string, error) {
	doc, err := tokn.Parse(text)
	if err != nil {
		return "", fmt.Errorf("error parsing TOKN: %w", err)
	}
	sch, err := schematic.ParseString(tokn.Decode(doc, cfg.DecodeOptions()...))
	if err != nil {
		return "", fmt.Errorf("decoded schematic does not parse: %w", err)
	}
	return tokn.Encode(sch, netlist.Analyze(sch, cfg.AnalyzeOptions()...)), nil
}

func firstDifference(a, b string) (int, string, string) {
	la := strings.Split(a, "\n")
	lb := strings.Split(b, "\n")
	for i := 0; i < max(len(la), len(lb)); i++ {
		var x, y string
		if i < len(la) {
			x = la[i]
		}
		if i < len(lb) {
			y = lb[i]
		}
		if x != y {
			return i + 1, x, y
		}
	}
	return 0, "", ""
}
