package cmd

import (
	"github.com/spf13/cobra"
)

var (
	encodeOutput string
	decodeOutput string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <schematic_file>",
	Short: "Convert a KiCad schematic to TOKN",
	Long: `Parse a KiCad schematic, derive its nets from the wire geometry and
write the TOKN document. Output goes to stdout unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <tokn_file>",
	Short: "Convert a TOKN document to a KiCad schematic",
	Long: `Rebuild a KiCad schematic from a TOKN document. Standard passives use
the Device library; other parts get a generated box symbol with pins placed
where the wires end. Output goes to stdout unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)

	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "output file (default stdout)")
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output file (default stdout)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	text, err := encodeFile(args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd, encodeOutput, text)
}

func runDecode(cmd *cobra.Command, args []string) error {
	text, err := decodeFile(args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd, decodeOutput, text)
}
