package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/netlist"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var netlistFormat string

var netlistCmd = &cobra.Command{
	Use:   "netlist <schematic_file>",
	Short: "Show the nets derived from a schematic",
	Long: `Group the wires of a KiCad schematic into nets and list the pins on each.

Formats:
  text  - one net per line (default)
  json  - full netlist including wires
  yaml  - same as json, in YAML`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)
	netlistCmd.Flags().StringVarP(&netlistFormat, "format", "f", "text", "output format: text, json or yaml")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	_, nl, err := analyzeFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch netlistFormat {
	case "text":
		printNetlist(out, nl)
		return nil
	case "json":
		data, err := json.MarshalIndent(nl, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode netlist: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(nl); err != nil {
			return fmt.Errorf("failed to encode netlist: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", netlistFormat)
	}
}

func printNetlist(w io.Writer, nl *netlist.Netlist) {
	width := 0
	for _, n := range nl.Nets {
		width = max(width, len(n.Name))
	}
	for _, n := range nl.Nets {
		marker := " "
		if n.IsPower {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-*s  %s\n", marker, width, n.Name, strings.Join(n.PinRefs(), " "))
	}
	fmt.Fprintf(w, "\n%d nets, %d power, %d components\n", nl.NetCount(), nl.PowerNetCount(), len(nl.Components))
}
