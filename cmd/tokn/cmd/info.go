package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <schematic_file> [component]",
	Short: "Show schematic information",
	Long: `Display information about a KiCad schematic file.

Without component argument: shows schematic summary
With component argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	sch, nl, err := analyzeFile(filename)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) >= 2 {
		return showComponentDetails(out, sch, nl, args[1])
	}

	showSchemSummary(out, sch, nl, filename)
	return nil
}

func showSchemSummary(w io.Writer, sch *schematic.Schematic, nl *netlist.Netlist, filename string) {
	fmt.Fprintf(w, "Schematic: %s\n", filename)
	if sch.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", sch.Title)
	}
	fmt.Fprintf(w, "Version: %d\n", sch.Version)
	fmt.Fprintf(w, "Generator: %s\n", sch.Generator)
	fmt.Fprintln(w)

	// Statistics
	fmt.Fprintln(w, "Statistics:")
	fmt.Fprintf(w, "  Components: %d\n", len(nl.Components))
	fmt.Fprintf(w, "  Power symbols: %d\n", len(sch.Components)-len(nl.Components))
	fmt.Fprintf(w, "  Library symbols: %d\n", len(sch.LibrarySymbols))
	fmt.Fprintf(w, "  Wires: %d\n", len(sch.Wires))
	fmt.Fprintf(w, "  Junctions: %d\n", len(sch.Junctions))
	fmt.Fprintf(w, "  Labels: %d\n", len(sch.Labels))
	fmt.Fprintf(w, "  Nets: %d (%d power)\n", nl.NetCount(), nl.PowerNetCount())
	fmt.Fprintln(w)

	// Component list
	if len(nl.Components) > 0 {
		fmt.Fprintln(w, "Components:")

		// Group by reference prefix, units of one part listed once
		byPrefix := make(map[string][]string)
		seen := make(map[string]bool)
		for _, c := range nl.Components {
			if c.Reference == "" || seen[c.Reference] {
				continue
			}
			seen[c.Reference] = true
			prefix := getRefPrefix(c.Reference)
			byPrefix[prefix] = append(byPrefix[prefix], c.Reference)
		}

		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		for _, prefix := range prefixes {
			refs := byPrefix[prefix]
			sort.Strings(refs)
			fmt.Fprintf(w, "  %s: %s\n", prefix, strings.Join(refs, ", "))
		}
		fmt.Fprintln(w)
	}

	// Labels
	labels := sch.LabelNames()
	if len(labels) > 0 {
		fmt.Fprintln(w, "Net Labels:")
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
}

func showComponentDetails(w io.Writer, sch *schematic.Schematic, nl *netlist.Netlist, ref string) error {
	var units []*schematic.ComponentInstance
	for i := range sch.Components {
		if sch.Components[i].Reference == ref {
			units = append(units, &sch.Components[i])
		}
	}
	if len(units) == 0 {
		return fmt.Errorf("component '%s' not found", ref)
	}

	first := units[0]
	fmt.Fprintf(w, "Component: %s\n", ref)
	fmt.Fprintf(w, "Library: %s\n", first.LibraryID)
	fmt.Fprintf(w, "Value: %s\n", first.Value)
	if first.Footprint != "" {
		fmt.Fprintf(w, "Footprint: %s\n", first.Footprint)
	}
	if first.DoNotPopulate {
		fmt.Fprintln(w, "Do not populate")
	}

	for _, c := range units {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Unit %d at (%.2f, %.2f)", c.Unit, c.X, c.Y)
		if c.Angle != 0 {
			fmt.Fprintf(w, ", rotated %.1f°", c.Angle)
		}
		if c.Mirror != schematic.MirrorNone {
			fmt.Fprintf(w, ", mirror %s", c.Mirror)
		}
		fmt.Fprintln(w)

		sym := sch.SymbolFor(c)
		for _, num := range c.SortedPinNumbers() {
			name := ""
			if sym != nil {
				if p, ok := sym.PinByNumber(num); ok && p.Name != "~" {
					name = p.Name
				}
			}
			net := "(unconnected)"
			if n := nl.NetOf(ref, num); n != nil {
				net = n.Name
			}
			pos := c.Pins[num]
			fmt.Fprintf(w, "  %-4s %-10s (%.2f, %.2f)  %s\n", num, name, pos.X, pos.Y, net)
		}
	}
	return nil
}

func getRefPrefix(ref string) string {
	// Extract prefix (letters before numbers)
	for i, c := range ref {
		if c >= '0' && c <= '9' {
			return ref[:i]
		}
	}
	return ref
}
