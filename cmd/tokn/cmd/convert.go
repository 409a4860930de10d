package cmd

import (
	"fmt"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
	"github.com/MichaelAyles/tokn/pkg/tokn"
)

func analyzeFile(filename string) (*schematic.Schematic, *netlist.Netlist, error) {
	sch, err := schematic.ParseFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing schematic: %w", err)
	}
	nl := netlist.Analyze(sch, cfg.AnalyzeOptions()...)
	logger.Printf("%s: %d components, %d nets (%d power), %d wires",
		filename, len(nl.Components), nl.NetCount(), nl.PowerNetCount(), len(sch.Wires))
	return sch, nl, nil
}

func encodeFile(filename string) (string, error) {
	sch, nl, err := analyzeFile(filename)
	if err != nil {
		return "", err
	}
	return tokn.Encode(sch, nl), nil
}

func decodeFile(filename string) (string, error) {
	doc, err := tokn.ParseFile(filename)
	if err != nil {
		return "", fmt.Errorf("error parsing TOKN: %w", err)
	}
	logger.Printf("%s: %d components, %d nets, %d wires",
		filename, len(doc.Components), len(doc.Nets), len(doc.Wires))
	return tokn.Decode(doc, cfg.DecodeOptions()...), nil
}
