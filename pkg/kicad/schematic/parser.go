package schematic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/sexp"
	"github.com/MichaelAyles/tokn/pkg/kicad/sexp/kicadsexp"
)

// ErrNotSchematic is returned when the document root is not (kicad_sch ...).
var ErrNotSchematic = errors.New("not a KiCad schematic")

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// ParseString parses a schematic held in memory.
func ParseString(text string) (*Schematic, error) {
	return Parse(strings.NewReader(text))
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty document: %w", ErrNotSchematic)
	}

	return ParseTree(sexps[0])
}

// ParseTree builds the model from an already parsed (kicad_sch ...) tree.
func ParseTree(root kicadsexp.Sexp) (*Schematic, error) {
	if root == nil || root.IsLeaf() {
		return nil, fmt.Errorf("root is not a list: %w", ErrNotSchematic)
	}
	rootName, err := sexp.GetNodeName(root)
	if err != nil || rootName != "kicad_sch" {
		return nil, fmt.Errorf("expected 'kicad_sch', got '%s': %w", rootName, ErrNotSchematic)
	}

	sch := &Schematic{
		LibrarySymbols: make(map[string]*LibrarySymbol),
	}

	if versionNode, found := sexp.FindNode(root, "version"); found {
		sch.Version, _ = sexp.GetInt(versionNode, 1)
	}
	sch.Generator = sexp.GetValue(root, "generator")

	if titleBlockNode, found := sexp.FindNode(root, "title_block"); found {
		sch.Title = sexp.GetValue(titleBlockNode, "title")
	}

	// Library symbols first so instances can resolve their pins
	if libSymbolsNode, found := sexp.FindNode(root, "lib_symbols"); found {
		for _, symNode := range sexp.FindAllNodes(libSymbolsNode, "symbol") {
			if sym, ok := parseLibSymbol(symNode); ok {
				sch.LibrarySymbols[sym.ID] = sym
			}
		}
	}

	for _, symNode := range sexp.FindAllNodes(root, "symbol") {
		if comp, ok := parseComponent(symNode, sch); ok {
			sch.Components = append(sch.Components, comp)
		}
	}

	for _, wireNode := range sexp.FindAllNodes(root, "wire") {
		if wire, ok := parseWire(wireNode); ok {
			sch.Wires = append(sch.Wires, wire)
		}
	}

	for _, juncNode := range sexp.FindAllNodes(root, "junction") {
		if p, _, ok := findAt(juncNode); ok {
			sch.Junctions = append(sch.Junctions, Junction{X: p.X, Y: p.Y, ID: sexp.GetValue(juncNode, "uuid")})
		}
	}

	labelKinds := []struct {
		key   string
		scope LabelScope
	}{
		{"label", ScopeLocal},
		{"global_label", ScopeGlobal},
		{"hierarchical_label", ScopeHierarchical},
	}
	for _, kind := range labelKinds {
		for _, labelNode := range sexp.FindAllNodes(root, kind.key) {
			if label, ok := parseLabel(labelNode, kind.scope); ok {
				sch.Labels = append(sch.Labels, label)
			}
		}
	}

	return sch, nil
}

// parseLibSymbol parses a single library symbol definition. Pins live in
// nested unit sub-symbols; pins placed directly in the symbol are shared.
func parseLibSymbol(node kicadsexp.Sexp) (*LibrarySymbol, bool) {
	id, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, false
	}

	sym := &LibrarySymbol{ID: id}
	_, sym.IsPower = sexp.FindNode(node, "power")

	for _, pn := range sexp.FindAllNodes(node, "pin") {
		if pin, ok := parsePin(pn, 0, 0); ok {
			sym.Pins = append(sym.Pins, pin)
		}
	}

	for _, unitNode := range sexp.FindAllNodes(node, "symbol") {
		name, _ := sexp.GetString(unitNode, 1)
		unit, style := unitStyle(name)
		for _, pn := range sexp.FindAllNodes(unitNode, "pin") {
			if pin, ok := parsePin(pn, unit, style); ok {
				sym.Pins = append(sym.Pins, pin)
			}
		}
	}

	return sym, true
}

// parsePin parses (pin TYPE STYLE (at X Y ANGLE) (length L) (name "N") (number "1"))
func parsePin(node kicadsexp.Sexp, unit, style int) (Pin, bool) {
	p, angle, ok := findAt(node)
	if !ok {
		return Pin{}, false
	}

	pin := Pin{
		X:         p.X,
		Y:         p.Y,
		Angle:     angle,
		Kind:      PinPassive,
		Unit:      unit,
		BodyStyle: style,
	}

	if kind, err := sexp.GetString(node, 1); err == nil {
		pin.Kind = PinKind(kind)
	}
	if lenNode, found := sexp.FindNode(node, "length"); found {
		pin.Length, _ = sexp.GetFloat(lenNode, 1)
	}
	pin.Name = sexp.GetValue(node, "name")
	pin.Number = sexp.GetValue(node, "number")

	return pin, true
}

// parseComponent parses a placed symbol instance. Instances without lib_id
// or position are skipped.
func parseComponent(node kicadsexp.Sexp, sch *Schematic) (ComponentInstance, bool) {
	libID := sexp.GetValue(node, "lib_id")
	if libID == "" {
		return ComponentInstance{}, false
	}

	pos, angle, ok := findAt(node)
	if !ok {
		return ComponentInstance{}, false
	}

	comp := ComponentInstance{
		LibraryID: libID,
		LibName:   sexp.GetValue(node, "lib_name"),
		X:         pos.X,
		Y:         pos.Y,
		Angle:     angle,
		Mirror:    ParseMirror(sexp.GetValue(node, "mirror")),
		Unit:      1,
		ID:        sexp.GetValue(node, "uuid"),
		Pins:      make(map[string]Point),
	}

	if unitNode, found := sexp.FindNode(node, "unit"); found {
		if u, err := sexp.GetInt(unitNode, 1); err == nil {
			comp.Unit = u
		}
	}
	comp.DoNotPopulate = sexp.GetValue(node, "dnp") == "yes"

	props := sexp.GetProperties(node)
	comp.Reference = sexp.PropertyValue(props, "Reference")
	comp.Value = sexp.PropertyValue(props, "Value")
	comp.Footprint = sexp.PropertyValue(props, "Footprint")

	if sym := sch.SymbolFor(&comp); sym != nil {
		for _, pin := range sym.Pins {
			if !pinInUnit(pin, comp.Unit) {
				continue
			}
			comp.Pins[pin.Number] = TransformPin(pin.Local(), pos, angle, comp.Mirror)
		}
	}

	return comp, true
}

// pinInUnit reports whether a library pin belongs to the given unit of the
// default body style.
func pinInUnit(pin Pin, unit int) bool {
	if pin.Unit != 0 && pin.Unit != unit {
		return false
	}
	return pin.BodyStyle <= 1
}

// parseWire parses (wire (pts (xy X Y) ...)). Wires with fewer than two
// points are dropped.
func parseWire(node kicadsexp.Sexp) (WireSegment, bool) {
	ptsNode, found := sexp.FindNode(node, "pts")
	if !found {
		return WireSegment{}, false
	}

	var points []Point
	for _, xy := range sexp.FindAllNodes(ptsNode, "xy") {
		if p, err := getXY(xy); err == nil {
			points = append(points, p)
		}
	}
	if len(points) < 2 {
		return WireSegment{}, false
	}

	return WireSegment{Points: points, ID: sexp.GetValue(node, "uuid")}, true
}

// parseLabel parses (label "NAME" (at X Y A) ...) of any scope
func parseLabel(node kicadsexp.Sexp, scope LabelScope) (Label, bool) {
	name, err := sexp.GetString(node, 1)
	if err != nil {
		return Label{}, false
	}

	p, angle, ok := findAt(node)
	if !ok {
		return Label{}, false
	}

	return Label{
		Name:  name,
		X:     p.X,
		Y:     p.Y,
		Angle: angle,
		Scope: scope,
		ID:    sexp.GetValue(node, "uuid"),
	}, true
}
