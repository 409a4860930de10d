// Package validate checks TOKN documents for syntax, semantic consistency,
// completeness and, optionally, that they decode to a usable KiCad
// schematic. It is meant for scoring generated documents.
package validate

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
	"github.com/MichaelAyles/tokn/pkg/tokn"
)

// Result collects the findings of one validation run.
type Result struct {
	Valid          bool `json:"valid" yaml:"valid"`
	SyntaxValid    bool `json:"syntax_valid" yaml:"syntax_valid"`
	SemanticValid  bool `json:"semantic_valid" yaml:"semantic_valid"`
	Complete       bool `json:"complete" yaml:"complete"`
	RoundTripValid bool `json:"roundtrip_valid" yaml:"roundtrip_valid"`

	SyntaxErrors         []string `json:"syntax_errors,omitempty" yaml:"syntax_errors,omitempty"`
	SemanticErrors       []string `json:"semantic_errors,omitempty" yaml:"semantic_errors,omitempty"`
	SemanticWarnings     []string `json:"semantic_warnings,omitempty" yaml:"semantic_warnings,omitempty"`
	CompletenessWarnings []string `json:"completeness_warnings,omitempty" yaml:"completeness_warnings,omitempty"`
	RoundTripErrors      []string `json:"roundtrip_errors,omitempty" yaml:"roundtrip_errors,omitempty"`

	ComponentCount  int `json:"components" yaml:"components"`
	NetCount        int `json:"nets" yaml:"nets"`
	WireCount       int `json:"wires" yaml:"wires"`
	PinSectionCount int `json:"pin_sections" yaml:"pin_sections"`
}

// Score rates the document between 0 and 1. A document that does not parse
// scores 0; each semantic error costs 0.1, each warning 0.02 and a failed
// round trip 0.2.
func (r *Result) Score() float64 {
	if !r.SyntaxValid {
		return 0
	}
	score := 1.0
	score -= 0.1 * float64(len(r.SemanticErrors))
	score -= 0.02 * float64(len(r.SemanticWarnings))
	score -= 0.02 * float64(len(r.CompletenessWarnings))
	if !r.RoundTripValid {
		score -= 0.2
	}
	return min(max(score, 0), 1)
}

type options struct {
	roundTrip bool
	tolerance float64
}

// Option configures Validate.
type Option func(*options)

// WithRoundTrip enables decoding the document and analyzing the result.
func WithRoundTrip(enabled bool) Option {
	return func(o *options) {
		o.roundTrip = enabled
	}
}

// WithTolerance sets the connectivity tolerance of the round trip check.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// supplyNets are the rail names that count as a power supply.
var supplyNets = map[string]bool{
	"+5V": true, "+3V3": true, "+12V": true, "VCC": true, "VDD": true, "+3.3V": true, "+5VD": true,
}

var powerPinWords = []string{"VCC", "VDD", "GND", "VSS", "VEE"}

// ValidateFile reads and validates a TOKN file.
func ValidateFile(path string, opts ...Option) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Validate(string(data), opts...), nil
}

// Validate runs every check on a TOKN document.
func Validate(text string, opts ...Option) *Result {
	o := options{tolerance: netlist.DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Result{SyntaxValid: true, SemanticValid: true, Complete: true, RoundTripValid: true}

	if !strings.HasPrefix(strings.TrimSpace(text), tokn.Header) {
		r.SyntaxErrors = append(r.SyntaxErrors, "Missing '"+tokn.Header+"' header")
	}
	doc, err := tokn.Parse(text)
	if err != nil {
		r.SyntaxValid = false
		r.SyntaxErrors = append(r.SyntaxErrors, "Parse error: "+err.Error())
		return r
	}

	r.ComponentCount = len(doc.Components)
	r.NetCount = len(doc.Nets)
	r.WireCount = len(doc.Wires)
	r.PinSectionCount = len(doc.PinTables)

	r.checkSemantics(doc)
	r.checkCompleteness(doc)
	if o.roundTrip {
		r.checkRoundTrip(doc, o.tolerance)
	}

	r.SemanticValid = len(r.SemanticErrors) == 0
	r.Complete = len(r.CompletenessWarnings) == 0
	r.Valid = r.SyntaxValid && r.SemanticValid
	return r
}

func isIC(ref string) bool {
	return strings.HasPrefix(ref, "U") || strings.HasPrefix(ref, "IC")
}

func (r *Result) checkSemantics(doc *tokn.Schematic) {
	refs := make(map[string]bool)
	for _, c := range doc.Components {
		refs[c.Ref] = true
	}

	connected := make(map[string]map[string]bool)
	for _, n := range doc.Nets {
		for _, p := range n.Pins {
			if !refs[p.Ref] {
				r.SemanticErrors = append(r.SemanticErrors,
					fmt.Sprintf("Net '%s': References unknown component '%s'", n.Name, p.Ref))
			}
			if isIC(p.Ref) {
				if connected[p.Ref] == nil {
					connected[p.Ref] = make(map[string]bool)
				}
				connected[p.Ref][p.Number] = true
			}
		}
	}

	tables := make([]string, 0, len(doc.PinTables))
	for ref := range doc.PinTables {
		tables = append(tables, ref)
	}
	sort.Strings(tables)
	for _, ref := range tables {
		if !refs[ref] || !isIC(ref) {
			continue
		}
		for _, p := range doc.PinTables[ref] {
			if isPowerPin(p.Name) && !connected[ref][p.Number] {
				r.SemanticWarnings = append(r.SemanticWarnings,
					fmt.Sprintf("IC '%s' pin %s (%s) appears to be power but is unconnected", ref, p.Number, p.Name))
			}
		}
	}

	for _, n := range doc.Nets {
		if len(n.Pins) == 1 && netlist.IsAnonymous(n.Name) {
			r.SemanticWarnings = append(r.SemanticWarnings,
				fmt.Sprintf("Net '%s' has only one connection", n.Name))
		}
	}

	defined := make(map[string]bool)
	for _, n := range doc.Nets {
		defined[n.Name] = true
	}
	reported := make(map[string]bool)
	for _, w := range doc.Wires {
		if !defined[w.Net] && !reported[w.Net] {
			reported[w.Net] = true
			r.SemanticErrors = append(r.SemanticErrors,
				fmt.Sprintf("Wire references undefined net '%s'", w.Net))
		}
	}
}

func isPowerPin(name string) bool {
	upper := strings.ToUpper(name)
	for _, w := range powerPinWords {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}

func (r *Result) checkCompleteness(doc *tokn.Schematic) {
	var ics, caps bool
	for _, c := range doc.Components {
		ics = ics || isIC(c.Ref)
		caps = caps || strings.HasPrefix(c.Ref, "C")
	}

	var supply, ground bool
	for _, n := range doc.Nets {
		supply = supply || supplyNets[n.Name]
		ground = ground || strings.Contains(strings.ToUpper(n.Name), "GND")
	}

	if ics && !caps {
		r.CompletenessWarnings = append(r.CompletenessWarnings, "No capacitors found - ICs typically need decoupling caps")
	}
	if ics && !supply {
		r.CompletenessWarnings = append(r.CompletenessWarnings, "No power supply nets found for ICs")
	}
	if ics && !ground {
		r.CompletenessWarnings = append(r.CompletenessWarnings, "No ground nets found for ICs")
	}

	for _, c := range doc.Components {
		if c.X == 0 && c.Y == 0 {
			r.CompletenessWarnings = append(r.CompletenessWarnings,
				fmt.Sprintf("Component '%s' at origin (0,0) - may be unplaced", c.Ref))
		}
	}
}

// checkRoundTrip decodes the document, parses the KiCad output and checks
// that every component survives analysis.
func (r *Result) checkRoundTrip(doc *tokn.Schematic, tol float64) {
	fail := func(msg string) {
		r.RoundTripValid = false
		r.RoundTripErrors = append(r.RoundTripErrors, msg)
	}

	decoded := tokn.Decode(doc)
	if len(decoded) < 100 {
		fail("Decoded KiCad schematic is too short")
		return
	}
	if !strings.Contains(decoded, "(kicad_sch") {
		fail("Decoded output doesn't look like KiCad schematic")
		return
	}

	sch, err := schematic.ParseString(decoded)
	if err != nil {
		fail("Decoded schematic does not parse: " + err.Error())
		return
	}

	nl := netlist.Analyze(sch, netlist.WithTolerance(tol))
	if got, want := len(nl.Components), len(doc.Components); got != want {
		fail(fmt.Sprintf("Decoded schematic has %d components, want %d", got, want))
	}
}
