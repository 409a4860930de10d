// Package netlist derives electrical nets from schematic wire geometry.
package netlist

import (
	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
)

// PinRef identifies one component pin attached to a net.
type PinRef struct {
	Ref    string `json:"ref" yaml:"ref"`
	Number string `json:"number" yaml:"number"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// String returns "REF.NUMBER".
func (p PinRef) String() string {
	return p.Ref + "." + p.Number
}

// Net represents one electrically connected cluster.
type Net struct {
	Name    string                  `json:"name" yaml:"name"`
	Pins    []PinRef                `json:"pins" yaml:"pins"`
	Wires   []schematic.WireSegment `json:"wires" yaml:"wires"`
	IsPower bool                    `json:"is_power" yaml:"is_power"`
}

// PinRefs returns the pins as "REF.NUMBER" strings.
func (n *Net) PinRefs() []string {
	refs := make([]string, len(n.Pins))
	for i, p := range n.Pins {
		refs[i] = p.String()
	}
	return refs
}

// HasPin reports whether the net carries ref.number.
func (n *Net) HasPin(ref, number string) bool {
	for _, p := range n.Pins {
		if p.Ref == ref && p.Number == number {
			return true
		}
	}
	return false
}

// Netlist is the analysis result. Components excludes power-symbol
// instances.
type Netlist struct {
	Nets       []*Net                        `json:"nets" yaml:"nets"`
	Components []schematic.ComponentInstance `json:"components" yaml:"components"`
}

// Net returns the net with the given name, or nil.
func (nl *Netlist) Net(name string) *Net {
	for _, n := range nl.Nets {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NetOf returns the net carrying ref.number, or nil.
func (nl *Netlist) NetOf(ref, number string) *Net {
	for _, n := range nl.Nets {
		if n.HasPin(ref, number) {
			return n
		}
	}
	return nil
}

// NetCount returns the number of nets.
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// PowerNetCount returns the number of nets named by power symbols.
func (nl *Netlist) PowerNetCount() int {
	count := 0
	for _, n := range nl.Nets {
		if n.IsPower {
			count++
		}
	}
	return count
}
