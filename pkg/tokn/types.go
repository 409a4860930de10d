// Package tokn implements the TOKN compact schematic notation: a parser for
// the line-oriented text, an encoder from parsed KiCad schematics, and a
// decoder that synthesizes a KiCad schematic back from the notation.
package tokn

import (
	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
)

// Header is the first line of every encoded document.
const Header = "# TOKN v1"

// Component is one row of the components section. W and H are the extents
// of the component's pins, not of a drawn symbol.
type Component struct {
	Ref       string        `json:"ref" yaml:"ref"`
	Type      ComponentType `json:"type" yaml:"type"`
	Value     string        `json:"value" yaml:"value"`
	Footprint string        `json:"fp" yaml:"fp"`
	X         float64       `json:"x" yaml:"x"`
	Y         float64       `json:"y" yaml:"y"`
	W         float64       `json:"w" yaml:"w"`
	H         float64       `json:"h" yaml:"h"`
	Angle     float64       `json:"a" yaml:"a"`
}

// Center returns the component's declared center.
func (c *Component) Center() schematic.Point {
	return schematic.Point{X: c.X, Y: c.Y}
}

// PinEntry names one pin in a pins{REF} table.
type PinEntry struct {
	Number string `json:"num" yaml:"num"`
	Name   string `json:"name" yaml:"name"`
}

// NetPin references REF.NUMBER.
type NetPin struct {
	Ref    string `json:"ref" yaml:"ref"`
	Number string `json:"num" yaml:"num"`
}

func (p NetPin) String() string {
	return p.Ref + "." + p.Number
}

// Net is one row of the nets section.
type Net struct {
	Name string   `json:"name" yaml:"name"`
	Pins []NetPin `json:"pins" yaml:"pins"`
}

// Wire is one row of the wires section.
type Wire struct {
	Net    string            `json:"net" yaml:"net"`
	Points []schematic.Point `json:"pts" yaml:"pts"`
}

// Schematic is a parsed TOKN document.
type Schematic struct {
	Title      string                `json:"title" yaml:"title"`
	Components []Component           `json:"components" yaml:"components"`
	PinTables  map[string][]PinEntry `json:"pins" yaml:"pins"`
	Nets       []Net                 `json:"nets" yaml:"nets"`
	Wires      []Wire                `json:"wires" yaml:"wires"`
}

// Component returns the first component with the given reference, or nil.
func (s *Schematic) Component(ref string) *Component {
	for i := range s.Components {
		if s.Components[i].Ref == ref {
			return &s.Components[i]
		}
	}
	return nil
}

// Net returns the first net with the given name, or nil.
func (s *Schematic) Net(name string) *Net {
	for i := range s.Nets {
		if s.Nets[i].Name == name {
			return &s.Nets[i]
		}
	}
	return nil
}

// PinName returns the documented name of ref.number from the pin tables.
func (s *Schematic) PinName(ref, number string) (string, bool) {
	for _, e := range s.PinTables[ref] {
		if e.Number == number {
			return e.Name, true
		}
	}
	return "", false
}
