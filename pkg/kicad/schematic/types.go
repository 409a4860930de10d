// Package schematic provides parsing for KiCad schematic files (.kicad_sch)
// into a read-only model with absolute pin positions.
package schematic

import (
	"fmt"
	"sort"
	"strconv"
)

// PinKind is a pin's electrical type as written in the library symbol.
type PinKind string

const (
	PinInput         PinKind = "input"
	PinOutput        PinKind = "output"
	PinBidirectional PinKind = "bidirectional"
	PinTriState      PinKind = "tri_state"
	PinPassive       PinKind = "passive"
	PinFree          PinKind = "free"
	PinUnspecified   PinKind = "unspecified"
	PinPowerIn       PinKind = "power_in"
	PinPowerOut      PinKind = "power_out"
	PinOpenCollector PinKind = "open_collector"
	PinOpenEmitter   PinKind = "open_emitter"
	PinNoConnect     PinKind = "no_connect"
)

// Mirror is the mirror mode of a placed instance.
type Mirror int

const (
	MirrorNone Mirror = iota
	MirrorX
	MirrorY
)

func (m Mirror) String() string {
	switch m {
	case MirrorX:
		return "x"
	case MirrorY:
		return "y"
	default:
		return ""
	}
}

// ParseMirror converts the (mirror x|y) atom. Anything else is MirrorNone.
func ParseMirror(s string) Mirror {
	switch s {
	case "x":
		return MirrorX
	case "y":
		return MirrorY
	default:
		return MirrorNone
	}
}

func (m Mirror) MarshalText() ([]byte, error) {
	if m == MirrorNone {
		return []byte("none"), nil
	}
	return []byte(m.String()), nil
}

func (m *Mirror) UnmarshalText(b []byte) error {
	*m = ParseMirror(string(b))
	return nil
}

// LabelScope distinguishes local, global and hierarchical labels.
type LabelScope int

const (
	ScopeLocal LabelScope = iota
	ScopeGlobal
	ScopeHierarchical
)

func (s LabelScope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeHierarchical:
		return "hierarchical"
	default:
		return "local"
	}
}

func (s LabelScope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LabelScope) UnmarshalText(b []byte) error {
	switch string(b) {
	case "local":
		*s = ScopeLocal
	case "global":
		*s = ScopeGlobal
	case "hierarchical":
		*s = ScopeHierarchical
	default:
		return fmt.Errorf("unknown label scope %q", b)
	}
	return nil
}

// Schematic represents a parsed KiCad schematic file
type Schematic struct {
	Version        int                       `json:"version,omitempty" yaml:"version,omitempty"`
	Generator      string                    `json:"generator,omitempty" yaml:"generator,omitempty"`
	Title          string                    `json:"title" yaml:"title"`
	LibrarySymbols map[string]*LibrarySymbol `json:"library_symbols" yaml:"library_symbols"`
	Components     []ComponentInstance       `json:"components" yaml:"components"`
	Wires          []WireSegment             `json:"wires" yaml:"wires"`
	Junctions      []Junction                `json:"junctions" yaml:"junctions"`
	Labels         []Label                   `json:"labels" yaml:"labels"`
}

// LibrarySymbol represents an embedded library symbol definition
type LibrarySymbol struct {
	ID      string `json:"id" yaml:"id"`
	Pins    []Pin  `json:"pins" yaml:"pins"`
	IsPower bool   `json:"is_power" yaml:"is_power"`
}

// Pin represents a symbol pin in symbol-local coordinates (Y up).
type Pin struct {
	Number    string  `json:"number" yaml:"number"`
	Name      string  `json:"name" yaml:"name"`
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Angle     float64 `json:"angle" yaml:"angle"`
	Length    float64 `json:"length" yaml:"length"`
	Kind      PinKind `json:"kind" yaml:"kind"`
	Unit      int     `json:"unit" yaml:"unit"`             // 0 = shared by all units
	BodyStyle int     `json:"body_style" yaml:"body_style"` // 0 = shared by all styles
}

// Local returns the pin's anchor in symbol coordinates.
func (p Pin) Local() Point {
	return Point{X: p.X, Y: p.Y}
}

// PinByNumber returns the first pin with the given number.
func (s *LibrarySymbol) PinByNumber(number string) (Pin, bool) {
	for _, p := range s.Pins {
		if p.Number == number {
			return p, true
		}
	}
	return Pin{}, false
}

// ComponentInstance represents a symbol placed on the schematic
type ComponentInstance struct {
	LibraryID     string           `json:"lib_id" yaml:"lib_id"`
	LibName       string           `json:"lib_name,omitempty" yaml:"lib_name,omitempty"`
	Reference     string           `json:"reference" yaml:"reference"`
	Value         string           `json:"value" yaml:"value"`
	Footprint     string           `json:"footprint" yaml:"footprint"`
	X             float64          `json:"x" yaml:"x"`
	Y             float64          `json:"y" yaml:"y"`
	Angle         float64          `json:"angle" yaml:"angle"`
	Mirror        Mirror           `json:"mirror" yaml:"mirror"`
	Unit          int              `json:"unit" yaml:"unit"`
	DoNotPopulate bool             `json:"dnp" yaml:"dnp"`
	ID            string           `json:"uuid" yaml:"uuid"`
	Pins          map[string]Point `json:"pins" yaml:"pins"` // pin number -> absolute position
}

// Position returns the instance origin.
func (c *ComponentInstance) Position() Point {
	return Point{X: c.X, Y: c.Y}
}

// SortedPinNumbers returns the instance's pin numbers, numeric ones first in
// numeric order, then the rest lexically.
func (c *ComponentInstance) SortedPinNumbers() []string {
	nums := make([]string, 0, len(c.Pins))
	for n := range c.Pins {
		nums = append(nums, n)
	}
	SortPinNumbers(nums)
	return nums
}

// SortPinNumbers orders pin numbers numerically where possible.
func SortPinNumbers(nums []string) {
	sort.SliceStable(nums, func(i, j int) bool {
		a, errA := strconv.Atoi(nums[i])
		b, errB := strconv.Atoi(nums[j])
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return nums[i] < nums[j]
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return nums[i] < nums[j]
		}
	})
}

// WireSegment represents a wire polyline
type WireSegment struct {
	Points []Point `json:"points" yaml:"points"`
	ID     string  `json:"uuid" yaml:"uuid"`
}

// Junction represents a wire junction
type Junction struct {
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
	ID string  `json:"uuid" yaml:"uuid"`
}

// Label represents a net label of any scope
type Label struct {
	Name  string     `json:"name" yaml:"name"`
	X     float64    `json:"x" yaml:"x"`
	Y     float64    `json:"y" yaml:"y"`
	Angle float64    `json:"angle" yaml:"angle"`
	Scope LabelScope `json:"scope" yaml:"scope"`
	ID    string     `json:"uuid" yaml:"uuid"`
}

// Position returns the label anchor.
func (l Label) Position() Point {
	return Point{X: l.X, Y: l.Y}
}

// SymbolFor resolves the library symbol of an instance, trying lib_name
// before lib_id. It returns nil when neither resolves.
func (s *Schematic) SymbolFor(c *ComponentInstance) *LibrarySymbol {
	if c.LibName != "" {
		if sym, ok := s.LibrarySymbols[c.LibName]; ok {
			return sym
		}
	}
	return s.LibrarySymbols[c.LibraryID]
}

// IsPowerSymbol reports whether the instance only names a net.
func (s *Schematic) IsPowerSymbol(c *ComponentInstance) bool {
	sym := s.SymbolFor(c)
	return sym != nil && sym.IsPower
}

// Component returns the first instance with the given reference designator
func (s *Schematic) Component(ref string) *ComponentInstance {
	for i := range s.Components {
		if s.Components[i].Reference == ref {
			return &s.Components[i]
		}
	}
	return nil
}

// References returns all non-empty reference designators in document order
func (s *Schematic) References() []string {
	var refs []string
	for _, c := range s.Components {
		if c.Reference != "" {
			refs = append(refs, c.Reference)
		}
	}
	return refs
}

// LabelNames returns the distinct label names in document order
func (s *Schematic) LabelNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range s.Labels {
		if !seen[l.Name] {
			seen[l.Name] = true
			names = append(names, l.Name)
		}
	}
	return names
}

// BoundingBox calculates the bounding box of all elements in the schematic
func (s *Schematic) BoundingBox() BoundingBox {
	bbox := NewBoundingBox()

	for _, wire := range s.Wires {
		for _, pt := range wire.Points {
			bbox.Expand(pt)
		}
	}

	for i := range s.Components {
		c := &s.Components[i]
		bbox.Expand(c.Position())
		for _, pt := range c.Pins {
			bbox.Expand(pt)
		}
	}

	for _, l := range s.Labels {
		bbox.Expand(l.Position())
	}

	for _, j := range s.Junctions {
		bbox.Expand(Point{X: j.X, Y: j.Y})
	}

	return bbox
}
