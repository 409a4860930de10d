package netlist

import (
	"fmt"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
)

// DefaultTolerance is the distance in millimeters under which two points
// are considered connected.
const DefaultTolerance = 0.01

type options struct {
	tolerance float64
}

// Option configures Analyze.
type Option func(*options)

// WithTolerance sets the point matching tolerance. Non-positive values are
// ignored.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// pinSite is a component pin at an absolute position.
type pinSite struct {
	pos   schematic.Point
	pin   PinRef
	power bool   // owner is a power symbol
	value string // owner's value, names the net when power is set
}

// analysis holds the state of one Analyze call.
type analysis struct {
	sch       *schematic.Schematic
	tolerance float64
	sites     []pinSite
	anonymous int
}

// Analyze builds the netlist of sch. Wire segments are grouped by shared
// points, then named by labels or power symbols touching the group.
func Analyze(sch *schematic.Schematic, opts ...Option) *Netlist {
	o := options{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	a := &analysis{sch: sch, tolerance: o.tolerance}
	a.collectPins()

	var nets []*Net
	for _, group := range ConnectedSegments(sch.Wires, o.tolerance) {
		if net := a.buildNet(group); net != nil {
			nets = append(nets, net)
		}
	}

	nl := &Netlist{Nets: mergeByName(nets)}
	sortNets(nl.Nets)

	for _, c := range sch.Components {
		if !sch.IsPowerSymbol(&c) {
			nl.Components = append(nl.Components, c)
		}
	}

	return nl
}

// ConnectedSegments groups wire indices into connected clusters. Segments
// sharing a point at schematic.KeyPrecision are joined first, then every
// pair of points is compared within tol to absorb floating point drift.
// Clusters are ordered by their lowest segment index.
func ConnectedSegments(wires []schematic.WireSegment, tol float64) [][]int {
	uf := newUnionFind(len(wires))

	index := make(map[schematic.PointKey]int)
	for i, w := range wires {
		for _, p := range w.Points {
			if p.IsNaN() {
				continue
			}
			k := p.Key()
			if first, ok := index[k]; ok {
				uf.union(first, i)
			} else {
				index[k] = i
			}
		}
	}

	for i := range wires {
		for j := i + 1; j < len(wires); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if touches(wires[i], wires[j], tol) {
				uf.union(i, j)
			}
		}
	}

	return uf.groups()
}

func touches(a, b schematic.WireSegment, tol float64) bool {
	for _, p := range a.Points {
		for _, q := range b.Points {
			if p.Near(q, tol) {
				return true
			}
		}
	}
	return false
}

// collectPins lists every resolved pin in document order, pins of an
// instance in numeric order.
func (a *analysis) collectPins() {
	for i := range a.sch.Components {
		c := &a.sch.Components[i]
		sym := a.sch.SymbolFor(c)
		power := sym != nil && sym.IsPower
		for _, num := range c.SortedPinNumbers() {
			var name string
			if sym != nil {
				if p, ok := sym.PinByNumber(num); ok {
					name = p.Name
				}
			}
			a.sites = append(a.sites, pinSite{
				pos:   c.Pins[num],
				pin:   PinRef{Ref: c.Reference, Number: num, Name: name},
				power: power,
				value: c.Value,
			})
		}
	}
}

// buildNet attaches pins and labels to a cluster. It returns nil for a
// cluster with no remaining connectable pins.
func (a *analysis) buildNet(group []int) *Net {
	var points []schematic.Point
	seen := make(map[schematic.PointKey]bool)
	for _, idx := range group {
		for _, p := range a.sch.Wires[idx].Points {
			if k := p.Key(); !seen[k] {
				seen[k] = true
				points = append(points, p)
			}
		}
	}

	var (
		name     string
		named    bool
		isPower  bool
		attached []pinSite
	)
	for _, p := range points {
		for _, s := range a.sites {
			if p.Near(s.pos, a.tolerance) {
				attached = append(attached, s)
			}
		}
		if named {
			continue
		}
		for _, l := range a.sch.Labels {
			if p.Near(l.Position(), a.tolerance) {
				name, named = l.Name, true
				break
			}
		}
	}

	// A power symbol on the cluster overrides any label
	for _, s := range attached {
		if s.power {
			name, named, isPower = s.value, true, true
			break
		}
	}

	var pins []PinRef
	dup := make(map[PinRef]bool)
	for _, s := range attached {
		if s.power || dup[s.pin] {
			continue
		}
		dup[s.pin] = true
		pins = append(pins, s.pin)
	}
	if len(pins) == 0 {
		return nil
	}

	if !named {
		a.anonymous++
		name = fmt.Sprintf("N%d", a.anonymous)
	}

	wires := make([]schematic.WireSegment, 0, len(group))
	for _, idx := range group {
		wires = append(wires, a.sch.Wires[idx])
	}

	return &Net{Name: name, Pins: pins, Wires: wires, IsPower: isPower}
}

// mergeByName folds nets sharing a name into the first occurrence.
func mergeByName(nets []*Net) []*Net {
	byName := make(map[string]*Net)
	var out []*Net
	for _, n := range nets {
		existing, ok := byName[n.Name]
		if !ok {
			byName[n.Name] = n
			out = append(out, n)
			continue
		}
		for _, p := range n.Pins {
			if !existing.HasPinRef(p) {
				existing.Pins = append(existing.Pins, p)
			}
		}
		existing.Wires = append(existing.Wires, n.Wires...)
		existing.IsPower = existing.IsPower || n.IsPower
	}
	return out
}

// HasPinRef reports whether the net already lists p.
func (n *Net) HasPinRef(p PinRef) bool {
	for _, q := range n.Pins {
		if q == p {
			return true
		}
	}
	return false
}
