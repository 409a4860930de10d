package tokn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
)

// encoded is one component row with the pins of every unit merged.
type encoded struct {
	inst  schematic.ComponentInstance
	pins  map[string]schematic.Point
	names map[string]string
}

// Encode serializes a schematic and its netlist. The output is fully
// determined by its inputs.
func Encode(sch *schematic.Schematic, nl *netlist.Netlist) string {
	var b strings.Builder
	b.WriteString(Header + "\n")
	if sch.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", sch.Title)
	}

	comps := mergeUnits(sch, nl.Components)

	if len(comps) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "components[%d]{ref,type,value,fp,x,y,w,h,a}:\n", len(comps))
		for _, c := range comps {
			writeComponentRow(&b, c)
		}
		for _, c := range comps {
			writePinTable(&b, c)
		}
	}

	if len(nl.Nets) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "nets[%d]{name,pins}:\n", len(nl.Nets))
		for _, n := range nl.Nets {
			refs := n.PinRefs()
			pins := strings.Join(refs, ",")
			if len(refs) > 1 {
				pins = quote(pins)
			} else {
				pins = quoteValue(pins)
			}
			fmt.Fprintf(&b, "  %s,%s\n", quoteValue(n.Name), pins)
		}
	}

	wireCount := 0
	for _, n := range nl.Nets {
		wireCount += len(n.Wires)
	}
	if wireCount > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "wires[%d]{net,pts}:\n", wireCount)
		for _, n := range nl.Nets {
			for _, w := range n.Wires {
				pts := make([]string, len(w.Points))
				for i, p := range w.Points {
					pts[i] = formatCoord(p.X) + " " + formatCoord(p.Y)
				}
				fmt.Fprintf(&b, "  %s,%s\n", quoteValue(n.Name), quote(strings.Join(pts, ",")))
			}
		}
	}

	return b.String()
}

// mergeUnits folds instances sharing a reference into one entry and sorts
// the result by reference.
func mergeUnits(sch *schematic.Schematic, instances []schematic.ComponentInstance) []*encoded {
	byRef := make(map[string]*encoded)
	var comps []*encoded
	for i := range instances {
		inst := &instances[i]
		c, ok := byRef[inst.Reference]
		if !ok {
			c = &encoded{
				inst:  *inst,
				pins:  make(map[string]schematic.Point),
				names: make(map[string]string),
			}
			byRef[inst.Reference] = c
			comps = append(comps, c)
		}
		sym := sch.SymbolFor(inst)
		for num, pos := range inst.Pins {
			if _, seen := c.pins[num]; seen {
				continue
			}
			c.pins[num] = pos
			if sym != nil {
				if pin, ok := sym.PinByNumber(num); ok {
					c.names[num] = pin.Name
				}
			}
		}
	}

	sort.SliceStable(comps, func(i, j int) bool {
		return refLess(comps[i].inst.Reference, comps[j].inst.Reference)
	})
	return comps
}

// refLess orders references by letter prefix, then by their first number.
func refLess(a, b string) bool {
	pa, na := splitRef(a)
	pb, nb := splitRef(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitRef(ref string) (string, int) {
	i := strings.IndexAny(ref, "0123456789")
	if i < 0 {
		return ref, 0
	}
	j := i
	for j < len(ref) && ref[j] >= '0' && ref[j] <= '9' {
		j++
	}
	n, _ := strconv.Atoi(ref[i:j])
	return ref[:i], n
}

func (c *encoded) sortedPins() []string {
	nums := make([]string, 0, len(c.pins))
	for n := range c.pins {
		nums = append(nums, n)
	}
	schematic.SortPinNumbers(nums)
	return nums
}

// placement returns the center and extent of the pin bounding box, or the
// instance origin when the component has no pins.
func (c *encoded) placement() (x, y, w, h float64) {
	if len(c.pins) == 0 {
		return c.inst.X, c.inst.Y, 0, 0
	}
	bb := schematic.NewBoundingBox()
	for _, p := range c.pins {
		bb.Expand(p)
	}
	center := bb.Center()
	return center.X, center.Y, bb.Width(), bb.Height()
}

func writeComponentRow(b *strings.Builder, c *encoded) {
	x, y, w, h := c.placement()
	fmt.Fprintf(b, "  %s,%s,%s,%s,%s,%s,%s,%s,%s\n",
		quoteValue(c.inst.Reference),
		quoteValue(normalizeType(c.inst.LibraryID)),
		quoteValue(c.inst.Value),
		quoteValue(normalizeFootprint(c.inst.Footprint)),
		formatCoord(x), formatCoord(y), formatCoord(w), formatCoord(h),
		formatAngle(c.inst.Angle),
	)
}

// writePinTable writes the documented pin names of generic components.
// Passives and parts whose pins carry no names get no table.
func writePinTable(b *strings.Builder, c *encoded) {
	if ParseComponentType(normalizeType(c.inst.LibraryID)).IsPassive() {
		return
	}
	var rows []PinEntry
	for _, num := range c.sortedPins() {
		name := c.names[num]
		if name == "" || name == "~" || name == num {
			continue
		}
		rows = append(rows, PinEntry{Number: num, Name: name})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "pins{%s}[%d]:\n", c.inst.Reference, len(rows))
	for _, r := range rows {
		fmt.Fprintf(b, "  %s,%s\n", quoteValue(r.Number), quoteValue(r.Name))
	}
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

func formatAngle(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	if s == "-0" {
		return "0"
	}
	return s
}
