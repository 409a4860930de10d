package tokn

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
)

// decoderLibrary is the library name of synthesized symbols.
const decoderLibrary = "tokn"

// pinFitTolerance bounds the distance between an inferred pin and a
// standard passive symbol's pin for the standard symbol to be used.
const pinFitTolerance = 0.005

type decodeOptions struct {
	generator        string
	generatorVersion string
	paper            string
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

// WithGenerator sets the generator recorded in the document header.
func WithGenerator(name, version string) DecodeOption {
	return func(o *decodeOptions) {
		o.generator = name
		o.generatorVersion = version
	}
}

// WithPaper sets the paper size, e.g. "A4" or "A3".
func WithPaper(size string) DecodeOption {
	return func(o *decodeOptions) {
		o.paper = size
	}
}

type pinKey struct {
	ref, number string
}

// anchor is a power symbol or label position at an unterminated wire end.
type anchor struct {
	net string
	at  schematic.Point
	dir int
}

type decoder struct {
	doc  *Schematic
	opts decodeOptions

	comps     map[string]*Component
	netPoints map[string][]schematic.Point
	netWires  map[string][]Wire
	pinPos    map[pinKey]schematic.Point
	compPins  map[string][]string
	pinSet    map[schematic.PointKey]bool

	junctions []schematic.Point
	powers    []anchor
	labels    []anchor

	// per component, in document order
	symbols []placedSymbol
	libs    []libEntry
}

// placedSymbol ties an instance to the library entry it uses.
type placedSymbol struct {
	libID   string
	libName string
}

// libEntry is one lib_symbols definition.
type libEntry struct {
	passive *passiveSymbol
	generic *genericSymbol
	power   string
}

// Decode synthesizes a KiCad schematic from a TOKN document. Pin positions
// are inferred from wire points, symbols are generated to match them, and
// power symbols and global labels are placed at unterminated wire ends.
// Identical input always gives byte-identical output.
func Decode(doc *Schematic, opts ...DecodeOption) string {
	o := decodeOptions{generator: "tokn_decoder", generatorVersion: "1.0", paper: "A4"}
	for _, opt := range opts {
		opt(&o)
	}

	d := &decoder{doc: doc, opts: o}
	d.index()
	d.inferPins()
	d.findJunctions()
	d.findAnchors()
	d.chooseSymbols()

	w := &docWriter{}
	d.write(w)
	return w.String()
}

func (d *decoder) index() {
	d.comps = make(map[string]*Component)
	for i := range d.doc.Components {
		c := &d.doc.Components[i]
		if _, ok := d.comps[c.Ref]; !ok {
			d.comps[c.Ref] = c
		}
	}

	d.netPoints = make(map[string][]schematic.Point)
	d.netWires = make(map[string][]Wire)
	for _, w := range d.doc.Wires {
		d.netPoints[w.Net] = append(d.netPoints[w.Net], w.Points...)
		d.netWires[w.Net] = append(d.netWires[w.Net], w)
	}
}

// inferPins places every referenced pin at the point of its net closest to
// the component center. Pins on nets without wires get no position.
func (d *decoder) inferPins() {
	d.pinPos = make(map[pinKey]schematic.Point)
	d.compPins = make(map[string][]string)
	d.pinSet = make(map[schematic.PointKey]bool)

	for _, n := range d.doc.Nets {
		points := d.netPoints[n.Name]
		for _, p := range n.Pins {
			c, ok := d.comps[p.Ref]
			if !ok {
				continue
			}
			key := pinKey{p.Ref, p.Number}
			if _, done := d.pinPos[key]; done {
				continue
			}
			center := c.Center()
			best, bestDist, found := schematic.Point{}, math.Inf(1), false
			for _, pt := range points {
				if dist := pt.Dist(center); dist < bestDist {
					best, bestDist, found = pt, dist, true
				}
			}
			if !found {
				continue
			}
			d.pinPos[key] = best
			d.compPins[p.Ref] = append(d.compPins[p.Ref], p.Number)
			d.pinSet[best.KeyPrec(2)] = true
		}
	}

	for ref := range d.compPins {
		schematic.SortPinNumbers(d.compPins[ref])
	}
}

// findJunctions marks points shared by three or more wire points.
func (d *decoder) findJunctions() {
	counts := make(map[schematic.PointKey]int)
	var order []schematic.PointKey
	for _, w := range d.doc.Wires {
		for _, p := range w.Points {
			k := p.KeyPrec(2)
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}
	for _, k := range order {
		if counts[k] >= 3 {
			d.junctions = append(d.junctions, keyPoint(k))
		}
	}
}

// findAnchors collects the unterminated wire ends of power and named
// signal nets.
func (d *decoder) findAnchors() {
	seen := make(map[string]bool)
	for _, n := range d.doc.Nets {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true

		power := IsPowerNet(n.Name)
		if !power && netlist.IsAnonymous(n.Name) {
			continue
		}
		wires := d.netWires[n.Name]
		for _, pt := range d.terminals(wires) {
			a := anchor{net: n.Name, at: pt, dir: wireDirection(wires, pt)}
			if power {
				d.powers = append(d.powers, a)
			} else {
				d.labels = append(d.labels, a)
			}
		}
	}
}

// terminals returns the points used once in wires that are not pins.
func (d *decoder) terminals(wires []Wire) []schematic.Point {
	counts := make(map[schematic.PointKey]int)
	var order []schematic.PointKey
	for _, w := range wires {
		for _, p := range w.Points {
			k := p.KeyPrec(2)
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}
	var pts []schematic.Point
	for _, k := range order {
		if counts[k] == 1 && !d.pinSet[k] {
			pts = append(pts, keyPoint(k))
		}
	}
	return pts
}

func keyPoint(k schematic.PointKey) schematic.Point {
	return schematic.Point{X: float64(k.X) / 100, Y: float64(k.Y) / 100}
}

// wireDirection returns the direction a wire leaves p: 0 right, 90 down,
// 180 left, 270 up. It defaults to 0 when p is not a wire end.
func wireDirection(wires []Wire, p schematic.Point) int {
	for _, w := range wires {
		n := len(w.Points)
		for i, q := range w.Points {
			if !q.Near(p, 0.01) {
				continue
			}
			var other schematic.Point
			switch {
			case n > 1 && i == 0:
				other = w.Points[1]
			case n > 1 && i == n-1:
				other = w.Points[n-2]
			default:
				continue
			}
			dx, dy := other.X-p.X, other.Y-p.Y
			if math.Abs(dx) > math.Abs(dy) {
				if dx > 0 {
					return 0
				}
				return 180
			}
			if dy > 0 {
				return 90
			}
			return 270
		}
	}
	return 0
}

// powerAngle rotates a power symbol to face away from its wire.
func powerAngle(dir int) int {
	switch dir {
	case 0:
		return 90
	case 180:
		return 270
	case 90:
		return 0
	default:
		return 180
	}
}

// chooseSymbols picks a library symbol for every component. Standard
// passives are used when their pins land on the inferred positions;
// everything else gets a generated symbol shared by identical geometry.
func (d *decoder) chooseSymbols() {
	libIndex := make(map[string]bool)
	variants := make(map[string][]*genericSymbol)

	for i := range d.doc.Components {
		c := &d.doc.Components[i]
		if ps := d.passiveFor(c); ps != nil {
			d.symbols = append(d.symbols, placedSymbol{libID: ps.libID})
			if !libIndex[ps.libID] {
				libIndex[ps.libID] = true
				d.libs = append(d.libs, libEntry{passive: ps})
			}
			continue
		}

		code := c.Type.String()
		sym := d.genericFor(c)
		var match *genericSymbol
		for _, v := range variants[code] {
			if v.signature() == sym.signature() {
				match = v
				break
			}
		}
		if match == nil {
			sym.name = decoderLibrary + ":" + code
			if n := len(variants[code]); n > 0 {
				sym.name = code + "_" + strconv.Itoa(n+1)
			}
			variants[code] = append(variants[code], sym)
			d.libs = append(d.libs, libEntry{generic: sym})
			match = sym
		}

		placed := placedSymbol{libID: decoderLibrary + ":" + code}
		if match.name != placed.libID {
			placed.libName = match.name
		}
		d.symbols = append(d.symbols, placed)
	}

	seen := make(map[string]bool)
	for _, a := range d.powers {
		if !seen[a.net] {
			seen[a.net] = true
			d.libs = append(d.libs, libEntry{power: a.net})
		}
	}
}

// passiveFor returns the standard symbol of a passive component if every
// inferred pin agrees with it.
func (d *decoder) passiveFor(c *Component) *passiveSymbol {
	ps := standardPassive(c.Type)
	if ps == nil {
		return nil
	}
	for _, num := range d.compPins[c.Ref] {
		local, ok := ps.pins[num]
		if !ok {
			return nil
		}
		want := schematic.TransformPin(local, c.Center(), c.Angle, schematic.MirrorNone)
		if !want.Near(d.pinPos[pinKey{c.Ref, num}], pinFitTolerance) {
			return nil
		}
	}
	return ps
}

// genericFor builds the rectangular symbol of one component from its
// inferred pins, expressed in symbol-local coordinates.
func (d *decoder) genericFor(c *Component) *genericSymbol {
	sym := &genericSymbol{code: c.Type.String()}
	for _, num := range d.compPins[c.Ref] {
		abs := d.pinPos[pinKey{c.Ref, num}]
		local := schematic.InverseTransformPin(abs, c.Center(), c.Angle, schematic.MirrorNone)
		name, ok := d.doc.PinName(c.Ref, num)
		if !ok || name == "" {
			name = "~"
		}
		sym.pins = append(sym.pins, symbolPin{
			number: num,
			name:   name,
			at:     schematic.Point{X: round4(local.X), Y: round4(local.Y)},
		})
	}

	w, h := c.W, c.H
	if math.Mod(math.Abs(c.Angle), 180) == 90 {
		w, h = h, w
	}
	switch {
	case w > 0 && h > 0:
		sym.halfW, sym.halfH = w/2, h/2
	case len(sym.pins) > 0:
		var mx, my float64
		for _, p := range sym.pins {
			mx = math.Max(mx, math.Abs(p.at.X))
			my = math.Max(my, math.Abs(p.at.Y))
		}
		sym.halfW, sym.halfH = mx+2.54, my+2.54
	default:
		sym.halfW, sym.halfH = 5.08, 5.08
	}
	return sym
}

// IsPowerNet reports whether a net name belongs to the supply and ground
// vocabulary that is drawn with power symbols.
func IsPowerNet(name string) bool {
	switch name {
	case "GND", "GNDA", "GNDD", "GNDPWR", "PGND", "AGND", "DGND",
		"VSS", "VEE", "VCC", "VDD", "VBUS",
		"+5V", "+3V3", "+3.3V", "+5VD", "+12V", "+24V":
		return true
	}
	if strings.HasPrefix(name, "+") {
		return true
	}
	return len(name) > 1 && name[0] == '-' && name[1] >= '0' && name[1] <= '9'
}

// isGround reports whether a power net is drawn with a ground glyph.
func isGround(name string) bool {
	switch name {
	case "PGND", "AGND", "DGND", "VSS":
		return true
	}
	return strings.HasPrefix(name, "GND")
}

func (d *decoder) write(w *docWriter) {
	title := d.doc.Title
	w.line(0, "(kicad_sch")
	w.line(1, "(version 20231120)")
	w.line(1, "(generator %s)", qs(d.opts.generator))
	w.line(1, "(generator_version %s)", qs(d.opts.generatorVersion))
	w.line(1, "(uuid %s)", qs(makeUUID("doc_"+title)))
	w.line(1, "(paper %s)", qs(d.opts.paper))
	w.blank()
	w.line(1, "(title_block")
	w.line(2, "(title %s)", qs(title))
	w.line(1, ")")
	w.blank()

	w.line(1, "(lib_symbols")
	for _, l := range d.libs {
		switch {
		case l.passive != nil:
			l.passive.write(w)
		case l.generic != nil:
			l.generic.write(w)
		default:
			writePowerSymbol(w, l.power)
		}
	}
	w.line(1, ")")
	w.blank()

	for i, j := range d.junctions {
		at := fmtPoint(j)
		w.line(1, "(junction")
		w.line(2, "(at %s)", at)
		w.line(2, "(diameter 0)")
		w.line(2, "(color 0 0 0 0)")
		w.line(2, "(uuid %s)", qs(makeUUID(fmt.Sprintf("junction_%d_%s", i, at))))
		w.line(1, ")")
	}

	for i, wire := range d.doc.Wires {
		for j := 0; j+1 < len(wire.Points); j++ {
			p1, p2 := fmtPoint(wire.Points[j]), fmtPoint(wire.Points[j+1])
			w.line(1, "(wire")
			w.line(2, "(pts")
			w.line(3, "(xy %s) (xy %s)", p1, p2)
			w.line(2, ")")
			w.line(2, "(stroke (width 0) (type default))")
			w.line(2, "(uuid %s)", qs(makeUUID(fmt.Sprintf("wire_%d_%d_%s_%s", i, j, p1, p2))))
			w.line(1, ")")
		}
	}

	for i, l := range d.labels {
		d.writeLabel(w, i, l)
	}

	for i := range d.doc.Components {
		d.writeComponent(w, i)
	}

	for i, p := range d.powers {
		d.writePowerInstance(w, i, p)
	}

	w.line(0, ")")
}

func (d *decoder) writeLabel(w *docWriter, i int, l anchor) {
	angle := (l.dir + 180) % 360
	justify := "left"
	if angle == 180 {
		justify = "right"
	}
	at := fmtPoint(l.at)
	w.line(1, "(global_label %s", qs(l.net))
	w.line(2, "(shape input)")
	w.line(2, "(at %s %d)", at, angle)
	w.line(2, "(effects")
	w.line(3, "(font (size 1.27 1.27))")
	w.line(3, "(justify %s))", justify)
	w.line(2, "(uuid %s)", qs(makeUUID(fmt.Sprintf("label_%d_%s_%s", i, l.net, at))))
	w.line(2, `(property "Intersheetrefs" "${INTERSHEET_REFS}"`)
	w.line(3, "(at %s 0)", at)
	w.line(3, "(effects (font (size 1.27 1.27)) (hide yes)))")
	w.line(1, ")")
}

func (d *decoder) writeComponent(w *docWriter, i int) {
	c := &d.doc.Components[i]
	placed := d.symbols[i]
	x, y := fmtNum(c.X), fmtNum(c.Y)
	at := x + " " + y

	w.line(1, "(symbol")
	if placed.libName != "" {
		w.line(2, "(lib_name %s)", qs(placed.libName))
	}
	w.line(2, "(lib_id %s)", qs(placed.libID))
	w.line(2, "(at %s %d)", at, int(c.Angle))
	w.line(2, "(unit 1)")
	w.line(2, "(exclude_from_sim no)")
	w.line(2, "(in_bom yes)")
	w.line(2, "(on_board yes)")
	w.line(2, "(dnp no)")
	w.line(2, "(uuid %s)", qs(makeUUID(fmt.Sprintf("comp_%d_%s", i, c.Ref))))
	writeProperty(w, 2, "Reference", c.Ref, x+" "+fmtNum(c.Y-5), false)
	writeProperty(w, 2, "Value", c.Value, x+" "+fmtNum(c.Y+5), false)
	writeProperty(w, 2, "Footprint", BackfillFootprint(c), at, true)
	writeProperty(w, 2, "Datasheet", "~", at, true)
	for _, num := range d.compPins[c.Ref] {
		w.line(2, "(pin %s", qs(num))
		w.line(3, "(uuid %s)", qs(makeUUID(fmt.Sprintf("pin_%s_%s", c.Ref, num))))
		w.line(2, ")")
	}
	writeInstances(w, c.Ref)
	w.line(1, ")")
}

func (d *decoder) writePowerInstance(w *docWriter, i int, p anchor) {
	at := fmtPoint(p.at)
	ref := fmt.Sprintf("#PWR%02d", i+1)

	w.line(1, "(symbol")
	w.line(2, "(lib_id %s)", qs("power:"+p.net))
	w.line(2, "(at %s %d)", at, powerAngle(p.dir))
	w.line(2, "(unit 1)")
	w.line(2, "(exclude_from_sim no)")
	w.line(2, "(in_bom yes)")
	w.line(2, "(on_board yes)")
	w.line(2, "(dnp no)")
	w.line(2, "(uuid %s)", qs(makeUUID(fmt.Sprintf("pwr_%d_%s_%s", i, p.net, at))))
	writeProperty(w, 2, "Reference", ref, at, true)
	writeProperty(w, 2, "Value", p.net, at, false)
	writeProperty(w, 2, "Footprint", "", at, true)
	writeProperty(w, 2, "Datasheet", "", at, true)
	w.line(2, `(pin "1"`)
	w.line(3, "(uuid %s)", qs(makeUUID(fmt.Sprintf("pwr_pin_%d_%s", i, p.net))))
	w.line(2, ")")
	writeInstances(w, ref)
	w.line(1, ")")
}

func writeProperty(w *docWriter, depth int, key, value, at string, hidden bool) {
	w.line(depth, "(property %s %s", qs(key), qs(value))
	w.line(depth+1, "(at %s 0)", at)
	if hidden {
		w.line(depth+1, "(effects (font (size 1.27 1.27)) (hide yes)))")
	} else {
		w.line(depth+1, "(effects (font (size 1.27 1.27))))")
	}
}

func writeInstances(w *docWriter, ref string) {
	w.line(2, "(instances")
	w.line(3, `(project ""`)
	w.line(4, `(path ""`)
	w.line(5, "(reference %s)", qs(ref))
	w.line(5, "(unit 1))))")
}

// makeUUID derives a stable identifier from a seed string.
func makeUUID(seed string) string {
	return uuid.NewMD5(uuid.Nil, []byte(seed)).String()
}
