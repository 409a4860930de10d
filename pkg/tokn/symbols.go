package tokn

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
)

// docWriter accumulates indented s-expression lines.
type docWriter struct {
	b strings.Builder
}

func (w *docWriter) line(depth int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", depth))
	if len(args) == 0 {
		w.b.WriteString(format)
	} else {
		fmt.Fprintf(&w.b, format, args...)
	}
	w.b.WriteByte('\n')
}

func (w *docWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *docWriter) String() string {
	return w.b.String()
}

// qs quotes an s-expression string atom.
func qs(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// fmtNum prints v with at most 4 decimals and no trailing zeros.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(round4(v), 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

func fmtPoint(p schematic.Point) string {
	return fmtNum(p.X) + " " + fmtNum(p.Y)
}

// passiveSymbol is a fixed two-pin symbol from the Device library.
type passiveSymbol struct {
	libID string
	pins  map[string]schematic.Point
	write func(w *docWriter)
}

var twoPinLocal = map[string]schematic.Point{
	"1": {X: 0, Y: 3.81},
	"2": {X: 0, Y: -3.81},
}

var (
	deviceR  = &passiveSymbol{libID: "Device:R", pins: twoPinLocal, write: writeResistor}
	deviceC  = &passiveSymbol{libID: "Device:C", pins: twoPinLocal, write: writeCapacitor}
	deviceCP = &passiveSymbol{libID: "Device:C_Polarized", pins: twoPinLocal, write: writePolarizedCapacitor}
)

func standardPassive(t ComponentType) *passiveSymbol {
	switch t.Kind() {
	case KindResistor:
		return deviceR
	case KindCapacitor:
		return deviceC
	case KindPolarizedCapacitor:
		return deviceCP
	}
	return nil
}

func writeSymbolFlags(w *docWriter) {
	w.line(3, "(exclude_from_sim no)")
	w.line(3, "(in_bom yes)")
	w.line(3, "(on_board yes)")
}

func writeLibProperty(w *docWriter, key, value, at, effects string) {
	w.line(3, "(property %s %s", qs(key), qs(value))
	w.line(4, "(at %s)", at)
	w.line(4, "(effects (font (size 1.27 1.27))%s))", effects)
}

func writeTwoPins(w *docWriter, length string) {
	for _, p := range []struct{ at, num string }{{"0 3.81 270", "1"}, {"0 -3.81 90", "2"}} {
		w.line(4, "(pin passive line")
		w.line(5, "(at %s)", p.at)
		w.line(5, "(length %s)", length)
		w.line(5, `(name "~" (effects (font (size 1.27 1.27))))`)
		w.line(5, "(number %s (effects (font (size 1.27 1.27)))))", qs(p.num))
	}
}

func writeResistor(w *docWriter) {
	w.line(2, `(symbol "Device:R"`)
	w.line(3, "(pin_numbers (hide yes))")
	w.line(3, "(pin_names (offset 0))")
	writeSymbolFlags(w)
	writeLibProperty(w, "Reference", "R", "2.032 0 90", "")
	writeLibProperty(w, "Value", "R", "0 0 90", "")
	writeLibProperty(w, "Footprint", "", "-1.778 0 90", " (hide yes)")
	writeLibProperty(w, "Datasheet", "~", "0 0 0", " (hide yes)")
	w.line(3, `(symbol "R_0_1"`)
	w.line(4, "(rectangle")
	w.line(5, "(start -1.016 -2.54)")
	w.line(5, "(end 1.016 2.54)")
	w.line(5, "(stroke (width 0.254) (type default))")
	w.line(5, "(fill (type none))))")
	w.line(3, `(symbol "R_1_1"`)
	writeTwoPins(w, "1.27")
	w.line(3, ")")
	w.line(2, ")")
}

func writeCapacitor(w *docWriter) {
	w.line(2, `(symbol "Device:C"`)
	w.line(3, "(pin_numbers (hide yes))")
	w.line(3, "(pin_names (offset 0.254))")
	writeSymbolFlags(w)
	writeLibProperty(w, "Reference", "C", "0.635 2.54 0", " (justify left)")
	writeLibProperty(w, "Value", "C", "0.635 -2.54 0", " (justify left)")
	writeLibProperty(w, "Footprint", "", "0.9652 -3.81 0", " (hide yes)")
	writeLibProperty(w, "Datasheet", "~", "0 0 0", " (hide yes)")
	w.line(3, `(symbol "C_0_1"`)
	for _, y := range []string{"0.762", "-0.762"} {
		w.line(4, "(polyline")
		w.line(5, "(pts (xy -2.032 %s) (xy 2.032 %s))", y, y)
		w.line(5, "(stroke (width 0.508) (type default))")
		w.line(5, "(fill (type none)))")
	}
	w.line(3, ")")
	w.line(3, `(symbol "C_1_1"`)
	writeTwoPins(w, "2.794")
	w.line(3, ")")
	w.line(2, ")")
}

func writePolarizedCapacitor(w *docWriter) {
	w.line(2, `(symbol "Device:C_Polarized"`)
	w.line(3, "(pin_numbers (hide yes))")
	w.line(3, "(pin_names (offset 0.254))")
	writeSymbolFlags(w)
	writeLibProperty(w, "Reference", "C", "0.635 2.54 0", " (justify left)")
	writeLibProperty(w, "Value", "C_Polarized", "0.635 -2.54 0", " (justify left)")
	writeLibProperty(w, "Footprint", "", "0.9652 -3.81 0", " (hide yes)")
	writeLibProperty(w, "Datasheet", "~", "0 0 0", " (hide yes)")
	w.line(3, `(symbol "C_Polarized_0_1"`)
	w.line(4, "(rectangle")
	w.line(5, "(start -2.286 0.508)")
	w.line(5, "(end 2.286 1.016)")
	w.line(5, "(stroke (width 0) (type default))")
	w.line(5, "(fill (type none)))")
	w.line(4, "(polyline")
	w.line(5, "(pts (xy -1.778 2.286) (xy -0.762 2.286))")
	w.line(5, "(stroke (width 0) (type default))")
	w.line(5, "(fill (type none)))")
	w.line(4, "(polyline")
	w.line(5, "(pts (xy -1.27 2.794) (xy -1.27 1.778))")
	w.line(5, "(stroke (width 0) (type default))")
	w.line(5, "(fill (type none)))")
	w.line(4, "(rectangle")
	w.line(5, "(start 2.286 -0.508)")
	w.line(5, "(end -2.286 -1.016)")
	w.line(5, "(stroke (width 0) (type default))")
	w.line(5, "(fill (type outline)))")
	w.line(3, ")")
	w.line(3, `(symbol "C_Polarized_1_1"`)
	writeTwoPins(w, "2.794")
	w.line(3, ")")
	w.line(2, ")")
}

// symbolPin is a generated pin in symbol-local coordinates.
type symbolPin struct {
	number string
	name   string
	at     schematic.Point
}

// genericSymbol is a rectangular body with pins at the inferred positions.
type genericSymbol struct {
	name         string // lib_symbols entry name
	code         string
	halfW, halfH float64
	pins         []symbolPin
}

// signature identifies the geometry two instances must share to use the
// same definition.
func (s *genericSymbol) signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s", fmtNum(s.halfW), fmtNum(s.halfH))
	for _, p := range s.pins {
		fmt.Fprintf(&b, "|%s@%s:%s", p.number, fmtPoint(p.at), p.name)
	}
	return b.String()
}

// referencePrefix is U, or IC for common analog part families.
func referencePrefix(code string) string {
	for _, p := range []string{"MAX", "LM", "TL"} {
		if strings.HasPrefix(code, p) {
			return "IC"
		}
	}
	return "U"
}

func (s *genericSymbol) write(w *docWriter) {
	hw, hh := s.halfW, s.halfH
	left, right := -hw+5.08, hw-5.08

	w.line(2, "(symbol %s", qs(s.name))
	writeSymbolFlags(w)
	writeLibProperty(w, "Reference", referencePrefix(s.code), fmtNum(hw+2)+" "+fmtNum(-hh)+" 0", " (justify left)")
	writeLibProperty(w, "Value", s.code, fmtNum(hw+2)+" "+fmtNum(-hh+2.54)+" 0", " (justify left)")
	writeLibProperty(w, "Footprint", "", "0 0 0", " (hide yes)")
	writeLibProperty(w, "Datasheet", "~", "0 0 0", " (hide yes)")

	unit := strings.TrimPrefix(s.name, decoderLibrary+":") + "_1_1"
	w.line(3, "(symbol %s", qs(unit))
	w.line(4, "(rectangle")
	w.line(5, "(start %s %s)", fmtNum(left), fmtNum(-hh))
	w.line(5, "(end %s %s)", fmtNum(right), fmtNum(hh))
	w.line(5, "(stroke (width 0.254) (type default))")
	w.line(5, "(fill (type background)))")

	for _, p := range s.pins {
		var dir int
		var length float64
		switch x, y := p.at.X, p.at.Y; {
		case x < left:
			dir, length = 0, left-x
		case x > right:
			dir, length = 180, x-right
		case y < -hh:
			dir, length = 90, -hh-y
		default:
			dir, length = 270, y-hh
		}
		length = math.Max(math.Abs(length), 2.54)

		w.line(4, "(pin passive line")
		w.line(5, "(at %s %d)", fmtPoint(p.at), dir)
		w.line(5, "(length %s)", fmtNum(length))
		w.line(5, "(name %s (effects (font (size 1.27 1.27))))", qs(p.name))
		w.line(5, "(number %s (effects (font (size 1.27 1.27)))))", qs(p.number))
	}
	w.line(3, ")")
	w.line(2, ")")
}

// writePowerSymbol defines power:NAME with a ground or rail glyph. The pin
// sits at the symbol origin.
func writePowerSymbol(w *docWriter, name string) {
	ground := isGround(name)
	valueY, pinAngle := "3.556", 90
	if ground {
		valueY, pinAngle = "-3.81", 270
	}

	w.line(2, "(symbol %s", qs("power:"+name))
	w.line(3, "(power)")
	w.line(3, "(pin_numbers (hide yes))")
	w.line(3, "(pin_names (offset 0) (hide yes))")
	writeSymbolFlags(w)
	writeLibProperty(w, "Reference", "#PWR", "0 -6.35 0", " (hide yes)")
	writeLibProperty(w, "Value", name, "0 "+valueY+" 0", "")
	writeLibProperty(w, "Footprint", "", "0 0 0", " (hide yes)")
	writeLibProperty(w, "Datasheet", "", "0 0 0", " (hide yes)")

	w.line(3, "(symbol %s", qs(name+"_0_1"))
	var glyph []string
	if ground {
		glyph = []string{"(xy 0 0) (xy 0 -1.27) (xy 1.27 -1.27) (xy 0 -2.54) (xy -1.27 -1.27) (xy 0 -1.27)"}
	} else {
		glyph = []string{
			"(xy -0.762 1.27) (xy 0 2.54)",
			"(xy 0 2.54) (xy 0.762 1.27)",
			"(xy 0 0) (xy 0 2.54)",
		}
	}
	for _, pts := range glyph {
		w.line(4, "(polyline")
		w.line(5, "(pts %s)", pts)
		w.line(5, "(stroke (width 0) (type default))")
		w.line(5, "(fill (type none)))")
	}
	w.line(3, ")")

	w.line(3, "(symbol %s", qs(name+"_1_1"))
	w.line(4, "(pin power_in line")
	w.line(5, "(at 0 0 %d)", pinAngle)
	w.line(5, "(length 0)")
	w.line(5, `(name "~" (effects (font (size 1.27 1.27))))`)
	w.line(5, `(number "1" (effects (font (size 1.27 1.27))))))`)
	w.line(2, ")")
}
