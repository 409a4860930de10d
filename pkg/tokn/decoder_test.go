package tokn

import (
	"strings"
	"testing"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
	"github.com/MichaelAyles/tokn/pkg/netlist"
)

// timerDoc is already in encoder order, so one round trip reproduces it.
const timerDoc = `# TOKN v1
title: Timer

components[2]{ref,type,value,fp,x,y,w,h,a}:
  C1,C,100n,0603,130.00,100.00,0.00,7.62,0
  U1,NE555,NE555,DIP-8,100.00,100.00,15.24,7.62,0
pins{U1}[4]:
  1,GND
  2,TRIG
  3,OUT
  8,VCC

nets[4]{name,pins}:
  VCC,U1.8
  GND,"C1.2,U1.1"
  OUT,"C1.1,U1.3"
  TRIG,U1.2

wires[12]{net,pts}:
  VCC,"107.62 96.19,115.00 96.19"
  GND,"92.38 96.19,80.00 96.19"
  GND,"80.00 96.19,80.00 120.00"
  GND,"80.00 120.00,130.00 120.00"
  GND,"130.00 120.00,130.00 103.81"
  GND,"80.00 120.00,80.00 125.00"
  OUT,"107.62 103.81,120.00 103.81"
  OUT,"120.00 103.81,120.00 90.00"
  OUT,"120.00 90.00,130.00 90.00"
  OUT,"130.00 90.00,130.00 96.19"
  OUT,"120.00 90.00,120.00 85.00"
  TRIG,"92.38 103.81,85.00 103.81"
`

func mustParse(t *testing.T, text string) *Schematic {
	t.Helper()
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func decodeToSchematic(t *testing.T, text string) *schematic.Schematic {
	t.Helper()
	sch, err := schematic.ParseString(Decode(mustParse(t, text)))
	if err != nil {
		t.Fatalf("decoded document does not parse: %v", err)
	}
	return sch
}

// roundTrip decodes a TOKN document, re-parses the KiCad output and
// encodes it again.
func roundTrip(t *testing.T, text string) string {
	t.Helper()
	sch := decodeToSchematic(t, text)
	return Encode(sch, netlist.Analyze(sch))
}

func TestDecodeDeterministic(t *testing.T) {
	for _, text := range []string{dividerDoc, timerDoc} {
		a := Decode(mustParse(t, text))
		b := Decode(mustParse(t, text))
		if a != b {
			t.Fatal("decoding the same document twice gave different output")
		}
	}
}

func TestDecodeDivider(t *testing.T) {
	sch := decodeToSchematic(t, dividerDoc)

	if sch.Title != "Divider" || sch.Generator != "tokn_decoder" {
		t.Errorf("header: title %q generator %q", sch.Title, sch.Generator)
	}

	if len(sch.Junctions) != 1 || sch.Junctions[0].X != 80 || sch.Junctions[0].Y != 100 {
		t.Errorf("junctions = %+v, want one at 80,100", sch.Junctions)
	}

	if len(sch.Labels) != 1 {
		t.Fatalf("labels = %+v, want OUT only", sch.Labels)
	}
	l := sch.Labels[0]
	if l.Name != "OUT" || l.X != 90 || l.Y != 100 || l.Angle != 0 || l.Scope != schematic.ScopeGlobal {
		t.Errorf("label = %+v", l)
	}

	if len(sch.Wires) != 5 {
		t.Errorf("got %d wires, want 5", len(sch.Wires))
	}

	powers := map[string]schematic.ComponentInstance{}
	for _, c := range sch.Components {
		if sch.IsPowerSymbol(&c) {
			powers[c.Value] = c
		}
	}
	tests := []struct {
		name  string
		x, y  float64
		angle float64
	}{
		{"+5V", 80, 80, 0},
		{"GND", 80, 120, 180},
	}
	for _, tt := range tests {
		p, ok := powers[tt.name]
		if !ok {
			t.Errorf("no %s power symbol", tt.name)
			continue
		}
		if p.X != tt.x || p.Y != tt.y || p.Angle != tt.angle {
			t.Errorf("%s at %v,%v angle %v, want %v,%v angle %v", tt.name, p.X, p.Y, p.Angle, tt.x, tt.y, tt.angle)
		}
	}

	r1 := sch.Component("R1")
	if r1 == nil {
		t.Fatal("R1 missing")
	}
	if r1.LibraryID != "Device:R" || r1.Footprint != "Resistor_SMD:R_0603_1608Metric" {
		t.Errorf("R1 = %s %s", r1.LibraryID, r1.Footprint)
	}
	if !r1.Pins["1"].Near(schematic.Point{X: 80, Y: 86.19}, 0.001) {
		t.Errorf("R1.1 at %v", r1.Pins["1"])
	}
}

func TestRoundTripDivider(t *testing.T) {
	first := roundTrip(t, dividerDoc)

	want := `# TOKN v1
title: Divider

components[2]{ref,type,value,fp,x,y,w,h,a}:
  R1,R,10k,0603,80.00,90.00,0.00,7.62,0
  R2,R,4k7,0603,80.00,110.00,0.00,7.62,0

nets[3]{name,pins}:
  +5V,R1.1
  GND,R2.2
  OUT,"R1.2,R2.1"

wires[5]{net,pts}:
  +5V,"80.00 86.19,80.00 80.00"
  GND,"80.00 113.81,80.00 120.00"
  OUT,"80.00 93.81,80.00 100.00"
  OUT,"80.00 100.00,80.00 106.19"
  OUT,"80.00 100.00,90.00 100.00"
`
	if first != want {
		t.Fatalf("first round trip =\n%s\nwant\n%s", first, want)
	}
	if second := roundTrip(t, first); second != first {
		t.Errorf("second round trip changed the text:\n%s", second)
	}
}

func TestRoundTripGeneric(t *testing.T) {
	first := roundTrip(t, timerDoc)
	if first != timerDoc {
		t.Fatalf("round trip =\n%s\nwant\n%s", first, timerDoc)
	}
}

func TestDecodeGenericSymbol(t *testing.T) {
	sch := decodeToSchematic(t, timerDoc)

	sym := sch.LibrarySymbols["tokn:NE555"]
	if sym == nil {
		t.Fatal("tokn:NE555 not defined")
	}
	if pin, ok := sym.PinByNumber("8"); !ok || pin.Name != "VCC" {
		t.Errorf("pin 8 = %+v", pin)
	}
	if pin, _ := sym.PinByNumber("1"); pin.X != -7.62 || pin.Y != 3.81 || pin.Angle != 0 {
		t.Errorf("pin 1 = %+v, want left side at -7.62,3.81", pin)
	}

	u1 := sch.Component("U1")
	if u1.Footprint != "Package_DIP:DIP-8_W7.62mm" {
		t.Errorf("U1 footprint = %q", u1.Footprint)
	}
	if c1 := sch.Component("C1"); c1.LibraryID != "Device:C" {
		t.Errorf("C1 lib_id = %q", c1.LibraryID)
	}
	if len(sch.Junctions) != 2 {
		t.Errorf("got %d junctions, want 2", len(sch.Junctions))
	}

	labels := sch.LabelNames()
	if strings.Join(labels, ",") != "OUT,TRIG" {
		t.Errorf("labels = %v, want OUT,TRIG", labels)
	}
	for _, l := range sch.Labels {
		if l.Name == "TRIG" && l.Angle != 180 {
			t.Errorf("TRIG label angle = %v, want 180", l.Angle)
		}
	}
}

func TestDecodeRotatedGeneric(t *testing.T) {
	text := `components[1]{ref,type,value,fp,x,y,w,h,a}:
  U1,OPAMP,,,50.00,50.00,7.62,15.24,90
nets[2]{name,pins}:
  A,U1.1
  B,U1.2
wires[2]{net,pts}:
  A,"46.19 42.38,46.19 35.00"
  B,"53.81 57.62,53.81 65.00"
`
	sch := decodeToSchematic(t, text)

	u1 := sch.Component("U1")
	if u1 == nil || u1.Angle != 90 {
		t.Fatalf("U1 = %+v", u1)
	}
	if p := u1.Pins["1"]; !p.Near(schematic.Point{X: 46.19, Y: 42.38}, 0.001) {
		t.Errorf("U1.1 at %v", p)
	}
	if p := u1.Pins["2"]; !p.Near(schematic.Point{X: 53.81, Y: 57.62}, 0.001) {
		t.Errorf("U1.2 at %v", p)
	}

	encoded := Encode(sch, netlist.Analyze(sch))
	if !strings.Contains(encoded, "  U1,OPAMP,,,50.00,50.00,7.62,15.24,90\n") {
		t.Errorf("re-encoded row changed:\n%s", encoded)
	}
}

func TestDecodeSymbolVariants(t *testing.T) {
	text := `components[3]{ref,type,value,fp,x,y,w,h,a}:
  U1,BUF,,,0.00,0.00,10.00,0.00,0
  U2,BUF,,,0.00,50.00,10.00,0.00,0
  U3,BUF,,,0.00,100.00,0.00,10.00,0
nets[6]{name,pins}:
  A,U1.1
  B,U1.2
  C,U2.1
  D,U2.2
  E,U3.1
  F,U3.2
wires[6]{net,pts}:
  A,"-5 0,-10 0"
  B,"5 0,10 0"
  C,"-5 50,-10 50"
  D,"5 50,10 50"
  E,"0 95,0 90"
  F,"0 105,0 110"
`
	sch := decodeToSchematic(t, text)

	if sch.LibrarySymbols["tokn:BUF"] == nil || sch.LibrarySymbols["BUF_2"] == nil {
		t.Fatalf("symbols = %v", sch.LibrarySymbols)
	}
	if len(sch.LibrarySymbols) != 2 {
		t.Errorf("got %d symbols, want 2", len(sch.LibrarySymbols))
	}

	if u2 := sch.Component("U2"); u2.LibName != "" {
		t.Errorf("U2 lib_name = %q, want shared base symbol", u2.LibName)
	}
	u3 := sch.Component("U3")
	if u3.LibName != "BUF_2" || u3.LibraryID != "tokn:BUF" {
		t.Errorf("U3 = %s / %s", u3.LibName, u3.LibraryID)
	}
	if p := u3.Pins["1"]; !p.Near(schematic.Point{X: 0, Y: 95}, 0.001) {
		t.Errorf("U3.1 at %v", p)
	}

	nl := netlist.Analyze(sch)
	if e := nl.Net("E"); e == nil || !e.HasPin("U3", "1") {
		t.Errorf("net E = %+v", e)
	}
}

func TestDecodePassiveFallsBackToGenerated(t *testing.T) {
	text := `components[1]{ref,type,value,fp,x,y,w,h,a}:
  R1,R,1k,,0.00,0.00,10.00,0.00,0
nets[2]{name,pins}:
  A,R1.1
  B,R1.2
wires[2]{net,pts}:
  A,"-5 0,-10 0"
  B,"5 0,10 0"
`
	sch := decodeToSchematic(t, text)

	r1 := sch.Component("R1")
	if r1.LibraryID != "tokn:R" {
		t.Fatalf("R1 lib_id = %q, want tokn:R", r1.LibraryID)
	}
	if !r1.Pins["2"].Near(schematic.Point{X: 5, Y: 0}, 0.001) {
		t.Errorf("R1.2 at %v", r1.Pins["2"])
	}

	doc := mustParse(t, Encode(sch, netlist.Analyze(sch)))
	if c := doc.Component("R1"); c == nil || c.Type != Resistor {
		t.Errorf("re-encoded R1 = %+v", c)
	}
}

func TestDecodeOptions(t *testing.T) {
	out := Decode(mustParse(t, dividerDoc), WithGenerator("bench", "2.0"), WithPaper("A3"))

	for _, s := range []string{`(generator "bench")`, `(generator_version "2.0")`, `(paper "A3")`} {
		if !strings.Contains(out, s) {
			t.Errorf("output lacks %s", s)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	sch, err := schematic.ParseString(Decode(&Schematic{}))
	if err != nil {
		t.Fatalf("empty document does not parse: %v", err)
	}
	if len(sch.Components) != 0 || len(sch.Wires) != 0 {
		t.Errorf("unexpected content: %+v", sch)
	}
}

func TestIsPowerNet(t *testing.T) {
	tests := []struct {
		name   string
		power  bool
		ground bool
	}{
		{"GND", true, true},
		{"GNDA", true, true},
		{"AGND", true, true},
		{"VSS", true, true},
		{"VEE", true, false},
		{"VBUS", true, false},
		{"+3V3", true, false},
		{"+1V8", true, false},
		{"-12V", true, false},
		{"-IN", false, false},
		{"OUT", false, false},
		{"N1", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := IsPowerNet(tt.name); got != tt.power {
			t.Errorf("IsPowerNet(%q) = %v, want %v", tt.name, got, tt.power)
		}
		if tt.power {
			if got := isGround(tt.name); got != tt.ground {
				t.Errorf("isGround(%q) = %v, want %v", tt.name, got, tt.ground)
			}
		}
	}
}

func TestWireDirection(t *testing.T) {
	wires := []Wire{
		{Points: []schematic.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{Points: []schematic.Point{{X: 20, Y: 20}, {X: 20, Y: 30}, {X: 20, Y: 40}}},
	}
	tests := []struct {
		at    schematic.Point
		dir   int
		angle int
	}{
		{schematic.Point{X: 0, Y: 0}, 0, 90},
		{schematic.Point{X: 10, Y: 0}, 180, 270},
		{schematic.Point{X: 20, Y: 20}, 90, 0},
		{schematic.Point{X: 20, Y: 40}, 270, 180},
		{schematic.Point{X: 20, Y: 30}, 0, 90}, // interior point
		{schematic.Point{X: 99, Y: 99}, 0, 90}, // not on a wire
	}

	for _, tt := range tests {
		dir := wireDirection(wires, tt.at)
		if dir != tt.dir {
			t.Errorf("wireDirection(%v) = %d, want %d", tt.at, dir, tt.dir)
		}
		if got := powerAngle(dir); got != tt.angle {
			t.Errorf("powerAngle(%d) = %d, want %d", dir, got, tt.angle)
		}
	}
}
