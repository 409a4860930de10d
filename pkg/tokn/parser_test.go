package tokn

import (
	"errors"
	"reflect"
	"testing"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
)

// dividerDoc is a two-resistor divider between +5V and GND with the
// midpoint labelled OUT.
const dividerDoc = `# TOKN v1
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
  OUT,"80.00 93.81,80.00 100.00"
  OUT,"80.00 100.00,80.00 106.19"
  OUT,"80.00 100.00,90.00 100.00"
  GND,"80.00 113.81,80.00 120.00"
`

func TestParseDivider(t *testing.T) {
	doc, err := Parse(dividerDoc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Title != "Divider" {
		t.Errorf("Title = %q, want Divider", doc.Title)
	}
	if len(doc.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(doc.Components))
	}

	want := Component{Ref: "R2", Type: Resistor, Value: "4k7", Footprint: "0603", X: 80, Y: 110, W: 0, H: 7.62}
	if got := doc.Components[1]; got != want {
		t.Errorf("R2 = %+v, want %+v", got, want)
	}

	if len(doc.Nets) != 3 {
		t.Fatalf("got %d nets, want 3", len(doc.Nets))
	}
	out := doc.Net("OUT")
	if out == nil {
		t.Fatal("net OUT missing")
	}
	if !reflect.DeepEqual(out.Pins, []NetPin{{"R1", "2"}, {"R2", "1"}}) {
		t.Errorf("OUT pins = %v", out.Pins)
	}

	if len(doc.Wires) != 5 {
		t.Fatalf("got %d wires, want 5", len(doc.Wires))
	}
	wantPts := []schematic.Point{{X: 80, Y: 86.19}, {X: 80, Y: 80}}
	if w := doc.Wires[0]; w.Net != "+5V" || !reflect.DeepEqual(w.Points, wantPts) {
		t.Errorf("first wire = %+v", w)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	a, err := Parse(dividerDoc)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(dividerDoc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("parsing the same text twice gave different results")
	}
}

func TestParseHeaderError(t *testing.T) {
	text := "# TOKN v1\n\ncomponents[two]{ref,type}:\n  R1,R\n"

	_, err := Parse(text)
	var herr *HeaderError
	if !errors.As(err, &herr) {
		t.Fatalf("Parse() error = %v, want *HeaderError", err)
	}
	if herr.Line != 3 {
		t.Errorf("HeaderError.Line = %d, want 3", herr.Line)
	}
}

func TestParseSkipsCommentsWithoutCounting(t *testing.T) {
	text := `components[2]{ref,type,value,fp,x,y,w,h,a}:
  # first
  R1,R,1k

  # second
  R2,R,2k
nets[1]{name,pins}:
  N1,R1.1
`
	doc, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Components) != 2 || doc.Components[1].Ref != "R2" {
		t.Fatalf("components = %+v, want R1 and R2", doc.Components)
	}
	if len(doc.Nets) != 1 {
		t.Errorf("got %d nets, want 1", len(doc.Nets))
	}
}

func TestParsePinsSectionEndsAtHeader(t *testing.T) {
	text := `pins{U1}[3]:
  1,GND
  8,VCC
nets[1]{name,pins}:
  GND,U1.1
`
	doc, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}

	want := []PinEntry{{"1", "GND"}, {"8", "VCC"}}
	if got := doc.PinTables["U1"]; !reflect.DeepEqual(got, want) {
		t.Errorf("pins{U1} = %v, want %v", got, want)
	}
	if len(doc.Nets) != 1 || doc.Nets[0].Name != "GND" {
		t.Errorf("nets = %+v, want GND", doc.Nets)
	}
	if name, ok := doc.PinName("U1", "8"); !ok || name != "VCC" {
		t.Errorf("PinName(U1, 8) = %q, %v", name, ok)
	}
}

func TestParseUnknownSection(t *testing.T) {
	text := `notes[2]{text}:
  first note
  second note
nets[1]{name,pins}:
  VCC,U1.8
`
	doc, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nets) != 1 || doc.Nets[0].Name != "VCC" {
		t.Errorf("nets = %+v, want VCC", doc.Nets)
	}
}

func TestParseLenientRows(t *testing.T) {
	text := "components[1]{ref,type,value,fp,x,y,w,h,a}:\n  U1,NE555,,,abc, 12.5 \n" +
		"nets[1]{name,pins}:\n  N1,\"U1.1, bogus ,U1.2\"\n" +
		"wires[1]{net,pts}:\n  N1,\"1 2,bad,3 x,4 5 6\"\n"

	doc, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}

	c := doc.Components[0]
	if c.Type.String() != "NE555" || c.Type.IsPassive() {
		t.Errorf("type = %v", c.Type)
	}
	if c.X != 0 || c.Y != 12.5 || c.W != 0 || c.Angle != 0 {
		t.Errorf("numbers = %v %v %v %v", c.X, c.Y, c.W, c.Angle)
	}

	if got := doc.Nets[0].Pins; !reflect.DeepEqual(got, []NetPin{{"U1", "1"}, {"U1", "2"}}) {
		t.Errorf("pins = %v", got)
	}

	wantPts := []schematic.Point{{X: 1, Y: 2}, {X: 4, Y: 5}}
	if got := doc.Wires[0].Points; !reflect.DeepEqual(got, wantPts) {
		t.Errorf("points = %v, want %v", got, wantPts)
	}
}

func TestParseShortDocument(t *testing.T) {
	doc, err := Parse("components[3]{ref}:\n  R1\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Components) != 1 || doc.Components[0].Ref != "R1" {
		t.Errorf("components = %+v, want only R1", doc.Components)
	}
}
