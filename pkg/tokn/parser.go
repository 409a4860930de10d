package tokn

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/schematic"
)

// ParseFile reads and parses a TOKN file
func ParseFile(filename string) (*Schematic, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(string(data))
}

// Parse reads a TOKN document. Row content never fails: missing fields
// become empty strings and unparsable numbers become zero. The only error is
// a *HeaderError for a line that opens a section but breaks the header
// grammar.
func Parse(text string) (*Schematic, error) {
	p := &docParser{
		lines: strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"),
		doc:   &Schematic{PinTables: make(map[string][]PinEntry)},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type docParser struct {
	lines []string
	pos   int
	doc   *Schematic
}

func (p *docParser) run() error {
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		lineNo := p.pos + 1
		p.pos++

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "title:"):
			p.doc.Title = strings.TrimSpace(line[len("title:"):])
			continue
		case !isHeaderLine(line):
			continue
		}

		h, err := parseHeader(line, lineNo)
		if err != nil {
			return err
		}

		switch h.Name {
		case "components":
			for _, row := range p.rows(h.Count, false) {
				p.doc.Components = append(p.doc.Components, parseComponentRow(row))
			}
		case "pins":
			var entries []PinEntry
			for _, row := range p.rows(h.Count, true) {
				if len(row) >= 2 {
					entries = append(entries, PinEntry{Number: row[0], Name: row[1]})
				}
			}
			p.doc.PinTables[h.Ref] = entries
		case "nets":
			for _, row := range p.rows(h.Count, false) {
				p.doc.Nets = append(p.doc.Nets, Net{Name: field(row, 0), Pins: parsePins(field(row, 1))})
			}
		case "wires":
			for _, row := range p.rows(h.Count, false) {
				p.doc.Wires = append(p.doc.Wires, Wire{Net: field(row, 0), Points: parsePoints(field(row, 1))})
			}
		default:
			// unknown section, skip its rows
			p.rows(h.Count, false)
		}
	}
	return nil
}

// rows consumes up to count data rows. Blank and comment lines are skipped
// without counting. With stopAtHeader set, a header line ends the section
// early and is left for the caller.
func (p *docParser) rows(count int, stopAtHeader bool) [][]string {
	var out [][]string
	for len(out) < count && p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" || strings.HasPrefix(line, "#") {
			p.pos++
			continue
		}
		if stopAtHeader && isHeaderLine(line) {
			break
		}
		p.pos++
		out = append(out, splitRow(line))
	}
	return out
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// number parses a numeric field, defaulting to 0.
func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseComponentRow(row []string) Component {
	return Component{
		Ref:       field(row, 0),
		Type:      ParseComponentType(field(row, 1)),
		Value:     field(row, 2),
		Footprint: field(row, 3),
		X:         number(field(row, 4)),
		Y:         number(field(row, 5)),
		W:         number(field(row, 6)),
		H:         number(field(row, 7)),
		Angle:     number(field(row, 8)),
	}
}

// parsePins reads "R1.1,U1.3". The pin number follows the last dot;
// entries without a dot are ignored.
func parsePins(s string) []NetPin {
	var pins []NetPin
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		i := strings.LastIndexByte(part, '.')
		if i < 0 {
			continue
		}
		pins = append(pins, NetPin{Ref: part[:i], Number: part[i+1:]})
	}
	return pins
}

// parsePoints reads "x1 y1,x2 y2". Malformed points are ignored.
func parsePoints(s string) []schematic.Point {
	var pts []schematic.Point
	for _, part := range strings.Split(s, ",") {
		coords := strings.Fields(part)
		if len(coords) < 2 {
			continue
		}
		x, errX := strconv.ParseFloat(coords[0], 64)
		y, errY := strconv.ParseFloat(coords[1], 64)
		if errX != nil || errY != nil {
			continue
		}
		pts = append(pts, schematic.Point{X: x, Y: y})
	}
	return pts
}
