package schematic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MichaelAyles/tokn/pkg/kicad/sexp"
	"github.com/MichaelAyles/tokn/pkg/kicad/sexp/kicadsexp"
)

// Schematic coordinates are millimeters and angles are plain degrees, unlike
// the nanometer/decidegree helpers PCB files need.

// getAt extracts position and angle from an (at X Y [angle]) node
func getAt(s kicadsexp.Sexp) (Point, float64, error) {
	p, err := getXY(s)
	if err != nil {
		return Point{}, 0, err
	}

	// Angle is optional
	var angle float64
	if sexp.Len(s) > 3 {
		if a, err := sexp.GetFloat(s, 3); err == nil {
			angle = a
		}
	}

	return p, angle, nil
}

// getXY extracts X,Y from (at X Y ...) or (xy X Y)
func getXY(s kicadsexp.Sexp) (Point, error) {
	x, err := sexp.GetFloat(s, 1)
	if err != nil {
		return Point{}, fmt.Errorf("failed to parse X coordinate: %w", err)
	}

	y, err := sexp.GetFloat(s, 2)
	if err != nil {
		return Point{}, fmt.Errorf("failed to parse Y coordinate: %w", err)
	}

	return Point{X: x, Y: y}, nil
}

// findAt returns the (at ...) child of node, if it carries a usable position.
func findAt(node kicadsexp.Sexp) (Point, float64, bool) {
	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return Point{}, 0, false
	}
	p, angle, err := getAt(atNode)
	if err != nil {
		return Point{}, 0, false
	}
	return p, angle, true
}

// unitStyle splits a sub-symbol name "NAME_<unit>_<style>". Names without the
// suffix are shared by every unit and style.
func unitStyle(name string) (unit, style int) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return 0, 0
	}
	s, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, 0
	}
	rest := name[:i]
	j := strings.LastIndexByte(rest, '_')
	if j < 0 {
		return 0, 0
	}
	u, err := strconv.Atoi(rest[j+1:])
	if err != nil {
		return 0, 0
	}
	return u, s
}
