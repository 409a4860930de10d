package schematic

import "math"

// TransformPin maps a symbol-local pin anchor to document coordinates.
//
// Library symbols use Y up and the document uses Y down, so the order is:
// flip Y, apply mirror, rotate by -angle, translate to origin. Swapping
// mirror and rotation gives different results at 90 and 270 degrees.
func TransformPin(local, origin Point, angle float64, mirror Mirror) Point {
	x, y := local.X, -local.Y

	switch mirror {
	case MirrorX:
		y = -y
	case MirrorY:
		x = -x
	}

	x, y = rotate(x, y, -angle)
	return Point{X: origin.X + x, Y: origin.Y + y}
}

// InverseTransformPin maps a document position back to symbol-local
// coordinates of an instance at origin. It undoes TransformPin.
func InverseTransformPin(abs, origin Point, angle float64, mirror Mirror) Point {
	x, y := rotate(abs.X-origin.X, abs.Y-origin.Y, angle)

	switch mirror {
	case MirrorX:
		y = -y
	case MirrorY:
		x = -x
	}

	return Point{X: x, Y: -y}
}

// rotate turns (x, y) by deg degrees counter-clockwise in a Y-up frame.
func rotate(x, y, deg float64) (float64, float64) {
	sin, cos := sinCos(deg)
	return x*cos - y*sin, x*sin + y*cos
}

// sinCos returns exact values at multiples of 90 degrees so right-angle
// placements land on the grid without float residue.
func sinCos(deg float64) (float64, float64) {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}
