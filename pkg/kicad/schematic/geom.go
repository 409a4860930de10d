package schematic

import (
	"math"
)

// KeyPrecision is the number of decimals points are rounded to before they
// are compared or hashed.
const KeyPrecision = 4

// Point is a position in document coordinates (millimeters, Y down).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointKey is a rounded, comparable form of a Point for use as a map key.
// Keys built with different precisions must not be mixed.
type PointKey struct {
	X, Y int64
}

// Key rounds p to KeyPrecision decimals.
func (p Point) Key() PointKey {
	return p.KeyPrec(KeyPrecision)
}

// KeyPrec rounds p to n decimals.
func (p Point) KeyPrec(n int) PointKey {
	scale := math.Pow10(n)
	return PointKey{
		X: int64(math.Round(p.X * scale)),
		Y: int64(math.Round(p.Y * scale)),
	}
}

// Equal compares two points at KeyPrecision.
func (p Point) Equal(q Point) bool {
	return p.Key() == q.Key()
}

// Near reports whether q lies strictly within tol of p on both axes.
// NaN coordinates never match.
func (p Point) Near(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) < tol && math.Abs(p.Y-q.Y) < tol
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// IsNaN reports whether either coordinate is NaN.
func (p Point) IsNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Point // Minimum (top-left) corner
	Max Point // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a point
func (bb *BoundingBox) Expand(p Point) {
	bb.Min.X = math.Min(bb.Min.X, p.X)
	bb.Min.Y = math.Min(bb.Min.Y, p.Y)
	bb.Max.X = math.Max(bb.Max.X, p.X)
	bb.Max.Y = math.Max(bb.Max.Y, p.Y)
}

// Contains checks if a point is within the bounding box
func (bb BoundingBox) Contains(p Point) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	if bb.IsEmpty() {
		return 0
	}
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	if bb.IsEmpty() {
		return 0
	}
	return bb.Max.Y - bb.Min.Y
}

// Center returns the center point of the bounding box
func (bb BoundingBox) Center() Point {
	return Point{
		X: (bb.Min.X + bb.Max.X) / 2.0,
		Y: (bb.Min.Y + bb.Max.Y) / 2.0,
	}
}
