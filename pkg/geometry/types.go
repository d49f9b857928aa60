// Package geometry provides integer-grid geometric types used throughout the
// engine.  All coordinates are in process resolution units.
package geometry

// Interval represents a one-dimensional coordinate span [Lo, Hi].
type Interval struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// NewInterval creates a new Interval.
func NewInterval(lo, hi int) Interval {
	return Interval{Lo: lo, Hi: hi}
}

// Length returns Hi - Lo.
func (iv Interval) Length() int {
	return iv.Hi - iv.Lo
}

// Center returns the midpoint, rounded toward negative infinity.
func (iv Interval) Center() int {
	return FloorDiv(iv.Lo+iv.Hi, 2)
}

// IsPhysical returns true if the interval has positive length.
func (iv Interval) IsPhysical() bool {
	return iv.Hi > iv.Lo
}

// Shift returns the interval translated by d.
func (iv Interval) Shift(d int) Interval {
	return Interval{Lo: iv.Lo + d, Hi: iv.Hi + d}
}

// Expand returns the interval grown by d on both sides.
func (iv Interval) Expand(d int) Interval {
	return Interval{Lo: iv.Lo - d, Hi: iv.Hi + d}
}

// Contains returns true if x lies within the interval.
func (iv Interval) Contains(x int) bool {
	return x >= iv.Lo && x <= iv.Hi
}

// Point represents a 2D point with integer coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewPoint creates a new Point.
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Rect represents an axis-aligned rectangle by its edge coordinates.
type Rect struct {
	XL int `json:"xl"`
	YB int `json:"yb"`
	XR int `json:"xr"`
	YT int `json:"yt"`
}

// NewRect creates a new Rect.
func NewRect(xl, yb, xr, yt int) Rect {
	return Rect{XL: xl, YB: yb, XR: xr, YT: yt}
}

// RectFromIntervals creates a Rect from an X and a Y interval.
func RectFromIntervals(x, y Interval) Rect {
	return Rect{XL: x.Lo, YB: y.Lo, XR: x.Hi, YT: y.Hi}
}

// W returns the rectangle width.
func (r Rect) W() int {
	return r.XR - r.XL
}

// H returns the rectangle height.
func (r Rect) H() int {
	return r.YT - r.YB
}

// X returns the horizontal interval.
func (r Rect) X() Interval {
	return Interval{Lo: r.XL, Hi: r.XR}
}

// Y returns the vertical interval.
func (r Rect) Y() Interval {
	return Interval{Lo: r.YB, Hi: r.YT}
}

// Center returns the center point, rounded toward negative infinity.
func (r Rect) Center() Point {
	return Point{X: FloorDiv(r.XL+r.XR, 2), Y: FloorDiv(r.YB+r.YT, 2)}
}

// IsPhysical returns true if the rectangle has positive area.
func (r Rect) IsPhysical() bool {
	return r.XR > r.XL && r.YT > r.YB
}

// Expand returns the rectangle grown by d on every side.
func (r Rect) Expand(d int) Rect {
	return Rect{XL: r.XL - d, YB: r.YB - d, XR: r.XR + d, YT: r.YT + d}
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	out := r
	if other.XL < out.XL {
		out.XL = other.XL
	}
	if other.YB < out.YB {
		out.YB = other.YB
	}
	if other.XR > out.XR {
		out.XR = other.XR
	}
	if other.YT > out.YT {
		out.YT = other.YT
	}
	return out
}
