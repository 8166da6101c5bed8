package detection

import "math"

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
// Both corners are inclusive.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Center returns the midpoint of the box, rounded down.
func (b Bounds) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Corners returns the four corners clockwise from the top-left.
func (b Bounds) Corners() [4]Point {
	return [4]Point{
		{X: b.X1, Y: b.Y1},
		{X: b.X2, Y: b.Y1},
		{X: b.X2, Y: b.Y2},
		{X: b.X1, Y: b.Y2},
	}
}

// Line represents a detected line segment.
type Line struct {
	Start        Point   `json:"start"`
	End          Point   `json:"end"`
	Length       float64 `json:"length"`
	AngleDegrees float64 `json:"angle_degrees"` // atan2(dy, dx), -180..180
}

// NewLine builds a Line between two points and fills in its length and angle.
func NewLine(x1, y1, x2, y2 int) Line {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	return Line{
		Start:        Point{X: x1, Y: y1},
		End:          Point{X: x2, Y: y2},
		Length:       math.Round(math.Sqrt(dx*dx+dy*dy)*10) / 10,
		AngleDegrees: math.Round(math.Atan2(dy, dx)*180/math.Pi*10) / 10,
	}
}

// VerticalDeviation returns how many degrees the segment leans away from
// vertical, in the range 0..90.
func (l Line) VerticalDeviation() float64 {
	return math.Abs(math.Abs(l.AngleDegrees) - 90)
}
