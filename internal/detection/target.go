package detection

import (
	"image"
	"math"
)

// TargetOptions controls which segments count towards a target.
type TargetOptions struct {
	// MaxAngleDeg is the largest allowed deviation from vertical. 0 accepts
	// segments at any angle.
	MaxAngleDeg float64 `json:"max_angle_deg"`

	// MinLines is the number of qualifying segments required to report a
	// target. Values below 1 are treated as 1.
	MinLines int `json:"min_lines"`
}

// StdPoint is a location in standardized coordinates.
type StdPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Target is the located tape target in one frame.
type Target struct {
	// Center is the middle of Bounds in pixels.
	Center Point `json:"center"`

	// Bounds encloses the endpoints of every qualifying segment.
	Bounds Bounds `json:"bounds"`

	// Lines is the number of qualifying segments.
	Lines int `json:"lines"`

	// Std is Center in standardized coordinates.
	Std StdPoint `json:"std"`

	// Frame is the pixel rectangle the target was found in.
	Frame image.Rectangle `json:"-"`
}

// LocateTarget reduces detected segments to a single target.
//
// Segments leaning further than MaxAngleDeg from vertical are ignored. When
// fewer than MinLines segments remain, LocateTarget returns nil.
func LocateTarget(lines []Line, frame image.Rectangle, opts TargetOptions) *Target {
	minLines := opts.MinLines
	if minLines < 1 {
		minLines = 1
	}

	var b Bounds
	count := 0
	for _, l := range lines {
		if opts.MaxAngleDeg > 0 && l.VerticalDeviation() > opts.MaxAngleDeg {
			continue
		}
		if count == 0 {
			b = Bounds{X1: l.Start.X, Y1: l.Start.Y, X2: l.Start.X, Y2: l.Start.Y}
		}
		for _, p := range []Point{l.Start, l.End} {
			b.X1 = min(b.X1, p.X)
			b.Y1 = min(b.Y1, p.Y)
			b.X2 = max(b.X2, p.X)
			b.Y2 = max(b.Y2, p.Y)
		}
		count++
	}
	if count < minLines {
		return nil
	}

	center := b.Center()
	return &Target{
		Center: center,
		Bounds: b,
		Lines:  count,
		Std:    Standardize(center, frame),
		Frame:  frame,
	}
}

// StdSize returns the target's width and height in standardized units.
func (t *Target) StdSize() (w, h int) {
	fw := float64(t.Frame.Dx())
	if fw == 0 {
		return 0, 0
	}
	w = int(math.Round(2000 * float64(t.Bounds.Width()) / fw))
	h = int(math.Round(2000 * float64(t.Bounds.Height()) / fw))
	return w, h
}

// StdCorners returns the bounding box corners, clockwise from the top-left,
// in standardized coordinates.
func (t *Target) StdCorners() [4]StdPoint {
	var out [4]StdPoint
	for i, c := range t.Bounds.Corners() {
		out[i] = Standardize(c, t.Frame)
	}
	return out
}

// Standardize converts a pixel position inside frame to standardized
// coordinates. X maps to [-1000, 1000]; Y uses the same scale, so its range
// depends on the aspect ratio.
func Standardize(p Point, frame image.Rectangle) StdPoint {
	w := float64(frame.Dx())
	h := float64(frame.Dy())
	if w == 0 || h == 0 {
		return StdPoint{}
	}
	// (2000*y/h - 1000) * h/w, expanded to keep integer inputs exact.
	x := (2000*float64(p.X-frame.Min.X) - 1000*w) / w
	y := (2000*float64(p.Y-frame.Min.Y) - 1000*h) / w
	return StdPoint{X: int(math.Round(x)), Y: int(math.Round(y))}
}
