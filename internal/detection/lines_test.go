package detection

import (
	"image"
	"math"
	"testing"
)

// createEdgeMap returns an empty edge map of the given size.
func createEdgeMap(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// drawVertical sets column x from y0 to y1 inclusive.
func drawVertical(edges *image.Gray, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		edges.Pix[y*edges.Stride+x] = 255
	}
}

// drawHorizontal sets row y from x0 to x1 inclusive.
func drawHorizontal(edges *image.Gray, y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		edges.Pix[y*edges.Stride+x] = 255
	}
}

func TestHoughLinesP_VerticalLine(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawVertical(edges, 50, 10, 89)

	lines, err := HoughLinesP(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %+v", len(lines), lines)
	}

	l := lines[0]
	if l.Start.X != 50 || l.End.X != 50 {
		t.Errorf("line not on column 50: %+v", l)
	}
	if math.Abs(l.Length-79) > 0.01 {
		t.Errorf("Length = %.1f, want 79", l.Length)
	}
	if math.Abs(math.Abs(l.AngleDegrees)-90) > 0.01 {
		t.Errorf("AngleDegrees = %.1f, want ±90", l.AngleDegrees)
	}
	if top, bottom := min(l.Start.Y, l.End.Y), max(l.Start.Y, l.End.Y); top != 10 || bottom != 89 {
		t.Errorf("endpoints span %d..%d, want 10..89", top, bottom)
	}
}

func TestHoughLinesP_HorizontalLine(t *testing.T) {
	edges := createEdgeMap(120, 60)
	drawHorizontal(edges, 30, 5, 104)

	lines, err := HoughLinesP(edges, DefaultHoughParams())
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].VerticalDeviation() != 90 {
		t.Errorf("VerticalDeviation = %.1f, want 90", lines[0].VerticalDeviation())
	}
}

func TestHoughLinesP_GapBridging(t *testing.T) {
	tests := []struct {
		name      string
		maxGap    int
		wantLines int
	}{
		{"gap bridged", 10, 1},
		{"gap too wide", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := createEdgeMap(100, 140)
			drawVertical(edges, 40, 5, 64)
			drawVertical(edges, 40, 70, 129)

			p := DefaultHoughParams()
			p.MaxLineGap = tt.maxGap
			lines, err := HoughLinesP(edges, p)
			if err != nil {
				t.Fatalf("HoughLinesP failed: %v", err)
			}
			if len(lines) != tt.wantLines {
				t.Errorf("got %d lines, want %d: %+v", len(lines), tt.wantLines, lines)
			}
		})
	}
}

func TestHoughLinesP_ShortSegmentRejected(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawVertical(edges, 30, 40, 49)

	p := DefaultHoughParams()
	p.Threshold = 5
	lines, err := HoughLinesP(edges, p)
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("10 pixel segment passed MinLineLength 20: %+v", lines)
	}
}

func TestHoughLinesP_MaxLines(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawVertical(edges, 20, 10, 89)
	drawVertical(edges, 80, 10, 89)

	p := DefaultHoughParams()
	lines, err := HoughLinesP(edges, p)
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if l.Start.X != l.End.X || (l.Start.X != 20 && l.Start.X != 80) {
			t.Errorf("unexpected segment %+v", l)
		}
	}

	p.MaxLines = 1
	lines, err = HoughLinesP(edges, p)
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("MaxLines=1 returned %d lines", len(lines))
	}
}

func TestHoughLinesP_Deterministic(t *testing.T) {
	edges := createEdgeMap(100, 100)
	drawVertical(edges, 20, 10, 89)
	drawHorizontal(edges, 50, 30, 95)

	first, err := HoughLinesP(edges, DefaultHoughParams())
	if err != nil {
		t.Fatal(err)
	}
	second, err := HoughLinesP(edges, DefaultHoughParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("line counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("line %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestHoughLinesP_Empty(t *testing.T) {
	lines, err := HoughLinesP(createEdgeMap(64, 48), DefaultHoughParams())
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Errorf("empty edge map: got %#v, want empty non-nil slice", lines)
	}
}

func TestHoughLinesP_CoarseRhoOnSmallMap(t *testing.T) {
	// A rho step larger than the map's diagonal leaves a single rho bin.
	edges := createEdgeMap(12, 12)
	drawVertical(edges, 5, 1, 10)

	p := DefaultHoughParams()
	p.Rho = 100
	p.Threshold = 1
	p.MinLineLength = 5

	lines, err := HoughLinesP(edges, p)
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("expected a line with a single rho bin")
	}
	if l := lines[0]; l.Start.X != 5 || l.End.X != 5 {
		t.Errorf("line not on column 5: %+v", l)
	}
}

func TestHoughLinesP_InvalidParams(t *testing.T) {
	edges := createEdgeMap(10, 10)

	tests := []struct {
		name   string
		modify func(*HoughParams)
	}{
		{"zero rho", func(p *HoughParams) { p.Rho = 0 }},
		{"NaN rho", func(p *HoughParams) { p.Rho = math.NaN() }},
		{"infinite rho", func(p *HoughParams) { p.Rho = math.Inf(1) }},
		{"NaN theta", func(p *HoughParams) { p.ThetaDeg = math.NaN() }},
		{"zero theta", func(p *HoughParams) { p.ThetaDeg = 0 }},
		{"theta too large", func(p *HoughParams) { p.ThetaDeg = 200 }},
		{"zero threshold", func(p *HoughParams) { p.Threshold = 0 }},
		{"negative gap", func(p *HoughParams) { p.MaxLineGap = -1 }},
		{"negative length", func(p *HoughParams) { p.MinLineLength = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultHoughParams()
			tt.modify(&p)
			if _, err := HoughLinesP(edges, p); err == nil {
				t.Error("expected error")
			}
		})
	}
}
