package detection

import (
	"image"
	"testing"
)

func TestLocateTarget(t *testing.T) {
	frame := image.Rect(0, 0, 160, 120)
	lines := []Line{
		NewLine(69, 99, 69, 20),
		NewLine(79, 19, 79, 99),
	}

	target := LocateTarget(lines, frame, TargetOptions{MaxAngleDeg: 30, MinLines: 1})
	if target == nil {
		t.Fatal("LocateTarget returned nil")
	}

	want := Bounds{X1: 69, Y1: 19, X2: 79, Y2: 99}
	if target.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", target.Bounds, want)
	}
	if target.Center != (Point{X: 74, Y: 59}) {
		t.Errorf("Center = %+v, want (74,59)", target.Center)
	}
	if target.Lines != 2 {
		t.Errorf("Lines = %d, want 2", target.Lines)
	}
	// 2000*74/160-1000 = -75; (2000*59/120-1000)*0.75 = -12.5
	if target.Std != (StdPoint{X: -75, Y: -13}) {
		t.Errorf("Std = %+v, want (-75,-13)", target.Std)
	}
}

func TestLocateTarget_AngleFilter(t *testing.T) {
	frame := image.Rect(0, 0, 100, 100)
	lines := []Line{
		NewLine(10, 50, 90, 50), // horizontal
		NewLine(10, 10, 90, 90), // 45 degrees
		NewLine(50, 10, 52, 90), // nearly vertical
	}

	tests := []struct {
		name      string
		maxAngle  float64
		wantLines int
	}{
		{"filter disabled", 0, 3},
		{"tight", 10, 1},
		{"diagonal allowed", 45, 2},
		{"everything", 90, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := LocateTarget(lines, frame, TargetOptions{MaxAngleDeg: tt.maxAngle})
			if target == nil {
				t.Fatal("LocateTarget returned nil")
			}
			if target.Lines != tt.wantLines {
				t.Errorf("Lines = %d, want %d", target.Lines, tt.wantLines)
			}
		})
	}
}

func TestLocateTarget_NoTarget(t *testing.T) {
	frame := image.Rect(0, 0, 100, 100)

	if got := LocateTarget(nil, frame, TargetOptions{}); got != nil {
		t.Errorf("no lines: got %+v, want nil", got)
	}

	horizontal := []Line{NewLine(0, 50, 99, 50)}
	if got := LocateTarget(horizontal, frame, TargetOptions{MaxAngleDeg: 30}); got != nil {
		t.Errorf("only horizontal lines: got %+v, want nil", got)
	}

	vertical := []Line{NewLine(50, 0, 50, 99)}
	if got := LocateTarget(vertical, frame, TargetOptions{MinLines: 2}); got != nil {
		t.Errorf("below MinLines: got %+v, want nil", got)
	}
}

func TestStandardize(t *testing.T) {
	tests := []struct {
		name  string
		p     Point
		frame image.Rectangle
		want  StdPoint
	}{
		{"top-left 4:3", Point{0, 0}, image.Rect(0, 0, 640, 480), StdPoint{-1000, -750}},
		{"center 4:3", Point{320, 240}, image.Rect(0, 0, 640, 480), StdPoint{0, 0}},
		{"bottom-right 4:3", Point{640, 480}, image.Rect(0, 0, 640, 480), StdPoint{1000, 750}},
		{"square", Point{25, 75}, image.Rect(0, 0, 100, 100), StdPoint{-500, 500}},
		{"offset frame", Point{110, 110}, image.Rect(100, 100, 120, 120), StdPoint{0, 0}},
		{"empty frame", Point{5, 5}, image.Rectangle{}, StdPoint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Standardize(tt.p, tt.frame); got != tt.want {
				t.Errorf("Standardize(%v, %v) = %+v, want %+v", tt.p, tt.frame, got, tt.want)
			}
		})
	}
}

func TestTarget_StdGeometry(t *testing.T) {
	target := &Target{
		Bounds: Bounds{X1: 160, Y1: 120, X2: 480, Y2: 360},
		Frame:  image.Rect(0, 0, 640, 480),
	}

	w, h := target.StdSize()
	if w != 1000 || h != 750 {
		t.Errorf("StdSize = %d,%d, want 1000,750", w, h)
	}

	corners := target.StdCorners()
	want := [4]StdPoint{{-500, -375}, {500, -375}, {500, 375}, {-500, 375}}
	if corners != want {
		t.Errorf("StdCorners = %+v, want %+v", corners, want)
	}
}
