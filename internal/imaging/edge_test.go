package imaging

import (
	"image"
	"testing"
)

// createStripeMask returns a 160x120 mask with columns 70..79 and rows
// 20..99 set.
func createStripeMask() *image.Gray {
	return createMask(160, 120, image.Rect(70, 20, 80, 100))
}

func TestCanny_StripeEdges(t *testing.T) {
	mask := createStripeMask()

	edges, err := Canny(mask, DefaultCannyOptions())
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if b := edges.Bounds(); b != image.Rect(0, 0, 160, 120) {
		t.Fatalf("edge bounds %v, want (0,0)-(160,120)", b)
	}

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"left edge", 69, 60, 255},
		{"right edge", 79, 60, 255},
		{"inside stripe", 74, 60, 0},
		{"first stripe column", 70, 60, 0},
		{"right of stripe", 80, 60, 0},
		{"background", 20, 60, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := edges.GrayAt(tt.x, tt.y).Y; got != tt.want {
				t.Errorf("edge(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCanny_Apertures(t *testing.T) {
	mask := createStripeMask()

	for _, aperture := range []int{3, 5, 7} {
		for _, l2 := range []bool{false, true} {
			opts := CannyOptions{Low: 50, High: 150, Aperture: aperture, L2Gradient: l2}
			edges, err := Canny(mask, opts)
			if err != nil {
				t.Fatalf("aperture %d l2 %v: %v", aperture, l2, err)
			}
			if edges.GrayAt(69, 60).Y != 255 {
				t.Errorf("aperture %d l2 %v: left edge missing", aperture, l2)
			}
			if edges.GrayAt(74, 60).Y != 0 {
				t.Errorf("aperture %d l2 %v: interior marked as edge", aperture, l2)
			}
		}
	}
}

func TestCanny_InvalidAperture(t *testing.T) {
	mask := createStripeMask()

	for _, aperture := range []int{0, 1, 4, 9} {
		opts := CannyOptions{Low: 50, High: 150, Aperture: aperture}
		if _, err := Canny(mask, opts); err == nil {
			t.Errorf("aperture %d: expected error", aperture)
		}
	}
	if _, err := Canny(mask, CannyOptions{Low: -1, High: 150, Aperture: 3}); err == nil {
		t.Error("negative threshold: expected error")
	}
}

func TestCanny_SwappedThresholds(t *testing.T) {
	mask := createStripeMask()

	normal, err := Canny(mask, CannyOptions{Low: 50, High: 150, Aperture: 3})
	if err != nil {
		t.Fatal(err)
	}
	swapped, err := Canny(mask, CannyOptions{Low: 150, High: 50, Aperture: 3})
	if err != nil {
		t.Fatal(err)
	}
	if CountNonZero(normal) != CountNonZero(swapped) {
		t.Errorf("swapped thresholds changed result: %d vs %d",
			CountNonZero(normal), CountNonZero(swapped))
	}
}

func TestCanny_UniformImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}

	edges, err := Canny(gray, DefaultCannyOptions())
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if got := CountNonZero(edges); got != 0 {
		t.Errorf("uniform image produced %d edge pixels", got)
	}
}

func TestCanny_HighThresholdRejectsAll(t *testing.T) {
	mask := createStripeMask()

	edges, err := Canny(mask, CannyOptions{Low: 5000, High: 6000, Aperture: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := CountNonZero(edges); got != 0 {
		t.Errorf("thresholds above the maximum gradient kept %d pixels", got)
	}
}

func TestCanny_Blur(t *testing.T) {
	mask := createStripeMask()

	edges, err := Canny(mask, CannyOptions{Low: 50, High: 150, Aperture: 3, Blur: true})
	if err != nil {
		t.Fatal(err)
	}
	if CountNonZero(edges) == 0 {
		t.Error("blurred stripe produced no edges")
	}
}

func TestCanny_Empty(t *testing.T) {
	edges, err := Canny(image.NewGray(image.Rect(0, 0, 0, 0)), DefaultCannyOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !edges.Bounds().Empty() {
		t.Errorf("expected empty result, got %v", edges.Bounds())
	}
}
