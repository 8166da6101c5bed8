package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStripeImage creates a dark frame with a bright vertical stripe
// covering columns x0..x1 and rows y0..y1 inclusive.
func createStripeImage(width, height, x0, x1, y0, y1 int, stripe color.Color) *image.RGBA {
	img := createInMemoryImage(width, height, color.RGBA{20, 20, 20, 255})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.Set(x, y, stripe)
		}
	}
	return img
}

func TestToHSV(t *testing.T) {
	tests := []struct {
		name  string
		color color.RGBA
		want  HSV
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, HSV{0, 255, 255}},
		{"pure green", color.RGBA{0, 255, 0, 255}, HSV{60, 255, 255}},
		{"pure blue", color.RGBA{0, 0, 255, 255}, HSV{120, 255, 255}},
		{"white", color.RGBA{255, 255, 255, 255}, HSV{0, 0, 255}},
		{"black", color.RGBA{0, 0, 0, 255}, HSV{0, 0, 0}},
		{"gray", color.RGBA{128, 128, 128, 255}, HSV{0, 0, 128}},
		{"retroreflective cyan", color.RGBA{230, 255, 252, 255}, HSV{86, 25, 255}},
		{"hue wraps to zero", color.RGBA{255, 0, 1, 255}, HSV{0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHSV(tt.color)
			if got != tt.want {
				t.Errorf("ToHSV(%v) = %+v, want %+v", tt.color, got, tt.want)
			}
		})
	}
}

func TestSampleColor(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 128, 64, 255})

	result, err := SampleColor(img, 50, 50)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.Hex != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", result.Hex)
	}
	if result.RGB != (RGBColor{255, 128, 64}) {
		t.Errorf("RGB: got %+v, want (255,128,64)", result.RGB)
	}
	// 20 degrees, full saturation after rounding 191/255.
	if result.HSV.H != 10 || result.HSV.S != 191 || result.HSV.V != 255 {
		t.Errorf("HSV: got %+v, want {10 191 255}", result.HSV)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)

	points := []image.Point{{-1, 0}, {0, -1}, {10, 5}, {5, 10}}
	for _, p := range points {
		if _, err := SampleColor(img, p.X, p.Y); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", p.X, p.Y)
		}
	}
}
