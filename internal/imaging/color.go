package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSV represents a color in the 8-bit OpenCV HSV convention.
//
// Hue is stored as degrees divided by two so that it fits a byte. Threshold
// ranges tuned against OpenCV's cvtColor(COLOR_BGR2HSV) output apply directly.
type HSV struct {
	H uint8 `json:"h"` // Hue: 0-179 (degrees / 2)
	S uint8 `json:"s"` // Saturation: 0-255
	V uint8 `json:"v"` // Value: 0-255
}

// ToHSV converts a color to 8-bit HSV.
func ToHSV(c color.Color) HSV {
	r, g, b, _ := c.RGBA()
	return rgbToHSV(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// rgbToHSV converts 8-bit RGB components to 8-bit HSV.
//
// go-colorful returns hue in [0, 360) and saturation/value in [0, 1]; these
// are rescaled and rounded the way OpenCV does for 8-bit images, with a hue
// that rounds up to 180 wrapping to 0.
func rgbToHSV(r, g, b uint8) HSV {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, v := c.Hsv()

	hue := int(math.Round(h / 2))
	if hue >= 180 {
		hue -= 180
	}
	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// ColorResult contains a sampled pixel in the representations needed to tune
// threshold parameters.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSV HSV      `json:"hsv"` // 8-bit HSV components
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are absolute image coordinates. An error is returned when the
// point falls outside the image bounds.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, _ := img.At(x, y).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

	return &ColorResult{
		Hex: fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB: RGBColor{R: r8, G: g8, B: b8},
		HSV: rgbToHSV(r8, g8, b8),
	}, nil
}
