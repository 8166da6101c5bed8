package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// HSVRange is an inclusive lower/upper bound pair in 8-bit HSV.
type HSVRange struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// Contains reports whether c lies inside the range on every channel.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// Validate rejects ranges with a lower bound above the upper bound or a hue
// outside 0-179.
func (r HSVRange) Validate() error {
	if r.Upper.H > 179 || r.Lower.H > 179 {
		return fmt.Errorf("hue must be within 0-179, got %d-%d", r.Lower.H, r.Upper.H)
	}
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("invalid HSV range %v-%v: lower bound above upper bound", r.Lower, r.Upper)
	}
	return nil
}

// RGBRange is an inclusive lower/upper bound pair in 8-bit RGB.
type RGBRange struct {
	Lower RGBColor `json:"lower"`
	Upper RGBColor `json:"upper"`
}

// Contains reports whether c lies inside the range on every channel.
func (r RGBRange) Contains(c RGBColor) bool {
	return c.R >= r.Lower.R && c.R <= r.Upper.R &&
		c.G >= r.Lower.G && c.G <= r.Upper.G &&
		c.B >= r.Lower.B && c.B <= r.Upper.B
}

// Validate rejects ranges with a lower bound above the upper bound.
func (r RGBRange) Validate() error {
	if r.Lower.R > r.Upper.R || r.Lower.G > r.Upper.G || r.Lower.B > r.Upper.B {
		return fmt.Errorf("invalid RGB range %v-%v: lower bound above upper bound", r.Lower, r.Upper)
	}
	return nil
}

// InRangeHSV thresholds img in HSV space.
//
// The returned mask has the same size as img with bounds starting at (0,0).
// Pixels whose HSV value lies inside r (inclusive on all channels) are 255,
// all others 0.
func InRangeHSV(img image.Image, r HSVRange) *image.Gray {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	mask := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x := 0; x < w; x++ {
			if r.Contains(rgbToHSV(row[x*4], row[x*4+1], row[x*4+2])) {
				out[x] = 255
			}
		}
	}
	return mask
}

// InRangeRGB thresholds img in RGB space with the same conventions as InRangeHSV.
func InRangeRGB(img image.Image, r RGBRange) *image.Gray {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	mask := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x := 0; x < w; x++ {
			if r.Contains(RGBColor{R: row[x*4], G: row[x*4+1], B: row[x*4+2]}) {
				out[x] = 255
			}
		}
	}
	return mask
}

// ToGray converts img to 8-bit luminance with bounds starting at (0,0).
func ToGray(img image.Image) *image.Gray {
	src := imaging.Grayscale(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := 0; x < w; x++ {
			out[x] = row[x*4]
		}
	}
	return gray
}

// CountNonZero returns the number of set pixels in a mask.
func CountNonZero(mask *image.Gray) int {
	b := mask.Bounds()
	count := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[(y-b.Min.Y)*mask.Stride : (y-b.Min.Y)*mask.Stride+b.Dx()]
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}
