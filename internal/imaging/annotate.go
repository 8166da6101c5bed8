package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Colors used when annotating output frames.
var (
	ColorLine   = color.RGBA{R: 255, A: 255}
	ColorTarget = color.RGBA{G: 255, A: 255}
	ColorText   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
// The leading '#' is optional.
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: want 6 or 8 digits", hex)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	if len(hex) == 6 {
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	}
	return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}

// HexColor formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func HexColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// TextHeight is the line height of the font used by WriteText.
const TextHeight = 13

// ToRGBA copies img into a new RGBA image with bounds starting at (0,0).
// Gray masks come out as gray RGB, which is what the output stream carries.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// DrawLine draws a one pixel wide line between two points using Bresenham's
// algorithm. Points outside the image are clipped.
func DrawLine(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	bounds := img.Bounds()
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		if image.Pt(x0, y0).In(bounds) {
			img.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawRect outlines r.
func DrawRect(img draw.Image, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	DrawLine(img, x0, y0, x1, y0, c)
	DrawLine(img, x1, y0, x1, y1, c)
	DrawLine(img, x1, y1, x0, y1, c)
	DrawLine(img, x0, y1, x0, y0, c)
}

// DrawCrosshair draws a small plus sign centered on (x, y).
func DrawCrosshair(img draw.Image, x, y, size int, c color.Color) {
	DrawLine(img, x-size, y, x+size, y, c)
	DrawLine(img, x, y-size, x, y+size, c)
}

// WriteText renders s with its top-left corner at (x, y) using a fixed 7x13
// bitmap font.
func WriteText(img draw.Image, x, y int, s string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
