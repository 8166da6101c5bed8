package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// BannerHeight is the height of the header and footer bands added by Compose.
const BannerHeight = 20

// Compose builds an output frame from a processed panel.
//
// The result is as wide as panel and 2*BannerHeight taller. The panel sits
// between a header band carrying header and a footer band carrying footer,
// both drawn in white on black. Empty strings leave their band blank.
func Compose(panel image.Image, header, footer string) *image.NRGBA {
	w, h := panel.Bounds().Dx(), panel.Bounds().Dy()
	out := imaging.New(w, h+2*BannerHeight, color.Black)
	out = imaging.Paste(out, panel, image.Pt(0, BannerHeight))

	textTop := (BannerHeight - TextHeight) / 2
	if header != "" {
		WriteText(out, 3, textTop, header, ColorText)
	}
	if footer != "" {
		WriteText(out, 3, h+BannerHeight+textTop, footer, ColorText)
	}
	return out
}

// Resize scales img to w x h. A zero dimension preserves the aspect ratio.
func Resize(img image.Image, w, h int) (*image.NRGBA, error) {
	if w < 0 || h < 0 || (w == 0 && h == 0) {
		return nil, fmt.Errorf("invalid target size %dx%d", w, h)
	}
	b := img.Bounds()
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, w, h, imaging.Linear), nil
}
