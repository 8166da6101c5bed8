package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// MorphOpen removes speckle noise from a mask with an erosion followed by a
// dilation using a square structuring element of the given size.
//
// Sizes of 1 or less leave the mask unchanged. Even sizes are rounded down to
// the next odd window (size 4 behaves like size 3).
func MorphOpen(mask *image.Gray, size int) *image.Gray {
	if size <= 1 {
		return cloneGray(mask)
	}
	radius := float64(size / 2)
	eroded := effect.Erode(mask, radius)
	opened := effect.Dilate(eroded, radius)
	return redChannel(opened)
}

// redChannel collapses an RGBA produced from a gray mask back to one channel.
func redChannel(src *image.RGBA) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			dst[x] = row[x*4]
		}
	}
	return out
}

func cloneGray(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
	return out
}
