package imaging

import (
	"image"
	"testing"
)

// createMask returns a width x height mask with a filled block and the given
// isolated specks.
func createMask(width, height int, block image.Rectangle, specks ...image.Point) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}
	for _, p := range specks {
		mask.Pix[p.Y*mask.Stride+p.X] = 255
	}
	return mask
}

func TestMorphOpen(t *testing.T) {
	block := image.Rect(20, 20, 40, 40)
	mask := createMask(64, 64, block, image.Pt(5, 5), image.Pt(50, 10), image.Pt(10, 55))

	opened := MorphOpen(mask, 3)

	if got := CountNonZero(opened); got != 400 {
		t.Errorf("CountNonZero after open = %d, want 400", got)
	}
	for _, p := range []image.Point{{5, 5}, {50, 10}, {10, 55}} {
		if opened.GrayAt(p.X, p.Y).Y != 0 {
			t.Errorf("speck at %v survived opening", p)
		}
	}
	if opened.GrayAt(20, 20).Y != 255 || opened.GrayAt(39, 39).Y != 255 {
		t.Error("block corners eroded away")
	}
}

func TestMorphOpen_SizeOne(t *testing.T) {
	mask := createMask(16, 16, image.Rect(4, 4, 8, 8), image.Pt(1, 1))

	for _, size := range []int{0, 1} {
		out := MorphOpen(mask, size)
		if got := CountNonZero(out); got != 17 {
			t.Errorf("size %d: CountNonZero = %d, want 17", size, got)
		}
		if &out.Pix[0] == &mask.Pix[0] {
			t.Errorf("size %d: result aliases input", size)
		}
	}
}
