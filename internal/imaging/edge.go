package imaging

import (
	"fmt"
	"image"
	"math"
)

// CannyOptions configures Canny edge detection.
type CannyOptions struct {
	// Low is the hysteresis threshold below which gradients are discarded.
	Low float64 `json:"low"`

	// High is the hysteresis threshold above which gradients are always kept.
	High float64 `json:"high"`

	// Aperture is the Sobel kernel size: 3, 5 or 7.
	Aperture int `json:"aperture"`

	// L2Gradient selects sqrt(gx²+gy²) for the magnitude instead of |gx|+|gy|.
	L2Gradient bool `json:"l2_gradient"`

	// Blur applies a 5x5 Gaussian before computing gradients. Masks coming
	// out of thresholding are already clean, so this is off by default.
	Blur bool `json:"blur"`
}

// DefaultCannyOptions returns thresholds of 50/150 with a 3x3 aperture and
// the L1 magnitude.
func DefaultCannyOptions() CannyOptions {
	return CannyOptions{Low: 50, High: 150, Aperture: 3}
}

// Validate checks the aperture and threshold values.
func (o CannyOptions) Validate() error {
	if _, ok := sobelKernels[o.Aperture]; !ok {
		return fmt.Errorf("aperture must be 3, 5 or 7, got %d", o.Aperture)
	}
	if !(o.Low >= 0) || !(o.High >= 0) {
		return fmt.Errorf("thresholds must be non-negative, got %g/%g", o.Low, o.High)
	}
	return nil
}

// sobelKernel holds the separable smoothing and derivative halves of a Sobel
// operator.
type sobelKernel struct {
	smooth []float64
	deriv  []float64
}

var sobelKernels = map[int]sobelKernel{
	3: {
		smooth: []float64{1, 2, 1},
		deriv:  []float64{-1, 0, 1},
	},
	5: {
		smooth: []float64{1, 4, 6, 4, 1},
		deriv:  []float64{-1, -2, 0, 2, 1},
	},
	7: {
		smooth: []float64{1, 6, 15, 20, 15, 6, 1},
		deriv:  []float64{-1, -4, -5, 0, 5, 4, 1},
	},
}

// Canny detects edges in a single-channel image.
//
// The result has the same size as gray with bounds starting at (0,0); edge
// pixels are 255 and all others 0.
//
// # Algorithm
//
//  1. Optional 5x5 Gaussian blur.
//
//  2. Gradient computation with a separable Sobel operator of the configured
//     aperture. Borders replicate the outermost pixels.
//
//  3. Non-maximum suppression along the gradient direction, quantized to
//     four bins. Ties along a horizontal or vertical run keep the first
//     pixel (left or top) so that a clean step yields a one pixel wide edge.
//
//  4. Hysteresis: pixels above High seed edges, which then grow through
//     8-connected pixels above Low.
//
// Thresholds are compared against the unnormalized gradient magnitude. If
// Low is greater than High the two are swapped.
func Canny(gray *image.Gray, opts CannyOptions) (*image.Gray, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	low, high := opts.Low, opts.High
	if low > high {
		low, high = high, low
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return result, nil
	}

	src := make([][]float64, height)
	for y := 0; y < height; y++ {
		src[y] = make([]float64, width)
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x, v := range row {
			src[y][x] = float64(v)
		}
	}
	if opts.Blur {
		src = gaussianBlur(src, width, height)
	}

	gradX, gradY := sobel(src, width, height, sobelKernels[opts.Aperture])

	magnitude := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			gx, gy := gradX[y][x], gradY[y][x]
			if opts.L2Gradient {
				magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			} else {
				magnitude[y][x] = math.Abs(gx) + math.Abs(gy)
			}
		}
	}

	// Out-of-image neighbors count as zero magnitude.
	magAt := func(x, y int) float64 {
		if x < 0 || x >= width || y < 0 || y >= height {
			return 0
		}
		return magnitude[y][x]
	}

	// Non-maximum suppression. 0 = not an edge, 1 = weak candidate, 2 = strong.
	state := make([]uint8, width*height)
	stack := make([]int, 0, 64)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mag := magnitude[y][x]
			if mag <= low {
				continue
			}

			angle := math.Atan2(gradY[y][x], gradX[y][x])
			var keep bool
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				keep = mag > magAt(x-1, y) && mag >= magAt(x+1, y)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				keep = mag > magAt(x, y-1) && mag >= magAt(x, y+1)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				// Gradient points down-right or up-left (Y grows downward).
				keep = mag > magAt(x-1, y-1) && mag > magAt(x+1, y+1)
			default:
				keep = mag > magAt(x+1, y-1) && mag > magAt(x-1, y+1)
			}
			if !keep {
				continue
			}

			idx := y*width + x
			if mag > high {
				state[idx] = 2
				stack = append(stack, idx)
			} else {
				state[idx] = 1
			}
		}
	}

	// Hysteresis: grow strong edges through connected candidates.
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := idx%width, idx/width
		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				nx, ny := cx+kx, cy+ky
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if state[n] == 1 {
					state[n] = 2
					stack = append(stack, n)
				}
			}
		}
	}

	for i, s := range state {
		if s == 2 {
			result.Pix[(i/width)*result.Stride+i%width] = 255
		}
	}
	return result, nil
}

// sobel computes horizontal and vertical derivatives with a separable kernel.
//
// gx smooths along Y and differentiates along X; gy does the opposite.
func sobel(img [][]float64, width, height int, k sobelKernel) (gx, gy [][]float64) {
	r := len(k.smooth) / 2

	// First pass along X: derivative for gx, smoothing for gy.
	dx := make([][]float64, height)
	sx := make([][]float64, height)
	for y := 0; y < height; y++ {
		dx[y] = make([]float64, width)
		sx[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var d, s float64
			for i := -r; i <= r; i++ {
				v := img[y][clamp(x+i, 0, width-1)]
				d += v * k.deriv[i+r]
				s += v * k.smooth[i+r]
			}
			dx[y][x] = d
			sx[y][x] = s
		}
	}

	// Second pass along Y.
	gx = make([][]float64, height)
	gy = make([][]float64, height)
	for y := 0; y < height; y++ {
		gx[y] = make([]float64, width)
		gy[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var a, b float64
			for i := -r; i <= r; i++ {
				py := clamp(y+i, 0, height-1)
				a += dx[py][x] * k.smooth[i+r]
				b += sx[py][x] * k.deriv[i+r]
			}
			gx[y][x] = a
			gy[y][x] = b
		}
	}
	return gx, gy
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img [][]float64, width, height int) [][]float64 {
	kernel := [][]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py][px] * kernel[ky+2][kx+2]
				}
			}
			result[y][x] = sum / kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
