package detection

import (
	"fmt"
	"image"
	"math"
	"math/rand"
)

// HoughParams configures HoughLinesP.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64 `json:"rho"`

	// ThetaDeg is the angle resolution of the accumulator in degrees.
	ThetaDeg float64 `json:"theta_deg"`

	// Threshold is the number of votes a cell needs before a segment is traced.
	Threshold int `json:"threshold"`

	// MinLineLength is the minimum horizontal or vertical extent of a segment.
	MinLineLength int `json:"min_line_length"`

	// MaxLineGap is the largest run of missing pixels bridged while tracing.
	MaxLineGap int `json:"max_line_gap"`

	// MaxLines stops detection once this many segments are found. 0 means
	// no limit.
	MaxLines int `json:"max_lines"`

	// Seed fixes the order in which edge pixels are visited.
	Seed int64 `json:"seed"`
}

// DefaultHoughParams returns a 1 pixel / 1 degree accumulator with a vote
// threshold of 30, segments of at least 20 pixels and gaps up to 10 pixels.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Rho:           1,
		ThetaDeg:      1,
		Threshold:     30,
		MinLineLength: 20,
		MaxLineGap:    10,
		MaxLines:      50,
		Seed:          1,
	}
}

// Validate checks the accumulator resolution and limits.
func (p HoughParams) Validate() error {
	if !(p.Rho > 0) || math.IsInf(p.Rho, 0) {
		return fmt.Errorf("rho must be positive, got %g", p.Rho)
	}
	if !(p.ThetaDeg > 0 && p.ThetaDeg <= 180) {
		return fmt.Errorf("theta must be within (0, 180] degrees, got %g", p.ThetaDeg)
	}
	if p.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", p.Threshold)
	}
	if p.MinLineLength < 0 || p.MaxLineGap < 0 || p.MaxLines < 0 {
		return fmt.Errorf("line length, gap and count limits must be non-negative")
	}
	return nil
}

// fixedShift is the number of fractional bits used while stepping along a
// segment.
const fixedShift = 16

// HoughLinesP finds line segments in an edge map with the progressive
// probabilistic Hough transform.
//
// Any non-zero pixel of edges is an edge point. Returned coordinates are
// relative to the edge map's top-left corner. A map without segments yields
// an empty, non-nil slice.
func HoughLinesP(edges *image.Gray, p HoughParams) ([]Line, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	lines := make([]Line, 0)
	if width == 0 || height == 0 {
		return lines, nil
	}

	theta := p.ThetaDeg * math.Pi / 180
	numAngle := int(math.Round(math.Pi / theta))
	numRho := int(math.Ceil(float64((width+height)*2+1) / p.Rho))
	if numRho%2 == 0 {
		numRho++
	}
	rhoOffset := (numRho - 1) / 2
	if numAngle < 1 {
		numAngle = 1
	}

	irho := 1 / p.Rho
	cosTab := make([]float64, numAngle)
	sinTab := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		a := float64(n) * theta
		cosTab[n] = math.Cos(a) * irho
		sinTab[n] = math.Sin(a) * irho
	}

	accum := make([]int, numAngle*numRho)
	mask := make([]bool, width*height)
	voted := make([]bool, width*height)
	points := make([]Point, 0)
	for y := 0; y < height; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+width]
		for x, v := range row {
			if v != 0 {
				mask[y*width+x] = true
				points = append(points, Point{X: x, Y: y})
			}
		}
	}

	rng := rand.New(rand.NewSource(p.Seed))
	rng.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})

	vote := func(x, y, delta int) (best, bestVotes int) {
		bestVotes = p.Threshold - 1
		for n := 0; n < numAngle; n++ {
			r := int(math.Round(float64(x)*cosTab[n]+float64(y)*sinTab[n])) + rhoOffset
			if r < 0 || r >= numRho {
				continue
			}
			cell := &accum[n*numRho+r]
			*cell += delta
			if *cell > bestVotes {
				bestVotes = *cell
				best = n
			}
		}
		return best, bestVotes
	}

	for _, pt := range points {
		if !mask[pt.Y*width+pt.X] {
			continue
		}

		n, votes := vote(pt.X, pt.Y, 1)
		voted[pt.Y*width+pt.X] = true
		if votes < p.Threshold {
			continue
		}

		// Step one pixel at a time along the dominant axis of the line
		// direction, tracking the minor axis in fixed point.
		a := -sinTab[n] / irho
		b := cosTab[n] / irho
		x0, y0 := pt.X, pt.Y
		var dx0, dy0 int
		xMajor := math.Abs(a) > math.Abs(b)
		if xMajor {
			dx0 = sign(a)
			dy0 = int(math.Round(b * (1 << fixedShift) / math.Abs(a)))
			y0 = y0<<fixedShift + 1<<(fixedShift-1)
		} else {
			dy0 = sign(b)
			dx0 = int(math.Round(a * (1 << fixedShift) / math.Abs(b)))
			x0 = x0<<fixedShift + 1<<(fixedShift-1)
		}
		pixel := func(x, y int) (int, int) {
			if xMajor {
				return x, y >> fixedShift
			}
			return x >> fixedShift, y
		}

		var ends [2]Point
		for k := 0; k < 2; k++ {
			x, y, dx, dy := x0, y0, dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			gap := 0
			for ; ; x, y = x+dx, y+dy {
				px, py := pixel(x, y)
				if px < 0 || px >= width || py < 0 || py >= height {
					break
				}
				if mask[py*width+px] {
					gap = 0
					ends[k] = Point{X: px, Y: py}
				} else {
					gap++
					if gap > p.MaxLineGap {
						break
					}
				}
			}
		}

		good := abs(ends[1].X-ends[0].X) >= p.MinLineLength ||
			abs(ends[1].Y-ends[0].Y) >= p.MinLineLength

		// Walk the segment again, clearing its pixels and, for accepted
		// segments, withdrawing the votes they already cast.
		for k := 0; k < 2; k++ {
			x, y, dx, dy := x0, y0, dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			for ; ; x, y = x+dx, y+dy {
				px, py := pixel(x, y)
				if idx := py*width + px; mask[idx] {
					if good && voted[idx] {
						vote(px, py, -1)
					}
					mask[idx] = false
				}
				if px == ends[k].X && py == ends[k].Y {
					break
				}
			}
		}

		if good {
			lines = append(lines, NewLine(ends[0].X, ends[0].Y, ends[1].X, ends[1].Y))
			if p.MaxLines > 0 && len(lines) >= p.MaxLines {
				break
			}
		}
	}

	return lines, nil
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
