//go:build gocv
// +build gocv

package tracker

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
	"github.com/ironsheep/retrotape-tracker/internal/imaging"
)

// GocvBackend implements Backend with OpenCV through gocv.
//
// OpenCV's Canny binding takes only the two thresholds, so the aperture,
// L2 and blur options are ignored here; the Hough seed is ignored as well.
type GocvBackend struct{}

func newGocvBackend() (Backend, error) {
	return GocvBackend{}, nil
}

// Name implements Backend.
func (GocvBackend) Name() string { return BackendGocv }

// Threshold implements Backend.
func (GocvBackend) Threshold(img image.Image, spec ThresholdSpec) (*image.Gray, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "convert frame")
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	switch spec.Space {
	case SpaceHSV:
		hsv := gocv.NewMat()
		defer hsv.Close()
		if err := gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV); err != nil {
			return nil, errors.Wrap(err, "cvtColor")
		}
		lo, hi := spec.HSV.Lower, spec.HSV.Upper
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(float64(lo.H), float64(lo.S), float64(lo.V), 0),
			gocv.NewScalar(float64(hi.H), float64(hi.S), float64(hi.V), 0),
			&dst)
	case SpaceRGB:
		// The Mat is BGR ordered.
		lo, hi := spec.RGB.Lower, spec.RGB.Upper
		gocv.InRangeWithScalar(src,
			gocv.NewScalar(float64(lo.B), float64(lo.G), float64(lo.R), 0),
			gocv.NewScalar(float64(hi.B), float64(hi.G), float64(hi.R), 0),
			&dst)
	case SpaceGray:
		if err := gocv.CvtColor(src, &dst, gocv.ColorBGRToGray); err != nil {
			return nil, errors.Wrap(err, "cvtColor")
		}
	default:
		return nil, errors.Errorf("unknown color space %q", spec.Space)
	}
	return matToGray(dst)
}

// Open implements Backend.
func (GocvBackend) Open(mask *image.Gray, size int) (*image.Gray, error) {
	if size <= 1 {
		return imaging.MorphOpen(mask, size), nil
	}
	src, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, errors.Wrap(err, "convert mask")
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: size, Y: size})
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.MorphologyEx(src, &dst, gocv.MorphOpen, kernel); err != nil {
		return nil, errors.Wrap(err, "morphologyEx")
	}
	return matToGray(dst)
}

// Canny implements Backend.
func (GocvBackend) Canny(gray *image.Gray, opts imaging.CannyOptions) (*image.Gray, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, errors.Wrap(err, "convert image")
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Canny(src, &dst, float32(opts.Low), float32(opts.High))
	return matToGray(dst)
}

// Lines implements Backend.
func (GocvBackend) Lines(edges *image.Gray, p detection.HoughParams) ([]detection.Line, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src, err := gocv.ImageGrayToMatGray(edges)
	if err != nil {
		return nil, errors.Wrap(err, "convert edges")
	}
	defer src.Close()

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(src, &lines, float32(p.Rho), float32(p.ThetaDeg*math.Pi/180),
		p.Threshold, float32(p.MinLineLength), float32(p.MaxLineGap))

	out := make([]detection.Line, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		out = append(out, detection.NewLine(int(v[0]), int(v[1]), int(v[2]), int(v[3])))
		if p.MaxLines > 0 && len(out) >= p.MaxLines {
			break
		}
	}
	return out, nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert result")
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	return imaging.ToGray(img), nil
}
