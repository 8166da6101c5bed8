package tracker

import (
	"image"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
	"github.com/ironsheep/retrotape-tracker/internal/imaging"
)

// ColorSpace selects how a frame is reduced to one channel before edge
// detection.
type ColorSpace string

const (
	// SpaceHSV thresholds in 8-bit HSV.
	SpaceHSV ColorSpace = "hsv"
	// SpaceRGB thresholds in RGB.
	SpaceRGB ColorSpace = "rgb"
	// SpaceGray skips thresholding and uses luminance directly.
	SpaceGray ColorSpace = "gray"
)

// ThresholdSpec describes the thresholding stage.
type ThresholdSpec struct {
	Space ColorSpace
	HSV   imaging.HSVRange
	RGB   imaging.RGBRange
}

// Validate checks the range used by the selected color space.
func (t ThresholdSpec) Validate() error {
	var err error
	switch t.Space {
	case SpaceHSV:
		err = t.HSV.Validate()
	case SpaceRGB:
		err = t.RGB.Validate()
	case SpaceGray:
	default:
		err = errors.Errorf("unknown color space %q", t.Space)
	}
	if err != nil {
		return errors.Wrap(ErrInvalidValue, err.Error())
	}
	return nil
}

// Backend runs the vision stages of the pipeline. Every method returns
// images with bounds starting at (0,0).
type Backend interface {
	Name() string
	Threshold(img image.Image, spec ThresholdSpec) (*image.Gray, error)
	Open(mask *image.Gray, size int) (*image.Gray, error)
	Canny(gray *image.Gray, opts imaging.CannyOptions) (*image.Gray, error)
	Lines(edges *image.Gray, p detection.HoughParams) ([]detection.Line, error)
}

// Backend names accepted by NewBackend.
const (
	BackendNative = "native"
	BackendGocv   = "gocv"
)

// NewBackend returns the backend registered under name. An empty name
// selects the pure Go backend.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", BackendNative:
		return NativeBackend{}, nil
	case BackendGocv:
		return newGocvBackend()
	}
	return nil, errors.Errorf("unknown backend %q", name)
}

// NativeBackend implements Backend with the pure Go imaging and detection
// packages.
type NativeBackend struct{}

// Name implements Backend.
func (NativeBackend) Name() string { return BackendNative }

// Threshold implements Backend.
func (NativeBackend) Threshold(img image.Image, spec ThresholdSpec) (*image.Gray, error) {
	switch spec.Space {
	case SpaceHSV:
		return imaging.InRangeHSV(img, spec.HSV), nil
	case SpaceRGB:
		return imaging.InRangeRGB(img, spec.RGB), nil
	case SpaceGray:
		return imaging.ToGray(img), nil
	}
	return nil, errors.Errorf("unknown color space %q", spec.Space)
}

// Open implements Backend.
func (NativeBackend) Open(mask *image.Gray, size int) (*image.Gray, error) {
	return imaging.MorphOpen(mask, size), nil
}

// Canny implements Backend.
func (NativeBackend) Canny(gray *image.Gray, opts imaging.CannyOptions) (*image.Gray, error) {
	return imaging.Canny(gray, opts)
}

// Lines implements Backend.
func (NativeBackend) Lines(edges *image.Gray, p detection.HoughParams) ([]detection.Line, error) {
	return detection.HoughLinesP(edges, p)
}
