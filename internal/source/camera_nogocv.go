//go:build !gocv
// +build !gocv

package source

import (
	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// NewCameraSource needs OpenCV; build with -tags gocv to capture from a
// camera.
func NewCameraSource(device int, format tracker.VideoFormat) (Source, error) {
	return nil, errors.Errorf("camera %d: gocv build tag is not enabled", device)
}
