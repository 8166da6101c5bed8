//go:build gocv
// +build gocv

package source

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// CameraSource grabs frames from an OpenCV capture device.
type CameraSource struct {
	mu     sync.Mutex
	device int
	webcam *gocv.VideoCapture
	mat    gocv.Mat
	seq    uint64
}

// NewCameraSource opens capture device and requests format. Zero fields in
// format leave the device default.
func NewCameraSource(device int, format tracker.VideoFormat) (Source, error) {
	webcam, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		return nil, errors.Wrapf(err, "open camera %d", device)
	}
	if format.Width > 0 && format.Height > 0 {
		webcam.Set(gocv.VideoCaptureFrameWidth, float64(format.Width))
		webcam.Set(gocv.VideoCaptureFrameHeight, float64(format.Height))
	}
	if format.FPS > 0 {
		webcam.Set(gocv.VideoCaptureFPS, format.FPS)
	}
	return &CameraSource{device: device, webcam: webcam, mat: gocv.NewMat()}, nil
}

// Next reads the next frame, skipping empty grabs.
func (c *CameraSource) Next(ctx context.Context) (tracker.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return tracker.Frame{}, err
		}
		if ok := c.webcam.Read(&c.mat); !ok {
			return tracker.Frame{}, errors.Errorf("cannot read camera %d", c.device)
		}
		if c.mat.Empty() {
			continue
		}
		img, err := c.mat.ToImage()
		if err != nil {
			return tracker.Frame{}, errors.Wrap(err, "convert camera frame")
		}
		c.seq++
		return tracker.Frame{Image: img, Seq: c.seq, Time: time.Now()}, nil
	}
}

// Close releases the device.
func (c *CameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mat.Close()
	return c.webcam.Close()
}
