package tracker

import (
	"image"
	"time"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
)

// Frame is one camera image handed to a module.
type Frame struct {
	Image image.Image
	Seq   uint64
	Time  time.Time
}

// Result is what a module produced for one frame.
type Result struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`

	// Output is the composed output frame. It is nil for headless processing.
	Output image.Image `json:"-"`

	// MaskPixels is the number of non-zero pixels after thresholding.
	MaskPixels int `json:"mask_pixels"`

	// EdgePixels is the number of edge pixels found by Canny.
	EdgePixels int `json:"edge_pixels"`

	Lines []detection.Line `json:"lines"`

	// Target is nil when no qualifying lines were found.
	Target *detection.Target `json:"target,omitempty"`

	// Serial is the message sent to the serial port, empty when nothing was
	// found or serial output is disabled.
	Serial string `json:"serial,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// Found reports whether a target was located.
func (r *Result) Found() bool {
	return r != nil && r.Target != nil
}
