package tracker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VideoFormat is one side of a video mapping.
type VideoFormat struct {
	PixelFormat string  `json:"pixel_format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
}

func (f VideoFormat) String() string {
	return fmt.Sprintf("%s %d %d %s", f.PixelFormat, f.Width, f.Height, strconv.FormatFloat(f.FPS, 'f', -1, 64))
}

// VideoMapping binds a camera format and an output format to a module, in
// the form "OUTFMT OUTW OUTH OUTFPS CAMFMT CAMW CAMH CAMFPS VENDOR MODULE".
// An output format of NONE means the module runs headless.
type VideoMapping struct {
	Output  VideoFormat `json:"output"`
	Camera  VideoFormat `json:"camera"`
	Vendor  string      `json:"vendor"`
	Module  string      `json:"module"`
	Default bool        `json:"default,omitempty"`
}

// ParseVideoMapping parses a mapping line. A trailing "*" marks the default
// mapping.
func ParseVideoMapping(s string) (*VideoMapping, error) {
	fields := strings.Fields(s)
	m := &VideoMapping{}
	if len(fields) == 11 && fields[10] == "*" {
		m.Default = true
		fields = fields[:10]
	}
	if len(fields) != 10 {
		return nil, errors.Errorf("video mapping %q: expected 10 fields, got %d", s, len(fields))
	}

	var err error
	if m.Output, err = parseVideoFormat(fields[0:4]); err != nil {
		return nil, errors.Wrap(err, "output format")
	}
	if m.Camera, err = parseVideoFormat(fields[4:8]); err != nil {
		return nil, errors.Wrap(err, "camera format")
	}
	m.Vendor = fields[8]
	m.Module = fields[9]

	if m.Camera.Width <= 0 || m.Camera.Height <= 0 || m.Camera.FPS <= 0 {
		return nil, errors.Errorf("camera format %q must have a positive size and frame rate", m.Camera)
	}
	if !m.Headless() && (m.Output.Width <= 0 || m.Output.Height <= 0) {
		return nil, errors.Errorf("output format %q must have a positive size", m.Output)
	}
	return m, nil
}

func parseVideoFormat(f []string) (VideoFormat, error) {
	w, err := strconv.Atoi(f[1])
	if err != nil {
		return VideoFormat{}, errors.Errorf("width %q is not an integer", f[1])
	}
	h, err := strconv.Atoi(f[2])
	if err != nil {
		return VideoFormat{}, errors.Errorf("height %q is not an integer", f[2])
	}
	fps, err := strconv.ParseFloat(f[3], 64)
	if err != nil {
		return VideoFormat{}, errors.Errorf("frame rate %q is not a number", f[3])
	}
	if w < 0 || h < 0 || fps < 0 {
		return VideoFormat{}, errors.Errorf("negative size or frame rate in %v", f)
	}
	return VideoFormat{PixelFormat: strings.ToUpper(f[0]), Width: w, Height: h, FPS: fps}, nil
}

// Headless reports whether the mapping sends no video to the host.
func (m *VideoMapping) Headless() bool {
	return m.Output.PixelFormat == "NONE"
}

func (m *VideoMapping) String() string {
	s := fmt.Sprintf("%s %s %s %s", m.Output, m.Camera, m.Vendor, m.Module)
	if m.Default {
		s += " *"
	}
	return s
}
