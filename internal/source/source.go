// Package source supplies camera frames to the run loop.
package source

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/imaging"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// Source produces frames in order. Next returns io.EOF when no frames remain.
type Source interface {
	Next(ctx context.Context) (tracker.Frame, error)
	Close() error
}

// CameraPrefix selects a capture device in Open, e.g. "camera:0".
const CameraPrefix = "camera:"

// Open returns a source for uri: "camera:N" opens capture device N with the
// given format, a directory plays its images in name order and a file plays
// that single image. loop restarts file sources when they run out.
func Open(uri string, format tracker.VideoFormat, loop bool) (Source, error) {
	if rest, ok := strings.CutPrefix(uri, CameraPrefix); ok {
		device, err := strconv.Atoi(rest)
		if err != nil {
			return nil, errors.Errorf("camera device %q is not a number", rest)
		}
		return NewCameraSource(device, format)
	}

	info, err := os.Stat(uri)
	if err != nil {
		return nil, errors.Wrap(err, "open source")
	}
	if info.IsDir() {
		return NewDirSource(uri, loop)
	}
	return newFileSource([]string{uri}, loop), nil
}

var frameExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// DirSource plays still images from disk as if they came from a camera.
type DirSource struct {
	paths []string
	loop  bool
	next  int
	seq   uint64
}

// NewDirSource lists the images in dir. Files are played in name order;
// other files and subdirectories are skipped.
func NewDirSource(dir string, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read frame directory")
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no frames in %s", dir)
	}
	return newFileSource(paths, loop), nil
}

func newFileSource(paths []string, loop bool) *DirSource {
	return &DirSource{paths: paths, loop: loop}
}

// Len returns the number of distinct frames.
func (s *DirSource) Len() int { return len(s.paths) }

// Next decodes the next image.
func (s *DirSource) Next(ctx context.Context) (tracker.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Frame{}, err
	}
	if s.next >= len(s.paths) {
		if !s.loop {
			return tracker.Frame{}, io.EOF
		}
		s.next = 0
	}

	path := s.paths[s.next]
	s.next++
	img, err := imaging.LoadFrame(path)
	if err != nil {
		return tracker.Frame{}, errors.Wrap(err, path)
	}
	s.seq++
	return tracker.Frame{Image: img, Seq: s.seq, Time: time.Now()}, nil
}

// Close implements Source.
func (s *DirSource) Close() error { return nil }

// StaticSource repeats one in-memory image. It backs tests and benchmarks.
type StaticSource struct {
	Image image.Image
	Count int
	seq   uint64
}

// Next implements Source.
func (s *StaticSource) Next(ctx context.Context) (tracker.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Frame{}, err
	}
	if s.Count > 0 && int(s.seq) >= s.Count {
		return tracker.Frame{}, io.EOF
	}
	s.seq++
	return tracker.Frame{Image: s.Image, Seq: s.seq, Time: time.Now()}, nil
}

// Close implements Source.
func (s *StaticSource) Close() error { return nil }
