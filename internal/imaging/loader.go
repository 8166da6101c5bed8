package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// FrameCache provides thread-safe caching of decoded frames keyed by file path.
//
// The host control channel processes frames referenced by path. Repeated
// requests for the same path (for example while tuning thresholds on a
// captured frame) reuse the decoded image instead of reading the disk again.
//
// Cached frames remain in memory until removed via Evict() or Clear().
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]cachedFrame
}

// cachedFrame remembers the file version a frame was decoded from.
type cachedFrame struct {
	img     image.Image
	modTime time.Time
	size    int64
}

// NewFrameCache creates an empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]cachedFrame),
	}
}

// Load retrieves a frame from the cache or decodes it from disk if not cached.
//
// Supported formats are PNG, JPEG and GIF. The frame is cached using the exact
// path string provided; a file rewritten since it was cached (new modification
// time or size) is decoded again.
func (c *FrameCache) Load(path string) (image.Image, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}

	c.mu.RLock()
	cached, ok := c.frames[path]
	c.mu.RUnlock()
	if ok && cached.modTime.Equal(stat.ModTime()) && cached.size == stat.Size() {
		return cached.img, nil
	}

	img, err := LoadFrame(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.frames[path] = cachedFrame{img: img, modTime: stat.ModTime(), size: stat.Size()}
	c.mu.Unlock()

	return img, nil
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]cachedFrame)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// LoadFrame decodes a single frame from disk without caching it.
func LoadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	return DecodeFrame(f)
}

// DecodeFrame decodes a PNG, JPEG or GIF frame from r.
func DecodeFrame(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// Format identifies an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat maps a format name or file extension to a Format.
// Unknown names fall back to PNG.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// MimeType returns the MIME type for the format.
func (f Format) MimeType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// EncodeFrame writes img to w in the given format.
func EncodeFrame(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(85))
	default:
		err = imaging.Encode(w, img, imaging.PNG)
	}
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}

// EncodeBase64 encodes img in the given format and returns it as base64.
func EncodeBase64(img image.Image, format Format) (string, error) {
	var buf bytes.Buffer
	if err := EncodeFrame(&buf, img, format); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SaveFrame writes img to path, choosing the encoding from the extension.
func SaveFrame(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}

// FrameInfo contains metadata about a frame file.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame through the cache and returns its metadata.
func LoadFrameInfo(cache *FrameCache, path string) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	bounds := img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
