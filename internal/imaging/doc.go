// Package imaging provides the pixel-level operations of the tape tracking pipeline.
//
// This package implements frame decoding and caching, color-space conversion,
// range thresholding, morphological noise removal, Canny edge detection, and
// the drawing primitives used to annotate output frames. All operations work
// with standard Go image types and use a coordinate system where (0,0) is at
// the top-left corner, X increases rightward, and Y increases downward.
//
// # Masks
//
// Thresholding, morphology and edge detection produce *image.Gray masks whose
// bounds start at (0,0). A pixel is "set" when its value is non-zero; the
// functions in this package always write 255 for set pixels and 0 otherwise.
//
// # Color Representation
//
// HSV values follow the 8-bit convention used by OpenCV so that threshold
// values tuned on other tools carry over unchanged:
//   - H: 0-179 (degrees divided by two)
//   - S: 0-255
//   - V: 0-255
//
// # Edge Detection Scale
//
// Canny thresholds are compared against the raw Sobel gradient magnitude, not
// a normalized one. With the 3x3 aperture a full black-to-white step produces
// a magnitude of 1020, so the usual 50/150 thresholds pick up any clean step
// in a mask.
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. All other functions are stateless and
// allocate their outputs, so they can be called concurrently on different
// frames.
package imaging
