// Package detection finds line segments in edge maps and turns them into a
// tape target location.
//
// # Line Detection
//
// HoughLinesP implements the progressive probabilistic Hough transform. Edge
// pixels are visited in a pseudo-random order controlled by a seed, so the
// same edge map and parameters always produce the same segments. Each visited
// pixel votes in a (rho, theta) accumulator; as soon as one cell reaches the
// vote threshold, the segment through that pixel is traced in both
// directions, bridging gaps of up to MaxLineGap pixels. Segments that are long
// enough are emitted and their pixels withdrawn from the accumulator so they
// do not vote for anything else.
//
// # Target Location
//
// LocateTarget filters segments by their deviation from vertical (tape strips
// are mounted upright) and reports the bounding box of the survivors. An empty
// edge map or a frame without qualifying segments is not an error: the result
// is simply nil.
//
// # Coordinate System
//
// All pixel coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes are inclusive on both corners
//
// Standardized coordinates are independent of the camera resolution. X runs
// from -1000 at the left edge to 1000 at the right edge and Y uses the same
// scale, so a 4:3 frame spans -750 to 750 vertically. The origin is the frame
// center.
package detection
