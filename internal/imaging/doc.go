// Package imaging provides the image plumbing shared by the color and pattern
// pipelines.
//
// It covers loading and caching fabric photographs, cropping to a region of
// interest with an alpha mask, single-channel float planes, classic filters
// (Sobel, bilateral, CLAHE, Canny), binary masks with morphology and connected
// components, 2-D FFTs, colormaps for diff visualizations, histograms, and PNG
// encoding of in-memory artifacts.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive and Max is exclusive
//
// Cropping returns the offset of the crop in the source image. Sampling points
// are kept in global (source) coordinates and converted by subtracting that
// offset at pixel access time.
//
// # Planes and Masks
//
// A Plane holds float64 intensities. Planes derived from 8-bit images use the
// 0-255 range; normalized planes use 0-1. A Mask holds booleans. Both are
// row-major, anchored at (0,0), and never modified in place by the functions
// in this package: every operation returns a new value.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different inputs.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions that are incomplete or do not overlap the image
//   - File I/O errors during image loading
//   - Encoding errors during image output
package imaging
