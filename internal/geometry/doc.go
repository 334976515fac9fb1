// Package geometry defines the rectangle and coordinate-space model used to
// map user selections on a displayed image back to the original pixels.
//
// # Coordinate Spaces
//
// Two pixel spaces are involved:
//   - Display-space: coordinates of the image as rendered to the user, after
//     it has been fitted to the width of its container.
//   - Source-space: coordinates of the original, full-resolution image.
//
// Both use the standard image convention: origin (0, 0) at the top-left,
// X increasing rightward and Y increasing downward.
//
// A DisplayImage carries the dimensions of both spaces. Its scale factor is
// SourceWidth / DisplayWidth and applies to both axes, because the display
// height is always derived from the width to preserve the aspect ratio.
//
// # Rectangles
//
// A Rect is drawn by dragging from a start point, so while a drag is in
// progress its Width and Height may be negative. Normalize turns any Rect into
// the equivalent top-left-origin form with non-negative extents. Only
// normalized rectangles wider and taller than SelectionThreshold are
// committed as regions.
//
// All functions in this package are pure and safe for concurrent use.
package geometry
