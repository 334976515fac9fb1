// Package imaging turns user-selected regions of an uploaded photo into
// clean line images for handwriting recognition.
//
// The package covers three concerns:
//   - Input: validating and decoding uploads (type, size and decodability
//     checks) and caching decoded files by path.
//   - Extraction: cropping a display-space rectangle out of the
//     full-resolution image, padding it with white, optionally rescaling it,
//     and enhancing its contrast.
//   - Output: lossless PNG encoding plus small drawing helpers (grid,
//     labels, colors) used by the canvas renderer.
//
// # Extraction Pipeline
//
// Extract maps a rectangle from display-space to source pixels, allocates a
// white buffer with DefaultPadding pixels of margin on every side, draws the
// region into it, and runs EnhanceContrast:
//
//	avg = (R + G + B) / 3
//	v   = clamp(0, 255, (avg - 128) * 1.5 + 128)
//
// v is written to all three color channels and alpha is preserved. The
// transform is fixed-gain rather than histogram based, so equal inputs
// always give equal outputs.
//
// # Coordinate System
//
// Source-space rectangles follow the image package convention: Min is
// inclusive, Max is exclusive, and (0,0) is the top-left pixel of the image.
// Regions extending past the image edge are clipped; the uncovered part of
// the output stays white.
//
// # Error Handling
//
// Upload failures return *InvalidImageError (errors.Is ErrInvalidImage).
// Extraction failures return *ExtractionError (errors.Is ErrExtraction).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Extract does not mutate its source
// image and may be called concurrently; EnhanceContrast mutates its argument.
package imaging
