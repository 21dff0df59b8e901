// Package sampler reads single-pixel colors out of decoded images.
//
// A Sampler owns two caches:
//   - a SurfaceCache holding one decoded drawable surface per image, so an
//     image is decoded at most once no matter how many points are sampled;
//   - a bounded FIFO cache of sampled pixels keyed by (image key, x, y).
//     When it is full the oldest inserted entry is evicted, regardless of how
//     recently it was read.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner of the
// image's intrinsic (natural) pixel grid:
//   - Valid X range: 0 to width-1
//   - Valid Y range: 0 to height-1
//
// When an image has not been decoded yet, its dimensions are taken from the
// source itself: intrinsic size if the source can report it, otherwise its
// nominal (display) size. Once decoded, the surface bounds win.
//
// # Errors
//
//   - ErrOutOfBounds: a coordinate falls outside the image. The concrete
//     *OutOfBoundsError names the axis, the value and the image size.
//   - ErrDecodeFailure: the image could not be decoded, or has zero width or
//     height.
//
// Batch extraction is all-or-nothing: the first bad coordinate aborts the
// call and no results are returned.
//
// # Thread Safety
//
// Sampler and SurfaceCache are safe for concurrent use. Concurrent requests
// for the same undecoded image share one decode. Decoding blocks the caller
// and cannot be cancelled once started.
package sampler
