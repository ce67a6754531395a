// Package raster wraps a decoded single-band grid with its
// georeferencing metadata and exposes the pixel addressing primitives
// the rest of the toolkit builds on.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner of the
// grid; col increases rightward and row increases downward. Pixel (c, r)
// covers the half-open square [c, c+1) x [r, r+1) in continuous pixel
// space, so its center is at (c+0.5, r+0.5). The Affine transform maps
// continuous pixel coordinates to world coordinates and back; the two
// directions round-trip within floating-point epsilon.
//
// # Nodata
//
// A raster optionally declares a nodata sentinel. For floating-point
// grids NaN is always treated as nodata even when the sentinel differs;
// for integer-valued grids the sentinel matches exactly. The sentinel is
// an explicit field on the Raster value, never ambient state.
//
// # Thread Safety
//
// Raster values are read-only after construction and safe to share
// across goroutines. Cache is safe for concurrent use.
package raster
