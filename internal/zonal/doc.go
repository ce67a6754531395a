// Package zonal aggregates raster samples over polygon zones.
//
// For each zone the engine reconciles the geometry to the raster CRS,
// builds a pixel coverage mask, intersects it with the raster's nodata
// mask, and computes summary statistics over the surviving values. Two
// strategies implement one correctness contract: the "mask" engine
// rasterizes every zone against the full grid (simple, reference
// behavior, peak memory is always the whole raster), while the "window"
// engine restricts each zone to its bounding-box window (peak memory is
// the largest zone's window). Their results are identical; only the
// cost profiles differ.
//
// Statistics never raise. A zone with no valid pixels is an expected,
// meaningful outcome: value statistics come back NaN, count comes back
// zero, and the ratio statistics follow the documented NaN policy. NaN
// always means "undefined by policy", never an accident.
//
// Zones are processed synchronously and independently: no state is
// shared between them beyond the read-only raster, so one zone's
// failure (a malformed geometry, a failed window read) is recorded on
// its row without aborting the batch, unless Strict is set.
package zonal
