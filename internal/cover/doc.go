// Package cover converts polygons into pixel-space coverage masks.
//
// Two entry points build the same mask two ways: Full rasterizes over
// the entire grid (the "mask" engine path), Windowed restricts work to
// the smallest integer-aligned pixel rectangle containing the polygon's
// bounding box (the "window" engine path). Both rasterize in global
// pixel coordinates with the window acting purely as a clip rectangle,
// so for any polygon and any all_touched setting the set of marked
// full-grid positions is identical between the two - the equivalence
// contract the zonal engines rely on.
//
// Coverage policy: with all_touched false a pixel is covered when its
// center lies inside the polygon (even-odd rule); with all_touched true
// any pixel whose square the polygon touches is covered, computed as the
// center-coverage set plus a grid traversal of every boundary segment.
// A boundary segment lying exactly on a pixel gridline marks the cell on
// the positive side of the line.
package cover
