package raster

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Affine maps pixel coordinates to world coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// This is the six-parameter geotransform convention used by GDAL-style
// raster metadata, with (col, row) measured from the top-left corner of
// the grid so that pixel (c, r) covers the half-open square
// [c, c+1) x [r, r+1) in pixel space.
type Affine struct {
	A, B, C, D, E, F float64
}

// NewAffine validates the transform parameters. The linear part must be
// invertible, otherwise world coordinates cannot be mapped back to pixels.
func NewAffine(a, b, c, d, e, f float64) (Affine, error) {
	t := Affine{A: a, B: b, C: c, D: d, E: e, F: f}
	if t.det() == 0 {
		return Affine{}, fmt.Errorf("singular affine transform: det(A,B,D,E) = 0")
	}
	return t, nil
}

func (t Affine) det() float64 {
	return t.A*t.E - t.B*t.D
}

// PixelToWorld converts fractional pixel coordinates to world coordinates.
func (t Affine) PixelToWorld(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// WorldToPixel is the exact inverse of PixelToWorld, up to floating-point
// rounding.
func (t Affine) WorldToPixel(x, y float64) (col, row float64) {
	d := t.det()
	dx := x - t.C
	dy := y - t.F
	col = (t.E*dx - t.B*dy) / d
	row = (-t.D*dx + t.A*dy) / d
	return col, row
}

// PixelArea is the world-space area covered by one pixel. It is constant
// across the raster (axis-aligned, non-rotated grids).
func (t Affine) PixelArea() float64 {
	return math.Abs(t.det())
}

// Window is a rectangular sub-region of a raster grid, in whole pixels.
// Row0/Col0 are the top-left pixel indices in full-grid coordinates.
type Window struct {
	Row0 int `json:"row0"`
	Col0 int `json:"col0"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Empty reports whether the window contains no pixels.
func (w Window) Empty() bool {
	return w.Rows <= 0 || w.Cols <= 0
}

// Size returns the number of pixels in the window.
func (w Window) Size() int {
	if w.Empty() {
		return 0
	}
	return w.Rows * w.Cols
}

// Raster is an immutable single-band grid of samples with georeferencing
// metadata. Data is shared by reference between zones during aggregation;
// no method in this package or its consumers mutates it.
type Raster struct {
	Data      *sparse.DenseArray
	Transform Affine
	CRS       string
	NoData    *float64
	Band      int // 1-based band index this grid was read from
}

// New wraps a decoded grid. The data array must be two-dimensional.
func New(data *sparse.DenseArray, transform Affine, crs string, nodata *float64) (*Raster, error) {
	if data == nil || len(data.Shape) != 2 {
		return nil, fmt.Errorf("raster grid must be a 2D array")
	}
	if transform.det() == 0 {
		return nil, fmt.Errorf("singular affine transform: det(A,B,D,E) = 0")
	}
	return &Raster{
		Data:      data,
		Transform: transform,
		CRS:       crs,
		NoData:    nodata,
		Band:      1,
	}, nil
}

// Rows returns the number of grid rows.
func (r *Raster) Rows() int { return r.Data.Shape[0] }

// Cols returns the number of grid columns.
func (r *Raster) Cols() int { return r.Data.Shape[1] }

// FullWindow is the window covering the entire grid.
func (r *Raster) FullWindow() Window {
	return Window{Row0: 0, Col0: 0, Rows: r.Rows(), Cols: r.Cols()}
}

// IsNoData reports whether a sample value counts as "no measurement".
// NaN is always nodata for floating-point grids, even when the declared
// sentinel is a different value; otherwise the sentinel matches exactly.
func (r *Raster) IsNoData(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return r.NoData != nil && v == *r.NoData
}

// NodataMask returns a row-major boolean grid over values, true where the
// sample is nodata under this raster's sentinel. values is typically the
// full grid or a windowed sub-grid returned by Read.
func (r *Raster) NodataMask(values *sparse.DenseArray) []bool {
	mask := make([]bool, len(values.Elements))
	for i, v := range values.Elements {
		mask[i] = r.IsNoData(v)
	}
	return mask
}

// ReadError reports a failed grid read, the in-memory stand-in for a
// corrupt or truncated raster source.
type ReadError struct {
	Window Window
	Reason string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("raster read failed for window %+v: %s", e.Window, e.Reason)
}

// Read copies the sub-grid covered by win into a new dense array. The
// window must lie within the grid. A nil or short backing array reports
// a *ReadError.
func (r *Raster) Read(win Window) (*sparse.DenseArray, error) {
	if win.Empty() {
		return nil, &ReadError{Window: win, Reason: "empty window"}
	}
	if win.Row0 < 0 || win.Col0 < 0 ||
		win.Row0+win.Rows > r.Rows() || win.Col0+win.Cols > r.Cols() {
		return nil, &ReadError{Window: win, Reason: "window outside grid extent"}
	}
	if r.Data.Elements == nil || len(r.Data.Elements) < r.Rows()*r.Cols() {
		return nil, &ReadError{Window: win, Reason: "grid backing array truncated"}
	}

	out := sparse.ZerosDense(win.Rows, win.Cols)
	cols := r.Cols()
	for i := 0; i < win.Rows; i++ {
		srcOff := (win.Row0+i)*cols + win.Col0
		copy(out.Elements[i*win.Cols:(i+1)*win.Cols], r.Data.Elements[srcOff:srcOff+win.Cols])
	}
	return out, nil
}
