// Package sample extracts raster values at point locations with nearest
// or bilinear resampling, nodata-aware and CRS-safe.
//
// Points are reconciled to the raster CRS as one batch, then converted
// to center-based fractional pixel coordinates: the affine inverse gives
// edge-based coordinates (0 at the left/top edge of pixel 0), and
// subtracting 0.5 re-expresses them relative to pixel centers. In
// center-based coordinates the pixel nearest a point is simply the
// rounded coordinate, and the four bilinear neighbors are the floor
// pixel and its +1 neighbors.
//
// Ties at exactly .5 round half to even (math.RoundToEven), consistently
// across the toolkit.
//
// Out-of-bounds points yield NaN, never an error. Nodata sentinels never
// escape: any sampled result that touches nodata comes back as NaN.
package sample

import (
	"fmt"
	"math"

	"github.com/moussa-omar/urban-heat-toolkit/internal/raster"
	"github.com/moussa-omar/urban-heat-toolkit/internal/reproject"

	"github.com/ctessum/geom"
)

// Method selects the resampling kernel.
type Method int

const (
	// MethodNearest reads the single pixel whose center is nearest
	// the point.
	MethodNearest Method = iota
	// MethodBilinear interpolates the four surrounding pixel centers.
	// Strict policy: if any of the four is outside the grid or nodata,
	// the result is NaN - no extrapolation, no partial interpolation.
	MethodBilinear
)

func (m Method) String() string {
	switch m {
	case MethodNearest:
		return "nearest"
	case MethodBilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a method name ("nearest" or "bilinear").
func ParseMethod(name string) (Method, error) {
	switch name {
	case "nearest":
		return MethodNearest, nil
	case "bilinear":
		return MethodBilinear, nil
	}
	return 0, fmt.Errorf("unknown sampling method %q (want \"nearest\" or \"bilinear\")", name)
}

// Point is one sample location with caller attributes that pass through
// to the output unchanged.
type Point struct {
	Geometry   geom.Point
	Attributes map[string]interface{}
}

// Collection is an ordered set of points sharing one CRS.
type Collection struct {
	CRS    string
	Points []Point
}

// Values extracts one raster value per point, in input order. The only
// error is a non-reconcilable CRS pair; everything per-point (outside
// the grid, nodata) is NaN by policy.
func Values(points Collection, r *raster.Raster, method Method) ([]float64, error) {
	pts := make([]geom.Point, len(points.Points))
	for i, p := range points.Points {
		pts[i] = p.Geometry
	}
	pts, err := reproject.Points(pts, points.CRS, r.CRS)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(pts))
	for i, p := range pts {
		col, row := r.Transform.WorldToPixel(p.X, p.Y)
		// Center-based fractional coordinates.
		cc := col - 0.5
		rr := row - 0.5
		switch method {
		case MethodNearest:
			out[i] = nearest(r, cc, rr)
		case MethodBilinear:
			out[i] = bilinear(r, cc, rr)
		default:
			return nil, fmt.Errorf("unknown sampling method %v", method)
		}
	}
	return out, nil
}

// SampleRaster extracts one value per point and records it under outCol
// in each point's attributes. The input collection is not mutated; rows
// come back in input order.
func SampleRaster(points Collection, r *raster.Raster, method Method, outCol string) (Collection, error) {
	values, err := Values(points, r, method)
	if err != nil {
		return Collection{}, err
	}

	out := Collection{CRS: points.CRS, Points: make([]Point, len(points.Points))}
	for i, p := range points.Points {
		attrs := make(map[string]interface{}, len(p.Attributes)+1)
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		attrs[outCol] = values[i]
		out.Points[i] = Point{Geometry: p.Geometry, Attributes: attrs}
	}
	return out, nil
}

func nearest(r *raster.Raster, cc, rr float64) float64 {
	c := int(math.RoundToEven(cc))
	row := int(math.RoundToEven(rr))
	if c < 0 || c >= r.Cols() || row < 0 || row >= r.Rows() {
		return math.NaN()
	}
	v := r.Data.Elements[row*r.Cols()+c]
	if r.IsNoData(v) {
		return math.NaN()
	}
	return v
}

func bilinear(r *raster.Raster, cc, rr float64) float64 {
	c0 := int(math.Floor(cc))
	r0 := int(math.Floor(rr))
	// All four neighbors must lie inside the grid; no edge extrapolation.
	if c0 < 0 || r0 < 0 || c0+1 >= r.Cols() || r0+1 >= r.Rows() {
		return math.NaN()
	}

	cols := r.Cols()
	v00 := r.Data.Elements[r0*cols+c0]
	v10 := r.Data.Elements[r0*cols+c0+1]
	v01 := r.Data.Elements[(r0+1)*cols+c0]
	v11 := r.Data.Elements[(r0+1)*cols+c0+1]
	if r.IsNoData(v00) || r.IsNoData(v10) || r.IsNoData(v01) || r.IsNoData(v11) {
		return math.NaN()
	}

	fc := cc - float64(c0)
	fr := rr - float64(r0)
	return v00*(1-fc)*(1-fr) + v10*fc*(1-fr) + v01*(1-fc)*fr + v11*fc*fr
}
