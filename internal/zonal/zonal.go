package zonal

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/moussa-omar/urban-heat-toolkit/internal/cover"
	"github.com/moussa-omar/urban-heat-toolkit/internal/raster"
	"github.com/moussa-omar/urban-heat-toolkit/internal/reproject"
)

// Engine selects the coverage-mask strategy.
type Engine int

const (
	// EngineMask rasterizes every zone against the full grid. Simple
	// and always correct; peak memory is the whole raster.
	EngineMask Engine = iota
	// EngineWindow restricts each zone to its bounding-box window,
	// bounding peak memory by the largest zone instead of the raster.
	EngineWindow
)

func (e Engine) String() string {
	switch e {
	case EngineMask:
		return "mask"
	case EngineWindow:
		return "window"
	}
	return fmt.Sprintf("Engine(%d)", int(e))
}

// ParseEngine converts an engine name ("mask" or "window").
func ParseEngine(name string) (Engine, error) {
	switch name {
	case "mask":
		return EngineMask, nil
	case "window":
		return EngineWindow, nil
	}
	return 0, fmt.Errorf("unknown engine %q (want \"mask\" or \"window\")", name)
}

// GeometryError reports a zone geometry the rasterizer cannot handle.
// It is scoped to one zone: the row records it and the batch continues,
// unless Options.Strict is set.
type GeometryError struct {
	Index  int
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("zone %d: unrasterizable geometry: %s", e.Index, e.Reason)
}

// Zone is one polygon to aggregate over, with caller attributes that
// pass through to the output row unchanged.
type Zone struct {
	Geometry   geom.Polygonal
	Attributes map[string]interface{}
}

// Collection is an ordered set of zones sharing one CRS.
type Collection struct {
	CRS   string
	Zones []Zone
}

// Options configures a ZonalStats call.
type Options struct {
	// Stats is the requested statistic set; nil means AllStats().
	Stats []string
	// Band is the 1-based raster band; zero means 1. Must match the
	// band the raster was read from.
	Band int
	// AllTouched switches pixel inclusion from center-in-polygon to
	// any-overlap.
	AllTouched bool
	// Engine selects the coverage strategy (EngineMask by default).
	Engine Engine
	// KeepGeometry copies the reconciled geometry onto each row.
	KeepGeometry bool
	// Strict turns per-zone failures into call failures instead of
	// recorded rows.
	Strict bool
}

// DefaultOptions mirrors the documented call signature defaults:
// every statistic, band 1, center-in-polygon coverage, mask engine,
// geometry kept.
func DefaultOptions() Options {
	return Options{
		Stats:        AllStats(),
		Band:         1,
		Engine:       EngineMask,
		KeepGeometry: true,
	}
}

// Row is the result for one input zone. Rows are created fresh per call
// and never mutated after construction; their order always matches the
// input zone order.
type Row struct {
	// Stats holds one entry per requested statistic. Count is carried
	// as a float64 like the rest; NaN means "undefined by policy".
	Stats map[string]float64 `json:"stats"`
	// Attributes are the caller's zone attributes, passed through.
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	// Geometry is the zone geometry in the raster CRS, when requested.
	Geometry geom.Polygonal `json:"-"`
	// Err records a per-zone failure (GeometryError, windowed read
	// failure). The row's statistics follow the all-NaN policy.
	Err error `json:"-"`
}

// ZonalStats computes the requested statistics for every zone over the
// raster. The returned rows preserve the input order. Batch-fatal
// failures are a non-reconcilable CRS pair (*reproject.CRSError), an
// invalid option, or - under the mask engine only - a failed full-grid
// read, since that one read is shared by all zones.
func ZonalStats(zones Collection, r *raster.Raster, opts Options) ([]Row, error) {
	if len(opts.Stats) == 0 {
		opts.Stats = AllStats()
	}
	for _, s := range opts.Stats {
		if !validStat(s) {
			return nil, fmt.Errorf("unknown statistic %q", s)
		}
	}
	if opts.Band == 0 {
		opts.Band = 1
	}
	if opts.Band != r.Band {
		return nil, fmt.Errorf("requested band %d but raster holds band %d", opts.Band, r.Band)
	}

	// Batch CRS reconciliation, once, before any per-zone work.
	geoms := make([]geom.Geom, len(zones.Zones))
	for i, z := range zones.Zones {
		if z.Geometry != nil {
			geoms[i] = z.Geometry
		}
	}
	geoms, err := reproject.Geometries(geoms, zones.CRS, r.CRS)
	if err != nil {
		return nil, err
	}

	// The mask engine reads the whole grid once, shared by all zones;
	// a failure here aborts the call.
	var fullGrid *sparse.DenseArray
	if opts.Engine == EngineMask {
		fullGrid, err = r.Read(r.FullWindow())
		if err != nil {
			return nil, err
		}
	}

	pixelArea := r.Transform.PixelArea()
	rows := make([]Row, len(zones.Zones))
	for i := range zones.Zones {
		row := &rows[i]
		row.Attributes = zones.Zones[i].Attributes

		g, gerr := zoneGeometry(geoms[i], i)
		if gerr != nil {
			if opts.Strict {
				return nil, gerr
			}
			row.Err = gerr
			row.Stats = summarize(nil, 0, pixelArea, 0, opts.Stats)
			continue
		}
		if opts.KeepGeometry {
			row.Geometry = g
		}

		area := planarArea(g)
		if area == 0 {
			// Degenerate geometry: never rasterized, all value
			// statistics NaN, count zero.
			row.Stats = summarize(nil, 0, pixelArea, 0, opts.Stats)
			continue
		}

		var mask *cover.Mask
		var win raster.Window
		var grid *sparse.DenseArray
		switch opts.Engine {
		case EngineMask:
			mask, win = cover.Full(g, r.Rows(), r.Cols(), r.Transform, opts.AllTouched)
			grid = fullGrid
		case EngineWindow:
			mask, win = cover.Windowed(g, r.Rows(), r.Cols(), r.Transform, opts.AllTouched)
			if !win.Empty() {
				grid, err = r.Read(win)
				if err != nil {
					// Scoped to this zone under the window engine.
					if opts.Strict {
						return nil, err
					}
					row.Err = err
					row.Stats = summarize(nil, 0, pixelArea, 0, opts.Stats)
					continue
				}
			}
		default:
			return nil, fmt.Errorf("unknown engine %v", opts.Engine)
		}

		if win.Empty() {
			// Zone wholly outside the raster extent.
			row.Stats = summarize(nil, 0, pixelArea, area, opts.Stats)
			continue
		}

		covered, values := validValues(mask, grid, r)
		row.Stats = summarize(values, covered, pixelArea, area, opts.Stats)
	}
	return rows, nil
}

// zoneGeometry validates one reconciled geometry.
func zoneGeometry(g geom.Geom, index int) (geom.Polygonal, error) {
	if g == nil {
		return nil, &GeometryError{Index: index, Reason: "nil geometry"}
	}
	p, ok := g.(geom.Polygonal)
	if !ok {
		return nil, &GeometryError{Index: index, Reason: fmt.Sprintf("not polygonal: %T", g)}
	}
	return p, nil
}

// planarArea is the zone's planar area in the raster CRS, the
// coverage_ratio denominator.
func planarArea(g geom.Polygonal) float64 {
	area := 0.0
	for _, p := range g.Polygons() {
		area += p.Area()
	}
	return area
}

// validValues walks the coverage mask and the windowed grid together
// (they share one row-major layout) and collects the valid-value set:
// samples that are covered and not nodata. covered counts every covered
// pixel regardless of validity.
func validValues(mask *cover.Mask, grid *sparse.DenseArray, r *raster.Raster) (covered int, values []float64) {
	for i, inside := range mask.Bits {
		if !inside {
			continue
		}
		covered++
		v := grid.Elements[i]
		if !r.IsNoData(v) {
			values = append(values, v)
		}
	}
	return covered, values
}
