package cover

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/moussa-omar/urban-heat-toolkit/internal/raster"
)

// Mask is a boolean pixel grid aligned to a window of the raster.
// Bits is row-major over the window, in the same layout as a windowed
// grid read, so the two can be walked with one index.
type Mask struct {
	Window raster.Window
	Bits   []bool
}

func newMask(win raster.Window) *Mask {
	return &Mask{Window: win, Bits: make([]bool, win.Size())}
}

// At reports coverage at window-local (row, col).
func (m *Mask) At(row, col int) bool {
	return m.Bits[row*m.Window.Cols+col]
}

// Count returns the number of covered pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// point is a vertex in continuous pixel space.
type point struct {
	x, y float64
}

// pixelRings projects every ring of the polygonal geometry into pixel
// space via the inverse affine transform. Holes and the rings of a
// multi-polygon are all returned flat; the even-odd fill rule makes
// their orientation irrelevant.
func pixelRings(g geom.Polygonal, transform raster.Affine) [][]point {
	var rings [][]point
	for _, poly := range g.Polygons() {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			r := make([]point, len(ring))
			for i, v := range ring {
				col, row := transform.WorldToPixel(v.X, v.Y)
				r[i] = point{x: col, y: row}
			}
			rings = append(rings, r)
		}
	}
	return rings
}

// ringsBounds returns the pixel-space bounding box of the rings.
func ringsBounds(rings [][]point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			minX = math.Min(minX, p.x)
			minY = math.Min(minY, p.y)
			maxX = math.Max(maxX, p.x)
			maxY = math.Max(maxY, p.y)
		}
	}
	return minX, minY, maxX, maxY
}

// Full builds the coverage mask over the entire grid in one pass.
// Always correct; peak memory is the full grid regardless of zone size.
func Full(g geom.Polygonal, rows, cols int, transform raster.Affine, allTouched bool) (*Mask, raster.Window) {
	win := raster.Window{Row0: 0, Col0: 0, Rows: rows, Cols: cols}
	rings := pixelRings(g, transform)
	if len(rings) == 0 {
		return &Mask{}, raster.Window{}
	}
	return rasterize(rings, win, allTouched), win
}

// Windowed builds the coverage mask over the smallest integer-aligned
// pixel rectangle that contains the geometry's bounding box, clamped to
// the grid extent. A zone wholly outside the grid, or one whose clamped
// window collapses, short-circuits to an empty mask and an empty window.
func Windowed(g geom.Polygonal, rows, cols int, transform raster.Affine, allTouched bool) (*Mask, raster.Window) {
	rings := pixelRings(g, transform)
	if len(rings) == 0 {
		return &Mask{}, raster.Window{}
	}

	minX, minY, maxX, maxY := ringsBounds(rings)
	c0 := int(math.Floor(minX))
	r0 := int(math.Floor(minY))
	c1 := int(math.Ceil(maxX))
	r1 := int(math.Ceil(maxY))
	if allTouched {
		// The boundary traversal marks cell floor(v) for a vertex at v,
		// so a gridline-exact max edge touches the cell on its +side.
		// ceil alone would exclude that cell from the window.
		c1 = max(c1, int(math.Floor(maxX))+1)
		r1 = max(r1, int(math.Floor(maxY))+1)
	}

	// Clamp to [0, shape).
	c0 = max(c0, 0)
	r0 = max(r0, 0)
	c1 = min(c1, cols)
	r1 = min(r1, rows)
	if c1 <= c0 || r1 <= r0 {
		return &Mask{}, raster.Window{}
	}

	win := raster.Window{Row0: r0, Col0: c0, Rows: r1 - r0, Cols: c1 - c0}
	return rasterize(rings, win, allTouched), win
}
