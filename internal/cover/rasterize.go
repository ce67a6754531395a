package cover

import (
	"math"
	"sort"

	"github.com/moussa-omar/urban-heat-toolkit/internal/raster"
)

// rasterize marks coverage for the rings within the clip window. All
// arithmetic runs in global pixel coordinates; the window only clamps
// which cells may be marked. This is what makes Full and Windowed agree
// exactly on the cells inside their common extent.
func rasterize(rings [][]point, win raster.Window, allTouched bool) *Mask {
	m := newMask(win)
	fillCenters(m, rings)
	if allTouched {
		markBoundary(m, rings)
	}
	return m
}

// fillCenters marks every pixel whose center lies inside the rings under
// the even-odd rule. One scanline per window row: collect the x values
// where ring edges cross the horizontal line through the pixel centers,
// sort them, and fill between alternating pairs.
func fillCenters(m *Mask, rings [][]point) {
	win := m.Window
	var xs []float64

	for r := win.Row0; r < win.Row0+win.Rows; r++ {
		y := float64(r) + 0.5
		xs = xs[:0]

		for _, ring := range rings {
			n := len(ring)
			for i := 0; i < n; i++ {
				p := ring[i]
				q := ring[(i+1)%n]
				// Half-open crossing rule so shared vertices count once.
				if (p.y > y) == (q.y > y) {
					continue
				}
				xs = append(xs, p.x+(y-p.y)*(q.x-p.x)/(q.y-p.y))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			a, b := xs[i], xs[i+1]
			// Centers c+0.5 in [a, b).
			c0 := int(math.Ceil(a - 0.5))
			c1 := int(math.Ceil(b-0.5)) - 1
			c0 = max(c0, win.Col0)
			c1 = min(c1, win.Col0+win.Cols-1)
			row := (r - win.Row0) * win.Cols
			for c := c0; c <= c1; c++ {
				m.Bits[row+c-win.Col0] = true
			}
		}
	}
}

// markBoundary marks every cell a ring segment passes through, using a
// grid traversal that steps across one pixel boundary at a time.
func markBoundary(m *Mask, rings [][]point) {
	for _, ring := range rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			traverseSegment(m, ring[i], ring[(i+1)%n])
		}
	}
}

// traverseSegment walks the cells intersected by the segment p-q.
func traverseSegment(m *Mask, p, q point) {
	cx := int(math.Floor(p.x))
	cy := int(math.Floor(p.y))
	ex := int(math.Floor(q.x))
	ey := int(math.Floor(q.y))

	markCell(m, cy, cx)

	dx := q.x - p.x
	dy := q.y - p.y

	stepX, tMaxX, tDeltaX := stepParams(p.x, dx)
	stepY, tMaxY, tDeltaY := stepParams(p.y, dy)

	// The traversal crosses exactly this many pixel boundaries.
	steps := abs(ex-cx) + abs(ey-cy)
	for i := 0; i < steps; i++ {
		if tMaxX < tMaxY {
			cx += stepX
			tMaxX += tDeltaX
		} else {
			cy += stepY
			tMaxY += tDeltaY
		}
		markCell(m, cy, cx)
	}
}

// stepParams computes the traversal parameters along one axis: step
// direction, parametric distance to the first pixel boundary, and
// parametric distance between boundaries.
func stepParams(start, delta float64) (step int, tMax, tDelta float64) {
	switch {
	case delta > 0:
		step = 1
		tMax = (math.Floor(start) + 1 - start) / delta
		tDelta = 1 / delta
	case delta < 0:
		step = -1
		tMax = (start - math.Floor(start)) / -delta
		tDelta = 1 / -delta
	default:
		step = 0
		tMax = math.Inf(1)
		tDelta = math.Inf(1)
	}
	return step, tMax, tDelta
}

func markCell(m *Mask, row, col int) {
	win := m.Window
	if row < win.Row0 || row >= win.Row0+win.Rows ||
		col < win.Col0 || col >= win.Col0+win.Cols {
		return
	}
	m.Bits[(row-win.Row0)*win.Cols+col-win.Col0] = true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
