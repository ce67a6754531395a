package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

func testGrid(rows, cols int) *sparse.DenseArray {
	data := sparse.ZerosDense(rows, cols)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	return data
}

func mustAffine(t *testing.T, a, b, c, d, e, f float64) Affine {
	t.Helper()
	tr, err := NewAffine(a, b, c, d, e, f)
	if err != nil {
		t.Fatalf("NewAffine failed: %v", err)
	}
	return tr
}

func TestAffineRoundTrip(t *testing.T) {
	transforms := []struct {
		name string
		tr   Affine
	}{
		{"identity", mustAffine(t, 1, 0, 0, 0, 1, 0)},
		{"north-up geotransform", mustAffine(t, 0.5, 0, 100, 0, -0.5, 250)},
		{"translated", mustAffine(t, 2, 0, -10, 0, 3, 40)},
		{"rotated", mustAffine(t, 1, 0.25, 5, -0.25, 1, -5)},
	}
	points := [][2]float64{{0, 0}, {1, 1}, {3.25, 7.5}, {-2, 10.75}, {1000, 0.001}}

	for _, tc := range transforms {
		t.Run(tc.name, func(t *testing.T) {
			for _, p := range points {
				x, y := tc.tr.PixelToWorld(p[0], p[1])
				col, row := tc.tr.WorldToPixel(x, y)
				if math.Abs(col-p[0]) > 1e-9 || math.Abs(row-p[1]) > 1e-9 {
					t.Errorf("round trip (%g,%g): got (%g,%g)", p[0], p[1], col, row)
				}
			}
		})
	}
}

func TestNewAffine_Singular(t *testing.T) {
	if _, err := NewAffine(1, 2, 0, 2, 4, 0); err == nil {
		t.Error("expected error for singular transform")
	}
	if _, err := NewAffine(0, 0, 5, 0, 0, 5); err == nil {
		t.Error("expected error for zero transform")
	}
}

func TestPixelArea(t *testing.T) {
	tests := []struct {
		name string
		tr   Affine
		want float64
	}{
		{"identity", mustAffine(t, 1, 0, 0, 0, 1, 0), 1},
		{"half-degree north-up", mustAffine(t, 0.5, 0, 0, 0, -0.5, 0), 0.25},
		{"anisotropic", mustAffine(t, 2, 0, 0, 0, 3, 0), 6},
	}
	for _, tt := range tests {
		if got := tt.tr.PixelArea(); got != tt.want {
			t.Errorf("%s: PixelArea = %g, want %g", tt.name, got, tt.want)
		}
	}
}

func TestIsNoData(t *testing.T) {
	nodata := -9999.0
	withSentinel, err := New(testGrid(2, 2), mustAffine(t, 1, 0, 0, 0, 1, 0), "", &nodata)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	noSentinel, err := New(testGrid(2, 2), mustAffine(t, 1, 0, 0, 0, 1, 0), "", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name string
		r    *Raster
		v    float64
		want bool
	}{
		{"sentinel match", withSentinel, -9999, true},
		{"regular value", withSentinel, 0, false},
		{"NaN with sentinel", withSentinel, math.NaN(), true},
		{"NaN without sentinel", noSentinel, math.NaN(), true},
		{"sentinel value, no sentinel declared", noSentinel, -9999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsNoData(tt.v); got != tt.want {
				t.Errorf("IsNoData(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestNodataMask(t *testing.T) {
	nodata := 7.0
	r, err := New(testGrid(3, 3), mustAffine(t, 1, 0, 0, 0, 1, 0), "", &nodata)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.Data.Elements[2] = math.NaN()

	mask := r.NodataMask(r.Data)
	wantTrue := map[int]bool{2: true, 7: true}
	for i, m := range mask {
		if m != wantTrue[i] {
			t.Errorf("mask[%d] = %v, want %v", i, m, wantTrue[i])
		}
	}
}

func TestRead(t *testing.T) {
	r, err := New(testGrid(4, 5), mustAffine(t, 1, 0, 0, 0, 1, 0), "", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sub, err := r.Read(Window{Row0: 1, Col0: 2, Rows: 2, Cols: 3})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	// Row 1 cols 2..4 of a 5-wide grid: 7, 8, 9; row 2: 12, 13, 14.
	want := []float64{7, 8, 9, 12, 13, 14}
	for i, v := range want {
		if sub.Elements[i] != v {
			t.Errorf("sub[%d] = %g, want %g", i, sub.Elements[i], v)
		}
	}
}

func TestRead_Errors(t *testing.T) {
	r, err := New(testGrid(4, 5), mustAffine(t, 1, 0, 0, 0, 1, 0), "", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name string
		win  Window
	}{
		{"empty window", Window{}},
		{"negative origin", Window{Row0: -1, Col0: 0, Rows: 2, Cols: 2}},
		{"past right edge", Window{Row0: 0, Col0: 4, Rows: 1, Cols: 2}},
		{"past bottom edge", Window{Row0: 3, Col0: 0, Rows: 2, Cols: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(tt.win)
			var re *ReadError
			if !errors.As(err, &re) {
				t.Errorf("Read(%+v) error = %v, want *ReadError", tt.win, err)
			}
		})
	}
}

func TestRead_TruncatedBacking(t *testing.T) {
	grid := testGrid(4, 5)
	grid.Elements = grid.Elements[:10] // corrupt source stand-in
	r := &Raster{Data: grid, Transform: mustAffine(t, 1, 0, 0, 0, 1, 0), Band: 1}

	_, err := r.Read(Window{Row0: 0, Col0: 0, Rows: 4, Cols: 5})
	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want *ReadError", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, Affine{A: 1, E: 1}, "", nil); err == nil {
		t.Error("expected error for nil grid")
	}
	if _, err := New(sparse.ZerosDense(8), Affine{A: 1, E: 1}, "", nil); err == nil {
		t.Error("expected error for 1D grid")
	}
	if _, err := New(testGrid(2, 2), Affine{}, "", nil); err == nil {
		t.Error("expected error for singular transform")
	}
}
