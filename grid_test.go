package gridbasin

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGridBounds(t *testing.T) {
	tests := []struct {
		name string
		gt   GeoTransform
		want orb.Bound
	}{
		{"north up", GeoTransform{0, 10, 0, 100, 0, -10}, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}},
		{"south up", GeoTransform{0, 10, 0, 0, 0, 10}, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}},
		{"east left", GeoTransform{100, -10, 0, 100, 0, -10}, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}},
		{"rect", GeoTransform{500, 2, 0, 300, 0, -5}, orb.Bound{Min: orb.Point{500, 250}, Max: orb.Point{520, 300}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(10, 10, tt.gt, "")
			if err != nil {
				t.Fatal(err)
			}
			if got := g.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCellIndex(t *testing.T) {
	g := testGrid()
	tests := []struct {
		x, y     float64
		row, col int
	}{
		{25, 75, 2, 2},
		{0.5, 99.5, 0, 0},
		{99.5, 0.5, 9, 9},
		{55, 45, 5, 5},
	}
	for _, tt := range tests {
		row, col := g.CellIndex(tt.x, tt.y)
		if row != tt.row || col != tt.col {
			t.Errorf("CellIndex(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, row, col, tt.row, tt.col)
		}
	}
}

func TestCellMembership(t *testing.T) {
	for _, gt := range []GeoTransform{{0, 10, 0, 100, 0, -10}, {0, 10, 0, 0, 0, 10}} {
		g, _ := NewGrid(10, 10, gt, "")
		for r := 0; r < g.Rows; r++ {
			for c := 0; c < g.Cols; c++ {
				x0, y0 := float64(c)*10, 100-float64(r)*10
				for _, off := range [][2]float64{{0.001, -0.001}, {5, -5}, {9.999, -9.999}, {0.5, -9.5}} {
					row, col := g.CellIndex(x0+off[0], y0+off[1])
					if row != r || col != c {
						t.Fatalf("point (%v, %v) in cell (%d, %d) mapped to (%d, %d)", x0+off[0], y0+off[1], r, c, row, col)
					}
				}
			}
		}
	}
}

func TestOutsideCells(t *testing.T) {
	g := testGrid()
	for _, p := range [][2]float64{{-1, 50}, {101, 50}, {50, 0}, {50, 101}, {50, -0.5}} {
		row, col := g.CellIndex(p[0], p[1])
		if g.Contains(row, col) {
			t.Errorf("point %v should be outside, got (%d, %d)", p, row, col)
		}
	}
}

func TestNorthUpTransform(t *testing.T) {
	north, _ := NewGrid(4, 3, GeoTransform{10, 2, 0, 20, 0, -2}, "")
	south, _ := NewGrid(4, 3, GeoTransform{10, 2, 0, 12, 0, 2}, "")
	want := GeoTransform{10, 2, 0, 20, 0, -2}
	if got := north.NorthUpTransform(); got != want {
		t.Errorf("north-up transform = %v, want %v", got, want)
	}
	if got := south.NorthUpTransform(); got != want {
		t.Errorf("south-up transform = %v, want %v", got, want)
	}
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		gt         GeoTransform
	}{
		{"empty", 0, 3, GeoTransform{0, 1, 0, 0, 0, -1}},
		{"zero width", 3, 3, GeoTransform{0, 0, 0, 0, 0, -1}},
		{"zero height", 3, 3, GeoTransform{0, 1, 0, 0, 0, 0}},
		{"rotated", 3, 3, GeoTransform{0, 1, 0.5, 0, 0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGrid(tt.rows, tt.cols, tt.gt, ""); !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("expected ErrInvalidGrid, got %v", err)
			}
		})
	}
}

func TestFormatFill(t *testing.T) {
	tests := map[float64]string{
		-9999:        "-9999",
		0:            "0",
		2.5:          "2.5",
		-9999.5:      "-9999.5",
		1e6:          "1000000",
		1e-5:         "1e-05",
		1.5e-7:       "1.5e-07",
		1e-4:         "0.0001",
		0.125:        "0.125",
		1e17:         "1e+17",
		1.5e16:       "1.5e+16",
		math.Inf(1):  "inf",
		math.Inf(-1): "-inf",
	}
	for v, want := range tests {
		if got := FormatFill(v); got != want {
			t.Errorf("FormatFill(%v) = %s, want %s", v, got, want)
		}
	}
	if got := FormatFill(math.NaN()); got != "nan" {
		t.Errorf("FormatFill(NaN) = %s, want nan", got)
	}
}
