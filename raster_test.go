package gridbasin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
)

func writeRawRaster(t *testing.T, path string, rows, cols int, gt [6]float64, data []float64) {
	t.Helper()
	NewGdalToolbox()
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, cols, rows)
	if err != nil {
		t.Fatal(err)
	}
	if err = ds.SetGeoTransform(gt); err != nil {
		t.Fatal(err)
	}
	if err = ds.Bands()[0].IO(godal.IOWrite, 0, 0, data, cols, rows); err != nil {
		t.Fatal(err)
	}
	if err = ds.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteReadGrid(t *testing.T) {
	g := NewGdalToolbox()
	defer g.Close()
	wkt, err := g.SrsToWkt("EPSG:32618")
	if err != nil {
		t.Fatal(err)
	}
	grid, err := NewGrid(4, 3, GeoTransform{500000, 30, 0, 4650000, 0, -30}, wkt)
	if err != nil {
		t.Fatal(err)
	}
	grid.SetNoData(-9999)
	for i := range grid.Data {
		grid.Data[i] = float64(i) * 1.5
	}
	grid.Data[4] = -9999
	out := filepath.Join(t.TempDir(), "dem_modif.tif")
	if err = g.WriteGrid(grid, out, DefaultWriteOptions()); err != nil {
		t.Fatal(err)
	}
	back, err := g.ReadGrid(out, 1)
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows != 4 || back.Cols != 3 {
		t.Fatalf("size %dx%d", back.Rows, back.Cols)
	}
	if back.Transform != grid.Transform {
		t.Errorf("transform = %v, want %v", back.Transform, grid.Transform)
	}
	if !back.HasNoData || back.NoData != -9999 {
		t.Errorf("nodata = %v %v", back.NoData, back.HasNoData)
	}
	for i := range grid.Data {
		if back.Data[i] != grid.Data[i] {
			t.Errorf("cell %d = %v, want %v", i, back.Data[i], grid.Data[i])
		}
	}
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteGridTmpDir(t *testing.T) {
	tmpDir := scratchDir(t)
	g := NewGdalToolbox(tmpDir)
	defer g.Close()
	grid, err := NewGrid(2, 2, GeoTransform{0, 1, 0, 2, 0, -1}, "")
	if err != nil {
		t.Fatal(err)
	}
	copy(grid.Data, []float64{1, 2, 3, 4})
	out := filepath.Join(t.TempDir(), "dem_modif.tif")
	if err = g.WriteGrid(grid, out, DefaultWriteOptions()); err != nil {
		t.Fatal(err)
	}
	back, err := g.ReadGrid(out, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1, 2, 3, 4} {
		if back.Data[i] != want {
			t.Errorf("cell %d = %v, want %v", i, back.Data[i], want)
		}
	}
	if entries, _ := os.ReadDir(tmpDir); len(entries) != 0 {
		t.Errorf("temp files left in %s: %d", tmpDir, len(entries))
	}
}

func TestWriteGridNorthUp(t *testing.T) {
	g := NewGdalToolbox()
	defer g.Close()
	dir := t.TempDir()
	north, _ := NewGrid(2, 2, GeoTransform{100, 10, 0, 220, 0, -10}, "")
	south, _ := NewGrid(2, 2, GeoTransform{100, 10, 0, 200, 0, 10}, "")
	var gts [][6]float64
	for i, grid := range []*Grid{north, south} {
		copy(grid.Data, []float64{1, 2, 3, 4})
		out := filepath.Join(dir, []string{"north.tif", "south.tif"}[i])
		if err := g.WriteGrid(grid, out, WriteOptions{}); err != nil {
			t.Fatal(err)
		}
		ds, err := godal.Open(out)
		if err != nil {
			t.Fatal(err)
		}
		gt, err := ds.GeoTransform()
		ds.Close()
		if err != nil {
			t.Fatal(err)
		}
		gts = append(gts, gt)
	}
	want := [6]float64{100, 10, 0, 220, 0, -10}
	if gts[0] != want || gts[1] != want {
		t.Errorf("geotransforms = %v, want both %v", gts, want)
	}
}

func TestReadGridSouthUp(t *testing.T) {
	g := NewGdalToolbox()
	defer g.Close()
	path := filepath.Join(t.TempDir(), "south.tif")
	// 存储顺序第0行为南侧
	writeRawRaster(t, path, 2, 3, [6]float64{0, 1, 0, 0, 0, 1}, []float64{1, 2, 3, 4, 5, 6})
	grid, err := g.ReadGrid(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{4, 5, 6, 1, 2, 3}
	for i := range want {
		if grid.Data[i] != want[i] {
			t.Fatalf("data = %v, want %v", grid.Data, want)
		}
	}
	if row, col := grid.CellIndex(0.5, 1.5); grid.At(row, col) != 4 {
		t.Errorf("north-west cell = %v, want 4", grid.At(row, col))
	}
}

func TestReadGridErrors(t *testing.T) {
	g := NewGdalToolbox()
	defer g.Close()
	dir := t.TempDir()
	if _, err := g.ReadGrid(filepath.Join(dir, "missing.tif"), 1); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
	path := filepath.Join(dir, "one.tif")
	writeRawRaster(t, path, 1, 1, [6]float64{0, 1, 0, 1, 0, -1}, []float64{1})
	for _, band := range []int{0, 2} {
		if _, err := g.ReadGrid(path, band); !errors.Is(err, ErrInvalidBandIndex) {
			t.Errorf("band %d: expected ErrInvalidBandIndex, got %v", band, err)
		}
	}
}
