package gridbasin

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestInjectPoints(t *testing.T) {
	g := testGrid()
	fc := pointCollection(
		pointFeature(25, 75, map[string]interface{}{"valor": 12.5}),
		pointFeature(55, 45, map[string]interface{}{"valor": "dique"}),
		pointFeature(150, 45, map[string]interface{}{"valor": 3.0}),
		pointFeature(95, 5, map[string]interface{}{"valor": nil}),
		pointFeature(5, 95, map[string]interface{}{"otro": 1.0}),
	)
	rep, err := InjectPoints(g, NewFeatureSource(fc, ""), IdentityReprojector, InjectOptions{ValueField: "valor"})
	if err != nil {
		t.Fatal(err)
	}
	want := InjectReport{Total: 5, Applied: 1, NonNumeric: 3, OutOfRange: 1}
	if rep != want {
		t.Errorf("report = %+v, want %+v", rep, want)
	}
	if v := g.At(2, 2); v != 12.5 {
		t.Errorf("cell (2,2) = %v, want 12.5", v)
	}
	if v := g.At(5, 5); v != 0 {
		t.Errorf("text value should leave cell untouched, got %v", v)
	}
}

func TestInjectLastWriteWins(t *testing.T) {
	g := testGrid()
	fc := pointCollection(
		pointFeature(21, 71, map[string]interface{}{"v": 1.0}),
		pointFeature(29, 79, map[string]interface{}{"v": 2.0}),
	)
	if _, err := InjectPoints(g, NewFeatureSource(fc, ""), nil, InjectOptions{ValueField: "v"}); err != nil {
		t.Fatal(err)
	}
	if v := g.At(2, 2); v != 2 {
		t.Errorf("cell (2,2) = %v, want 2", v)
	}
}

func TestInjectReprojects(t *testing.T) {
	g := testGrid()
	fc := pointCollection(pointFeature(-975, 1075, map[string]interface{}{"v": 7.0}))
	rep, err := InjectPoints(g, NewFeatureSource(fc, ""), shiftReprojector{dx: 1000, dy: -1000}, InjectOptions{ValueField: "v"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Applied != 1 || g.At(2, 2) != 7 {
		t.Errorf("reprojected point not applied: %+v, cell %v", rep, g.At(2, 2))
	}

	rep, err = InjectPoints(g, NewFeatureSource(fc, ""), failingReprojector{}, InjectOptions{ValueField: "v"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Unprojectable != 1 || rep.Applied != 0 {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestInjectCancel(t *testing.T) {
	g := testGrid()
	fc := pointCollection(
		pointFeature(5, 95, map[string]interface{}{"v": 1.0}),
		pointFeature(15, 95, map[string]interface{}{"v": 2.0}),
		pointFeature(25, 95, map[string]interface{}{"v": 3.0}),
		pointFeature(35, 95, map[string]interface{}{"v": 4.0}),
	)
	prog := &stubProgress{cancelAfter: 2}
	rep, err := InjectPoints(g, NewFeatureSource(fc, ""), nil, InjectOptions{ValueField: "v", Progress: prog})
	if err != nil {
		t.Fatalf("cancel should not be an error: %v", err)
	}
	if !rep.Canceled || rep.Applied != 2 || rep.Total != 2 {
		t.Errorf("unexpected report %+v", rep)
	}
	for col, want := range []float64{1, 2, 0, 0} {
		if v := g.At(0, col); v != want {
			t.Errorf("cell (0,%d) = %v, want %v", col, v, want)
		}
	}
	if len(prog.updates) != 2 || prog.updates[1] != 50 {
		t.Errorf("progress updates = %v", prog.updates)
	}
}

func TestInjectProgress(t *testing.T) {
	g := testGrid()
	fc := pointCollection(
		pointFeature(5, 95, map[string]interface{}{"v": 1.0}),
		pointFeature(15, 95, map[string]interface{}{"v": 2.0}),
		pointFeature(25, 95, map[string]interface{}{"v": 3.0}),
		pointFeature(35, 95, map[string]interface{}{"v": 4.0}),
	)
	prog := &stubProgress{cancelAfter: -1}
	if _, err := InjectPoints(g, NewFeatureSource(fc, ""), nil, InjectOptions{ValueField: "v", Progress: prog}); err != nil {
		t.Fatal(err)
	}
	want := []int{25, 50, 75, 100}
	if len(prog.updates) != len(want) {
		t.Fatalf("progress updates = %v, want %v", prog.updates, want)
	}
	for i := range want {
		if prog.updates[i] != want[i] {
			t.Errorf("progress updates = %v, want %v", prog.updates, want)
			break
		}
	}
}

func TestInjectNonPointFeatures(t *testing.T) {
	g := testGrid()
	fc := pointCollection(
		pointFeature(25, 75, map[string]interface{}{"v": 4.0}),
		geojson.NewFeature(orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}),
	)
	fc.Features[1].Properties["v"] = 9.0
	prog := &stubProgress{cancelAfter: -1}
	rep, err := InjectPoints(g, NewFeatureSource(fc, ""), nil, InjectOptions{ValueField: "v", Progress: prog})
	if err != nil {
		t.Fatal(err)
	}
	want := InjectReport{Total: 2, Applied: 1, NonPoint: 1}
	if rep != want {
		t.Errorf("report = %+v, want %+v", rep, want)
	}
	if len(prog.updates) != 2 || prog.updates[1] != 100 {
		t.Errorf("progress updates = %v, want [50 100]", prog.updates)
	}
	if v := g.At(9, 0); v != 0 {
		t.Errorf("polygon should not touch cells, got %v", v)
	}
}

func TestInjectErrors(t *testing.T) {
	fc := pointCollection()
	if _, err := InjectPoints(testGrid(), NewFeatureSource(fc, ""), nil, InjectOptions{}); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	bad := &Grid{Rows: 2, Cols: 2, Data: make([]float64, 3), Transform: GeoTransform{0, 1, 0, 0, 0, -1}}
	if _, err := InjectPoints(bad, NewFeatureSource(fc, ""), nil, InjectOptions{ValueField: "v"}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
}
