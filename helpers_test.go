package gridbasin

import (
	"errors"
	"os"
	"testing"

	"github.com/wgdzlh/gridbasin/utils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 在第cancelAfter次检查之后返回取消，cancelAfter<0时永不取消
type stubProgress struct {
	cancelAfter int
	checks      int
	updates     []int
}

func (p *stubProgress) SetProgress(v int) {
	p.updates = append(p.updates, v)
}

func (p *stubProgress) IsCanceled() bool {
	p.checks++
	return p.cancelAfter >= 0 && p.checks > p.cancelAfter
}

type failingReprojector struct{}

func (failingReprojector) Reproject(x, y float64) (float64, float64, error) {
	return 0, 0, errors.New("no transform")
}

type shiftReprojector struct {
	dx, dy float64
}

func (r shiftReprojector) Reproject(x, y float64) (float64, float64, error) {
	return x + r.dx, y + r.dy, nil
}

func pointFeature(x, y float64, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{x, y})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

func pointCollection(fs ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range fs {
		fc.Append(f)
	}
	return fc
}

// 10x10，单元10，左上角(0,100)
func testGrid() *Grid {
	g, _ := NewGrid(10, 10, GeoTransform{0, 10, 0, 100, 0, -10}, "")
	return g
}

// 临时目录，优先放在/dev/shm以覆盖跨文件系统改名
func scratchDir(t *testing.T) string {
	t.Helper()
	if !utils.IsDirectory("/dev/shm") {
		return t.TempDir()
	}
	dir, err := os.MkdirTemp("/dev/shm", "gridbasin")
	if err != nil {
		return t.TempDir()
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
