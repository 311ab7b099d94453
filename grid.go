package gridbasin

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// 仿射变换 (originX, pixelWidth, rotX, originY, rotY, pixelHeight)
type GeoTransform [6]float64

// 地理栅格：行优先的单波段缓冲区 + 仿射变换 + 坐标系
type Grid struct {
	Rows, Cols int
	Data       []float64 // len == Rows*Cols，无论变换方向如何，第0行均为北侧（Y最大），第0列为西侧
	Transform  GeoTransform
	Srs        string // 坐标系定义，WKT等
	NoData     float64
	HasNoData  bool
}

func NewGrid(rows, cols int, gt GeoTransform, srs string) (g *Grid, err error) {
	g = &Grid{
		Rows:      rows,
		Cols:      cols,
		Data:      make([]float64, rows*cols),
		Transform: gt,
		Srs:       srs,
	}
	if err = g.Validate(); err != nil {
		g = nil
	}
	return
}

// 检查尺寸与变换（不支持旋转）
func (g *Grid) Validate() error {
	switch {
	case g.Rows <= 0 || g.Cols <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidGrid, g.Rows, g.Cols)
	case len(g.Data) != g.Rows*g.Cols:
		return fmt.Errorf("%w: buffer length %d for %dx%d", ErrInvalidGrid, len(g.Data), g.Rows, g.Cols)
	case g.Transform[1] == 0 || g.Transform[5] == 0:
		return fmt.Errorf("%w: zero pixel size", ErrInvalidGrid)
	case g.Transform[2] != 0 || g.Transform[4] != 0:
		return fmt.Errorf("%w: rotated transform", ErrInvalidGrid)
	}
	return nil
}

func (g *Grid) SetNoData(v float64) {
	g.NoData = v
	g.HasNoData = true
}

func (g *Grid) CellSizeX() float64 {
	return math.Abs(g.Transform[1])
}

func (g *Grid) CellSizeY() float64 {
	return math.Abs(g.Transform[5])
}

// 左下角：像元尺寸为负时原点位于该轴的最大值一侧
func (g *Grid) LowerLeft() (xll, yll float64) {
	gt := g.Transform
	xll, yll = gt[0], gt[3]
	if gt[1] < 0 {
		xll = gt[0] + gt[1]*float64(g.Cols)
	}
	if gt[5] < 0 {
		yll = gt[3] + gt[5]*float64(g.Rows)
	}
	return
}

func (g *Grid) UpperRight() (xur, yur float64) {
	xll, yll := g.LowerLeft()
	xur = xll + float64(g.Cols)*g.CellSizeX()
	yur = yll + float64(g.Rows)*g.CellSizeY()
	return
}

func (g *Grid) Bounds() orb.Bound {
	xll, yll := g.LowerLeft()
	xur, yur := g.UpperRight()
	return orb.Bound{Min: orb.Point{xll, yll}, Max: orb.Point{xur, yur}}
}

// 世界坐标所在的像元行列，不做越界检查
func (g *Grid) CellIndex(x, y float64) (row, col int) {
	xll, yll := g.LowerLeft()
	col = int(math.Floor((x - xll) / g.CellSizeX()))
	row = g.Rows - int(math.Ceil((y-yll)/g.CellSizeY()))
	return
}

func (g *Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// 规范化的北向上变换 (xll, cellSizeX, 0, yur, 0, -cellSizeY)
func (g *Grid) NorthUpTransform() GeoTransform {
	xll, _ := g.LowerLeft()
	_, yur := g.UpperRight()
	return GeoTransform{xll, g.CellSizeX(), 0, yur, 0, -g.CellSizeY()}
}

func (g *Grid) String() string {
	return fmt.Sprintf("%dx%d %s", g.Rows, g.Cols, SpanToWkt(g.Bounds()))
}
