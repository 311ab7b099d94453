package gridbasin

import (
	"github.com/wgdzlh/gridbasin/log"

	"go.uber.org/zap"
)

// 点值修改栅格的输入
type ModifyRasterJob struct {
	Raster      string // 输入栅格
	Band        int
	Points      string // 点矢量
	PointDriver string // OGR驱动名，默认ESRI Shapefile
	ValueField  string
	Out         string
	Write       WriteOptions
	Progress    Progress
}

// 读取栅格波段，按点矢量修改像元值后写为新栅格
// 取消时仍写出已修改的部分结果
func (g *GdalToolbox) ModifyRasterValues(job ModifyRasterJob) (rep InjectReport, err error) {
	log.Info(g.logTag+"start modify raster values", zap.String("raster", job.Raster), zap.Int("band", job.Band),
		zap.String("points", job.Points), zap.String("field", job.ValueField), zap.String("out", job.Out))
	grid, err := g.ReadGrid(job.Raster, job.Band)
	if err != nil {
		return
	}
	src, err := g.OpenPointLayer(job.Points, job.PointDriver, job.ValueField)
	if err != nil {
		return
	}
	defer src.Close()
	rp, release, err := g.NewReprojector(src.SpatialRef(), grid.Srs)
	if err != nil {
		return
	}
	defer release()
	rep, err = InjectPoints(grid, src, rp, InjectOptions{ValueField: job.ValueField, Progress: job.Progress})
	if err != nil {
		return
	}
	err = g.WriteGrid(grid, job.Out, job.Write)
	return
}

// 栅格转基流域文件的输入
type RasterToBasinJob struct {
	Raster string
	Band   int
	Out    string
	Basin  BasinOptions
	// 为空时通过GDAL转换到EPSG:4326
	Geographic Reprojector
}

func (g *GdalToolbox) RasterToBasin(job RasterToBasinJob) (rep BasinReport, err error) {
	log.Info(g.logTag+"start raster to basin", zap.String("raster", job.Raster), zap.Int("band", job.Band), zap.String("out", job.Out))
	grid, err := g.ReadGrid(job.Raster, job.Band)
	if err != nil {
		return
	}
	if job.Geographic != nil {
		return g.WriteBasinWith(grid, job.Geographic, job.Out, job.Basin)
	}
	return g.WriteBasin(grid, job.Out, job.Basin)
}
