package gridbasin

import (
	"fmt"
	"os"

	"github.com/wgdzlh/gridbasin/log"
	"github.com/wgdzlh/gridbasin/utils"

	gdal "github.com/airbusgeo/godal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type WriteOptions struct {
	Driver          string   // 输出驱动，默认GTiff
	CreationOptions []string // 如COMPRESS=LZW
}

func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Driver:          TIF_DRIVER_NAME,
		CreationOptions: DefaultCreationOptions,
	}
}

// 读取栅格的指定波段（从1开始）为Grid
// 缓冲区按北在上、西在左重排，变换保持文件原样
func (g *GdalToolbox) ReadGrid(tif string, band int) (grid *Grid, err error) {
	sds, err := gdal.Open(tif, gdal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open raster failed", zap.String("tif", tif), zap.Error(err))
		err = fmt.Errorf("%w: %s", ErrSourceNotFound, tif)
		return
	}
	defer sds.Close()
	tifBands := sds.Bands()
	bc := len(tifBands)
	if band <= 0 || band > bc {
		log.Error(g.logTag+"raster band out of range", zap.Int("band", band), zap.Int("bands", bc))
		err = fmt.Errorf("%w: "+ErrBandIndexTemplate, ErrInvalidBandIndex, band, bc)
		return
	}
	gt, err := sds.GeoTransform()
	if err != nil {
		log.Error(g.logTag+"raster without geotransform", zap.String("tif", tif), zap.Error(err))
		err = fmt.Errorf("%w: no geotransform in %s", ErrInvalidGrid, tif)
		return
	}
	st := sds.Structure()
	grid = &Grid{
		Rows:      st.SizeY,
		Cols:      st.SizeX,
		Data:      make([]float64, st.SizeX*st.SizeY),
		Transform: gt,
		Srs:       sds.Projection(),
	}
	if err = grid.Validate(); err != nil {
		grid = nil
		return
	}
	b := tifBands[band-1]
	if nd, ok := b.NoData(); ok {
		grid.SetNoData(nd)
	}
	log.Info(g.logTag+"read raster band", zap.String("tif", tif), zap.Int("band", band),
		zap.Int("width", grid.Cols), zap.Int("height", grid.Rows), zap.String("dt", b.Structure().DataType.String()))
	if err = b.IO(gdal.IORead, 0, 0, grid.Data, grid.Cols, grid.Rows); err != nil {
		log.Error(g.logTag+"read raster band failed", zap.Int("band", band), zap.Error(err))
		grid = nil
		err = fmt.Errorf("%w: %v", ErrRasterRead, err)
		return
	}
	if gt[5] > 0 {
		flipRows(grid.Data, grid.Rows, grid.Cols)
	}
	if gt[1] < 0 {
		flipCols(grid.Data, grid.Rows, grid.Cols)
	}
	return
}

func flipRows(data []float64, rows, cols int) {
	for top, bot := 0, rows-1; top < bot; top, bot = top+1, bot-1 {
		a := data[top*cols : (top+1)*cols]
		b := data[bot*cols : (bot+1)*cols]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}

func flipCols(data []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		for l, h := 0, cols-1; l < h; l, h = l+1, h-1 {
			row[l], row[h] = row[h], row[l]
		}
	}
}

// 将Grid写为单波段Float32栅格，变换统一为北向上，保留坐标系及无效值
// 先写入同目录临时文件，成功后再改名
func (g *GdalToolbox) WriteGrid(grid *Grid, out string, opt WriteOptions) (err error) {
	if err = grid.Validate(); err != nil {
		return
	}
	if opt.Driver == "" {
		opt.Driver = TIF_DRIVER_NAME
	}
	tmp := utils.TempSibling(out, g.tmpDir)
	log.Info(g.logTag+"start write raster", zap.String("out", out), zap.String("driver", opt.Driver), zap.Stringer("grid", grid))
	var cOpts []gdal.DatasetCreateOption
	if len(opt.CreationOptions) > 0 {
		cOpts = append(cOpts, gdal.CreationOption(opt.CreationOptions...))
	}
	ods, err := gdal.Create(gdal.DriverName(opt.Driver), tmp, 1, gdal.Float32, grid.Cols, grid.Rows, cOpts...)
	if err != nil {
		log.Error(g.logTag+"create raster failed", zap.String("tmp", tmp), zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrGdalDriverCreate, err)
		return
	}
	defer func() {
		if ods != nil {
			err = multierr.Append(err, ods.Close())
		}
		if err != nil {
			os.Remove(tmp)
			return
		}
		if err = utils.MoveFile(tmp, out); err != nil {
			os.Remove(tmp)
			return
		}
		log.Info(g.logTag+"raster written", zap.String("out", out))
	}()
	if err = ods.SetGeoTransform(grid.NorthUpTransform()); err != nil {
		err = fmt.Errorf("%w: %v", ErrRasterWrite, err)
		return
	}
	if grid.Srs != "" {
		if err = ods.SetProjection(grid.Srs); err != nil {
			err = fmt.Errorf("%w: %v", ErrRasterWrite, err)
			return
		}
	}
	band := ods.Bands()[0]
	if grid.HasNoData {
		if err = band.SetNoData(grid.NoData); err != nil {
			err = fmt.Errorf("%w: %v", ErrRasterWrite, err)
			return
		}
	}
	buf := make([]float32, len(grid.Data))
	for i, v := range grid.Data {
		buf[i] = float32(v)
	}
	if err = band.IO(gdal.IOWrite, 0, 0, buf, grid.Cols, grid.Rows); err != nil {
		log.Error(g.logTag+"write raster band failed", zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrRasterWrite, err)
		return
	}
	err = ods.Close()
	ods = nil
	return
}
