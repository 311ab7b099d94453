package gridbasin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wgdzlh/gridbasin/log"
	"github.com/wgdzlh/gridbasin/utils"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type BasinOptions struct {
	FillValue float64
	Schema    BasinSchema // 为空时使用SIGA_CAL_V1.0
	Encoding  string      // 输出文本编码，默认UTF-8
	Progress  Progress
}

func DefaultBasinOptions() BasinOptions {
	return BasinOptions{
		FillValue: DefaultFillValue,
		Schema:    DefaultBasinSchema(),
	}
}

type BasinReport struct {
	Cells         int
	Written       int
	Unprojectable int // 无法转换经纬度的像元，lat/lon写入填充值
	Canceled      bool
}

// 逐像元写出基流域文件：像元数、像元面积、拓扑类型及变量矩阵
// rp为grid坐标系到EPSG:4326的转换，输出(经度,纬度)
func ExportBasin(grid *Grid, rp Reprojector, w io.Writer, opt BasinOptions) (rep BasinReport, err error) {
	const logTag = "BasinExporter:"
	if err = grid.Validate(); err != nil {
		return
	}
	schema := opt.Schema
	if len(schema) == 0 {
		schema = DefaultBasinSchema()
	}
	if err = schema.Validate(); err != nil {
		return
	}
	if rp == nil {
		rp = IdentityReprojector
	}
	prog := opt.Progress
	if prog == nil {
		prog = NopProgress
	}
	var (
		rows, cols = grid.Rows, grid.Cols
		ncls       = rows * cols
		csz        = (grid.CellSizeX() + grid.CellSizeY()) / 2
		xul, _     = grid.LowerLeft()
		_, yul     = grid.UpperRight()
		fill       = FormatFill(opt.FillValue)
		bw         = bufio.NewWriter(w)
	)
	rep.Cells = ncls
	log.Info(logTag+"start export basin", zap.Stringer("grid", grid), zap.Int("cells", ncls),
		zap.Float64("cellSize", csz), zap.String("fill", fill), zap.Int("fields", len(schema)))
	fmt.Fprintf(bw, "%s\n%d\n\n%s\n%.2f\n\n%s\n%s\n\n%s\n",
		BasinCellCountTitle, ncls,
		BasinCellAreaTitle, csz*csz,
		BasinTopologyTitle, BasinTopologyType,
		BasinMatrixTitle)
	bw.WriteString(strings.Join(schema.Names(), " "))
	bw.WriteByte('\n')

	// 单条记录逐像元复用，仅计算列每次重写
	rec := make([][]byte, len(schema))
	for i, f := range schema {
		switch f.Kind {
		case FieldFill:
			rec[i] = []byte(fill)
		case FieldConst:
			rec[i] = []byte(f.Const)
		default:
			rec[i] = make([]byte, 0, 24)
		}
	}
	fillBytes := []byte(fill)
	var (
		x, y, z  float64
		lon, lat float64
		geoOk    bool
		e        error
	)
	needGeo := schema.needsGeographic()
out:
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if prog.IsCanceled() {
				rep.Canceled = true
				log.Info(logTag+"export canceled", zap.Int("written", rep.Written))
				break out
			}
			x = xul + float64(col)*csz + csz/2
			y = yul - float64(row)*csz - csz/2
			z = grid.At(row, col)
			geoOk = false
			if needGeo {
				if lon, lat, e = rp.Reproject(x, y); e == nil {
					geoOk = true
				} else {
					rep.Unprojectable++
					log.Debug(logTag+"cell center not projectable", zap.Int("row", row), zap.Int("col", col), zap.Error(e))
				}
			}
			for i, f := range schema {
				switch f.Kind {
				case FieldX:
					rec[i] = strconv.AppendFloat(rec[i][:0], x, 'f', 3, 64)
				case FieldY:
					rec[i] = strconv.AppendFloat(rec[i][:0], y, 'f', 3, 64)
				case FieldZ:
					rec[i] = strconv.AppendFloat(rec[i][:0], z, 'f', 3, 64)
				case FieldLat:
					rec[i] = appendCoord(rec[i][:0], lat, geoOk, fillBytes)
				case FieldLon:
					rec[i] = appendCoord(rec[i][:0], lon, geoOk, fillBytes)
				}
				if i > 0 {
					bw.WriteByte(' ')
				}
				bw.Write(rec[i])
			}
			if err = bw.WriteByte('\n'); err != nil {
				log.Error(logTag+"write basin line failed", zap.Int("row", row), zap.Int("col", col), zap.Error(err))
				return
			}
			rep.Written++
			prog.SetProgress(percent(rep.Written, ncls))
		}
	}
	if err = bw.Flush(); err != nil {
		log.Error(logTag+"flush basin failed", zap.Error(err))
		return
	}
	log.Info(logTag+"export basin done", zap.Int("written", rep.Written), zap.Int("unprojectable", rep.Unprojectable), zap.Bool("canceled", rep.Canceled))
	return
}

func appendCoord(dst []byte, v float64, ok bool, fill []byte) []byte {
	if !ok {
		return append(dst, fill...)
	}
	return strconv.AppendFloat(dst, v, 'f', 6, 64)
}

// 将grid导出为基流域文件（经纬度通过GDAL转换到EPSG:4326）
func (g *GdalToolbox) WriteBasin(grid *Grid, out string, opt BasinOptions) (rep BasinReport, err error) {
	rp, release, err := g.NewReprojector(grid.Srs, UNIVERSAL_SRS)
	if err != nil {
		return
	}
	defer release()
	return g.WriteBasinWith(grid, rp, out, opt)
}

// 使用指定的经纬度转换器导出基流域文件，先写临时文件再改名
func (g *GdalToolbox) WriteBasinWith(grid *Grid, rp Reprojector, out string, opt BasinOptions) (rep BasinReport, err error) {
	enc, ok := utils.LookupEncoding(opt.Encoding)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownEncoding, opt.Encoding)
		return
	}
	tmp := utils.TempSibling(out, g.tmpDir)
	f, err := os.Create(tmp)
	if err != nil {
		log.Error(g.logTag+"create basin file failed", zap.String("tmp", tmp), zap.Error(err))
		return
	}
	log.Info(g.logTag+"write basin file", zap.String("out", out), zap.Bool("utf8", enc == nil))
	ew := utils.EncodingWriter(f, enc)
	rep, err = ExportBasin(grid, rp, ew, opt)
	if err = multierr.Combine(err, ew.Close(), f.Close()); err != nil {
		os.Remove(tmp)
		return
	}
	// 取消时文件只含已写出的像元，头部像元数随之修正
	if rep.Canceled {
		if err = rewriteCellCount(tmp, rep.Written); err != nil {
			log.Error(g.logTag+"rewrite cell count failed", zap.String("tmp", tmp), zap.Error(err))
			os.Remove(tmp)
			return
		}
	}
	if err = utils.MoveFile(tmp, out); err != nil {
		os.Remove(tmp)
	}
	return
}

// 将基流域文件第二行（像元数）替换为n，其余字节原样保留
func rewriteCellCount(path string, n int) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()
	fixed := utils.TempSibling(path, "")
	out, err := os.Create(fixed)
	if err != nil {
		return
	}
	var (
		br    = bufio.NewReader(in)
		bw    = bufio.NewWriter(out)
		title []byte
	)
	if title, err = br.ReadBytes('\n'); err == nil {
		_, err = br.ReadBytes('\n')
	}
	if err == nil {
		bw.Write(title)
		bw.WriteString(strconv.Itoa(n))
		bw.WriteByte('\n')
		_, err = io.Copy(bw, br)
	}
	if err = multierr.Combine(err, bw.Flush(), out.Close()); err != nil {
		os.Remove(fixed)
		return
	}
	if err = os.Rename(fixed, path); err != nil {
		os.Remove(fixed)
	}
	return
}
