package gridbasin

import (
	"fmt"
	"io"

	"github.com/wgdzlh/gridbasin/log"
	"github.com/wgdzlh/gridbasin/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// OGR点图层样本源
type ogrSampleSource struct {
	ds      gdal.DataSource
	layer   gdal.Layer
	srs     string
	count   int
	fields  []ogrField
	feature *gdal.Feature
	logTag  string
}

type ogrField struct {
	name string
	idx  int
	ft   gdal.FieldType
}

// 打开点矢量（驱动默认ESRI Shapefile），读取第一个图层
// valueField非空时要求图层中存在该字段（兼容GBK编码的字段名）
func (g *GdalToolbox) OpenPointLayer(path, driverName, valueField string) (src *ogrSampleSource, err error) {
	if driverName == "" {
		driverName = SHP_DRIVER_NAME
	}
	driver := gdal.OGRDriverByName(driverName)
	ds, ok := driver.Open(path, 0)
	if !ok {
		log.Error(g.logTag+"open point layer failed", zap.String("path", path), zap.String("driver", driverName))
		err = fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		return
	}
	defer func() {
		if err != nil {
			ds.Destroy()
		}
	}()
	if ds.LayerCount() == 0 {
		err = fmt.Errorf("%w: no layer in %s", ErrSourceNotFound, path)
		return
	}
	layer := ds.LayerByIndex(0)
	def := layer.Definition()
	src = &ogrSampleSource{
		ds:     ds,
		layer:  layer,
		count:  -1,
		logTag: g.logTag,
	}
	for i, n := 0, def.FieldCount(); i < n; i++ {
		fd := def.FieldDefinition(i)
		src.fields = append(src.fields, ogrField{name: fd.Name(), idx: i, ft: fd.Type()})
	}
	if valueField != "" && def.FieldIndex(valueField) < 0 {
		// 字段名可能为GBK编码
		gbk, e := utils.Utf8StrToGbk(valueField)
		if idx := def.FieldIndex(gbk); e != nil || idx < 0 {
			src = nil
			err = fmt.Errorf("%w: "+ErrColumnMissingTemplate, ErrMissingField, valueField)
			return
		} else {
			src.fields[idx].name = valueField
		}
	}
	if sRef := layer.SpatialReference(); sRef.IsProjected() || sRef.IsGeographic() {
		src.srs, _ = sRef.ToWKT()
	}
	if nf, ok := layer.FeatureCount(false); ok {
		src.count = nf
	}
	log.Info(g.logTag+"point layer opened", zap.String("path", path), zap.Int("features", src.count),
		zap.Int("fields", len(src.fields)), zap.Bool("hasSrs", src.srs != ""))
	return
}

func (s *ogrSampleSource) SpatialRef() string {
	return s.srs
}

func (s *ogrSampleSource) Len() int {
	return s.count
}

func (s *ogrSampleSource) Reset() error {
	s.release()
	s.layer.ResetReading()
	return nil
}

func (s *ogrSampleSource) release() {
	if s.feature != nil {
		s.feature.Destroy()
		s.feature = nil
	}
}

// 非点要素返回ErrWrongGeoType
func (s *ogrSampleSource) Next() (sp Sample, err error) {
	s.release()
	if s.feature = s.layer.NextFeature(); s.feature == nil {
		err = io.EOF
		return
	}
	geo := s.feature.Geometry()
	if geo.IsEmpty() || geo.PointCount() != 1 {
		err = fmt.Errorf("%w: feature %d is %s", ErrWrongGeoType, s.feature.FID(), geo.Name())
		return
	}
	sp.Point[0], sp.Point[1] = geo.X(0), geo.Y(0)
	sp.Attrs = make(Attributes, len(s.fields))
	for _, f := range s.fields {
		sp.Attrs[f.name] = s.fieldValue(f)
	}
	return
}

func (s *ogrSampleSource) fieldValue(f ogrField) Value {
	if !s.feature.IsFieldSet(f.idx) {
		return Null()
	}
	switch f.ft {
	case gdal.FT_Integer, gdal.FT_Integer64:
		return Number(float64(s.feature.FieldAsInteger64(f.idx)))
	case gdal.FT_Real:
		return Number(s.feature.FieldAsFloat64(f.idx))
	default:
		return Text(utils.PurifyForUtf8(s.feature.FieldAsString(f.idx)))
	}
}

func (s *ogrSampleSource) Close() error {
	s.release()
	s.ds.Destroy()
	return nil
}

var (
	_ SampleSource = (*ogrSampleSource)(nil)
	_ io.Closer    = (*ogrSampleSource)(nil)
	_ destroyable  = (*gdalReprojector)(nil)
)
