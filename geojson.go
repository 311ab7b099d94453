package gridbasin

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wgdzlh/gridbasin/log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// 内存要素集合样本源，只有点要素产生样本
type featureSource struct {
	fc  *geojson.FeatureCollection
	srs string
	pos int
}

// 以要素集合构造样本源，srs为集合坐标系（GeoJSON一般为EPSG:4326）
func NewFeatureSource(fc *geojson.FeatureCollection, srs string) SampleSource {
	return &featureSource{fc: fc, srs: srs}
}

// 读取GeoJSON文件为样本源
func LoadGeoJSON(path, srs string) (src SampleSource, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Error("GeoJSON:parse feature collection failed", zap.String("path", path), zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrSourceNotFound, err)
		return
	}
	if srs == "" {
		srs = UNIVERSAL_SRS
	}
	src = NewFeatureSource(fc, srs)
	return
}

func (s *featureSource) SpatialRef() string {
	return s.srs
}

func (s *featureSource) Len() int {
	return len(s.fc.Features)
}

func (s *featureSource) Reset() error {
	s.pos = 0
	return nil
}

func (s *featureSource) Next() (sp Sample, err error) {
	if s.pos >= len(s.fc.Features) {
		err = io.EOF
		return
	}
	f := s.fc.Features[s.pos]
	s.pos++
	p, ok := f.Geometry.(orb.Point)
	if !ok {
		err = fmt.Errorf("%w: feature %d is %s", ErrWrongGeoType, s.pos-1, geometryType(f.Geometry))
		return
	}
	sp.Point = p
	sp.Attrs = make(Attributes, len(f.Properties))
	for k, v := range f.Properties {
		sp.Attrs[k] = propertyValue(v)
	}
	return
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "empty"
	}
	return g.GeoJSONType()
}

func propertyValue(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return Text(t.String())
	case string:
		return Text(t)
	default:
		return Text(fmt.Sprint(t))
	}
}
