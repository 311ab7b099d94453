package gridbasin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/wgdzlh/gridbasin/log"

	"github.com/airbusgeo/godal"
	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

type GdalToolbox struct {
	refMap map[string]gdal.SpatialReference
	rLock  sync.Mutex
	tmpDir string
	logTag string
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

var registerOnce sync.Once

// 初始化GDAL工具箱，tmpDir为可选的临时目录路径（未提供的话为输出文件所在目录）
func NewGdalToolbox(tmpDir ...string) *GdalToolbox {
	registerOnce.Do(godal.RegisterAll)
	g := &GdalToolbox{
		refMap: map[string]gdal.SpatialReference{},
		logTag: "GdalToolbox:",
	}
	if len(tmpDir) > 0 && tmpDir[0] != "" {
		g.tmpDir = tmpDir[0]
	}
	return g
}

// 释放缓存的坐标系
func (g *GdalToolbox) Close() {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	for k, ref := range g.refMap {
		ref.Destroy()
		delete(g.refMap, k)
	}
}

// 获取定义对应坐标系的副本，调用方负责Destroy
// 缓存中的对象只在锁内访问，多个任务并发时各自使用副本
func (g *GdalToolbox) cloneSrsRef(def string) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	cached, err := g.getSrsRef(def)
	if err != nil {
		return
	}
	ref = cached.Clone()
	return
}

// 获取定义（WKT、EPSG:xxxx、proj串）对应的坐标系（缓存复用，无需回收），须持有rLock
func (g *GdalToolbox) getSrsRef(def string) (ref gdal.SpatialReference, err error) {
	def = strings.TrimSpace(def)
	ref, ok := g.refMap[def]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.SetFromUserInput(def); err != nil {
		log.Error(g.logTag+"set ref from definition failed", zap.String("srs", abbrev(def)), zap.Error(err))
		ref.Destroy()
		err = fmt.Errorf("%w: %s", ErrUnsupportedSrs, abbrev(def))
		return
	}
	// 数据轴次序固定为(经度,纬度)/(东,北)的传统GIS坐标序，否则EPSG:4326下的转换结果会出现次序倒置
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[def] = ref
	return
}

type gdalReprojector struct {
	trans  gdal.CoordinateTransform
	xs     []float64
	ys     []float64
	zs     []float64
	closed bool
}

func (r *gdalReprojector) Reproject(x, y float64) (tx, ty float64, err error) {
	r.xs[0], r.ys[0], r.zs[0] = x, y, 0
	if !r.trans.Transform(1, r.xs, r.ys, r.zs) {
		err = fmt.Errorf("%w: (%f, %f)", ErrReprojection, x, y)
		return
	}
	return r.xs[0], r.ys[0], nil
}

func (r *gdalReprojector) Destroy() {
	if !r.closed {
		r.trans.Destroy()
		r.closed = true
	}
}

// 构造src->dst的坐标转换器（一次构造，逐点复用），调用方负责Destroy
// 任一侧定义为空或两侧坐标系相同时返回恒等转换
func (g *GdalToolbox) NewReprojector(src, dst string) (ret Reprojector, release func(), err error) {
	release = func() {}
	if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
		log.Warn(g.logTag+"void spatial ref, use identity", zap.Bool("srcVoid", src == ""), zap.Bool("dstVoid", dst == ""))
		ret = IdentityReprojector
		return
	}
	sRef, err := g.cloneSrsRef(src)
	if err != nil {
		return
	}
	defer sRef.Destroy()
	tRef, err := g.cloneSrsRef(dst)
	if err != nil {
		return
	}
	defer tRef.Destroy()
	if src == dst || sRef.IsSame(tRef) {
		ret = IdentityReprojector
		return
	}
	r := &gdalReprojector{
		trans: gdal.CreateCoordinateTransform(sRef, tRef),
		xs:    make([]float64, 1),
		ys:    make([]float64, 1),
		zs:    make([]float64, 1),
	}
	log.Info(g.logTag+"coordinate transform created", zap.String("src", abbrev(src)), zap.String("dst", abbrev(dst)))
	ret, release = r, r.Destroy
	return
}

// 获取坐标系的WKT
func (g *GdalToolbox) SrsToWkt(def string) (wkt string, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, err := g.getSrsRef(def)
	if err != nil {
		return
	}
	return ref.ToWKT()
}

func abbrev(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
