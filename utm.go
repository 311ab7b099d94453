package gridbasin

import (
	"fmt"
	"regexp"
	"strconv"

	UTM "github.com/im7mortal/UTM"
)

var (
	// EPSG:326xx 北半球 / EPSG:327xx 南半球 WGS84 UTM
	utmEpsg = regexp.MustCompile(`(?i)^EPSG:32([67])(\d{2})$`)
)

// 纯Go实现的WGS84 UTM -> 经纬度转换，无需GDAL
type UTMReprojector struct {
	Zone     int
	Northern bool
}

// 从EPSG:326xx/327xx定义构造
func NewUTMReprojector(def string) (r UTMReprojector, err error) {
	m := utmEpsg.FindStringSubmatch(def)
	if m == nil {
		err = fmt.Errorf("%w: %s is not a WGS84 UTM zone", ErrUnsupportedSrs, def)
		return
	}
	r.Zone, _ = strconv.Atoi(m[2])
	r.Northern = m[1] == "6"
	if r.Zone < 1 || r.Zone > 60 {
		err = fmt.Errorf("%w: utm zone %d", ErrUnsupportedSrs, r.Zone)
	}
	return
}

// 输出(经度,纬度)
func (r UTMReprojector) Reproject(x, y float64) (lon, lat float64, err error) {
	lat, lon, err = UTM.ToLatLon(x, y, r.Zone, "", r.Northern)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrReprojection, err)
	}
	return
}
