package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wgdzlh/gridbasin"
)

// 配置文件（JSON），命令行显式给出的旗标优先
type Config struct {
	LogLevel string `json:"log_level"`
	TmpDir   string `json:"tmp_dir"`
	Band     int    `json:"band"`
	Inject   struct {
		ValueField      string   `json:"value_field"`
		PointDriver     string   `json:"point_driver"`
		Driver          string   `json:"driver"`
		CreationOptions []string `json:"creation_options"`
	} `json:"inject"`
	Basin struct {
		FillValue *float64          `json:"fill_value"`
		Encoding  string            `json:"encoding"`
		Fields    []string          `json:"fields"`    // 覆盖默认SIGA列
		Constants map[string]string `json:"constants"` // 与fields配合使用
		Geo       string            `json:"geo"`       // "gdal"，或WGS84 UTM带的EPSG代码（EPSG:326xx/327xx）
		Jobs      int               `json:"jobs"`
	} `json:"basin"`
}

func defaultConfig() *Config {
	c := &Config{
		LogLevel: "info",
		Band:     gridbasin.DefaultBand,
	}
	c.Inject.PointDriver = gridbasin.SHP_DRIVER_NAME
	c.Inject.Driver = gridbasin.TIF_DRIVER_NAME
	c.Inject.CreationOptions = gridbasin.DefaultCreationOptions
	c.Basin.Geo = "gdal"
	c.Basin.Jobs = 1
	return c
}

// path为空时返回默认配置
func loadConfig(path string) (c *Config, err error) {
	c = defaultConfig()
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err = json.Unmarshal(data, c); err != nil {
		err = fmt.Errorf("parse config %s: %w", path, err)
	}
	return
}

func (c *Config) basinOptions() gridbasin.BasinOptions {
	opt := gridbasin.DefaultBasinOptions()
	if c.Basin.FillValue != nil {
		opt.FillValue = *c.Basin.FillValue
	}
	opt.Encoding = c.Basin.Encoding
	if len(c.Basin.Fields) > 0 {
		opt.Schema = gridbasin.NewBasinSchema(c.Basin.Fields, c.Basin.Constants)
	}
	return opt
}

// 经纬度计算方式：gdal（或空）返回nil，由GDAL转换到EPSG:4326；
// 否则按EPSG:326xx/327xx离线计算
func (c *Config) geographic() (gridbasin.Reprojector, error) {
	if c.Basin.Geo == "" || c.Basin.Geo == "gdal" {
		return nil, nil
	}
	r, err := gridbasin.NewUTMReprojector(c.Basin.Geo)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// 记录命令行中显式设置的旗标
func visited(set *flag.FlagSet) map[string]bool {
	m := map[string]bool{}
	set.Visit(func(f *flag.Flag) { m[f.Name] = true })
	return m
}
