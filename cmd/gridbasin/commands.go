package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/wgdzlh/gridbasin"
	"github.com/wgdzlh/gridbasin/log"
	"github.com/wgdzlh/gridbasin/utils"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const logTag = "gridbasin:"

var errUsage = errors.New("invalid arguments")

// 公共旗标，在解析后与配置文件合并
type commonFlags struct {
	config   string
	logLevel string
	band     int
	noBar    bool
}

func (c *commonFlags) register(set *flag.FlagSet) {
	set.StringVar(&c.config, "config", "", "Path to JSON config file.")
	set.StringVar(&c.logLevel, "log", "info", "Log level: debug, info, warn or error.")
	set.IntVar(&c.band, "band", gridbasin.DefaultBand, "Raster band to read (1-based).")
	set.BoolVar(&c.noBar, "no-progress", false, "Disable progress bars.")
}

// 读取配置并以显式旗标覆盖
func (c *commonFlags) load(set *flag.FlagSet) (cfg *Config, seen map[string]bool, err error) {
	if cfg, err = loadConfig(c.config); err != nil {
		return
	}
	seen = visited(set)
	if seen["log"] {
		cfg.LogLevel = c.logLevel
	}
	if seen["band"] {
		cfg.Band = c.band
	}
	log.SetLevel(cfg.LogLevel)
	return
}

func runInject(ctx context.Context, set *flag.FlagSet, args []string) (err error) {
	var (
		cf                              commonFlags
		raster, points, field, out, drv string
		outDriver                       string
	)
	cf.register(set)
	set.StringVar(&raster, "raster", "", "Input raster. (required)")
	set.StringVar(&points, "points", "", "Point layer whose values overwrite raster cells. (required)")
	set.StringVar(&field, "field", "", "Numeric attribute holding the new cell value. (required)")
	set.StringVar(&out, "out", "", "Output raster. (required)")
	set.StringVar(&drv, "point-driver", gridbasin.SHP_DRIVER_NAME, "OGR driver of the point layer.")
	set.StringVar(&outDriver, "driver", gridbasin.TIF_DRIVER_NAME, "GDAL driver of the output raster.")
	if err = set.Parse(args); err != nil {
		return
	}
	cfg, seen, err := cf.load(set)
	if err != nil {
		return
	}
	if !seen["field"] && cfg.Inject.ValueField != "" {
		field = cfg.Inject.ValueField
	}
	if !seen["point-driver"] {
		drv = cfg.Inject.PointDriver
	}
	if !seen["driver"] {
		outDriver = cfg.Inject.Driver
	}
	if raster == "" || points == "" || field == "" || out == "" {
		set.Usage()
		return fmt.Errorf("%w: -raster, -points, -field and -out are required", errUsage)
	}
	for _, p := range []string{raster, points} {
		if !utils.IsFile(p) {
			return fmt.Errorf("%w: %s", gridbasin.ErrSourceNotFound, p)
		}
	}
	runID := uuid.NewString()
	log.Info(logTag+"inject", zap.String("run", runID), zap.String("raster", raster), zap.String("points", points))

	tb := gridbasin.NewGdalToolbox(cfg.TmpDir)
	defer tb.Close()
	b := newBars(!cf.noBar)
	rep, err := tb.ModifyRasterValues(gridbasin.ModifyRasterJob{
		Raster:      raster,
		Band:        cfg.Band,
		Points:      points,
		PointDriver: drv,
		ValueField:  field,
		Out:         out,
		Write:       gridbasin.WriteOptions{Driver: outDriver, CreationOptions: cfg.Inject.CreationOptions},
		Progress:    b.track(ctx, filepath.Base(out)),
	})
	b.stop()
	if err != nil {
		log.Error(logTag+"inject failed", zap.String("run", runID), zap.Error(err))
		return
	}
	fmt.Printf("features: %d, applied: %d, non-point: %d, non-numeric: %d, out of range: %d, unprojectable: %d, canceled: %t\n",
		rep.Total, rep.Applied, rep.NonPoint, rep.NonNumeric, rep.OutOfRange, rep.Unprojectable, rep.Canceled)
	return
}

func runBasin(ctx context.Context, set *flag.FlagSet, args []string) (err error) {
	var (
		cf                   commonFlags
		outDir, enc, utmZone string
		fill                 float64
		jobs                 int
	)
	cf.register(set)
	set.StringVar(&outDir, "outdir", "", "Output directory; defaults to the directory of each raster.")
	set.StringVar(&enc, "encoding", "", "Output text encoding: utf-8, latin1, cp1252 or gbk.")
	set.StringVar(&utmZone, "utm", "", "Compute lat/lon offline from this WGS84 UTM zone, e.g. EPSG:32618.")
	set.Float64Var(&fill, "fill", gridbasin.DefaultFillValue, "Value written to unfilled columns.")
	set.IntVar(&jobs, "jobs", 1, "Rasters exported concurrently.")
	set.Usage = func() {
		fmt.Fprintf(set.Output(), "USAGE:\n    %s basin [FLAGS] RASTER...\n\nFLAGS:\n", os.Args[0])
		set.PrintDefaults()
	}
	if err = set.Parse(args); err != nil {
		return
	}
	cfg, seen, err := cf.load(set)
	if err != nil {
		return
	}
	if seen["fill"] {
		cfg.Basin.FillValue = &fill
	}
	if seen["encoding"] {
		cfg.Basin.Encoding = enc
	}
	if seen["jobs"] {
		cfg.Basin.Jobs = jobs
	}
	if seen["utm"] {
		cfg.Basin.Geo = utmZone
	}
	rasters := set.Args()
	if len(rasters) == 0 {
		set.Usage()
		return fmt.Errorf("%w: no raster given", errUsage)
	}
	for _, r := range rasters {
		if !utils.IsFile(r) {
			return fmt.Errorf("%w: %s", gridbasin.ErrSourceNotFound, r)
		}
	}
	if outDir != "" && !utils.IsDirectory(outDir) {
		if err = os.MkdirAll(outDir, os.ModePerm); err != nil {
			return
		}
	}
	geo, err := cfg.geographic()
	if err != nil {
		return
	}
	if cfg.Basin.Jobs < 1 {
		cfg.Basin.Jobs = 1
	}
	runID := uuid.NewString()
	log.Info(logTag+"basin", zap.String("run", runID), zap.Int("rasters", len(rasters)), zap.Int("jobs", cfg.Basin.Jobs))

	tb := gridbasin.NewGdalToolbox(cfg.TmpDir)
	defer tb.Close()
	b := newBars(!cf.noBar)
	defer b.stop()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
		sem  = semaphore.NewWeighted(int64(cfg.Basin.Jobs))
	)
	for _, raster := range rasters {
		if err = sem.Acquire(ctx, 1); err != nil {
			log.Warn(logTag+"basin interrupted", zap.String("run", runID))
			err = nil
			break
		}
		out := utils.DeriveOutput(raster, outDir, ".txt")
		opt := cfg.basinOptions()
		opt.Progress = b.track(ctx, filepath.Base(out))
		wg.Add(1)
		go func(raster, out string, opt gridbasin.BasinOptions) {
			defer wg.Done()
			defer sem.Release(1)
			rep, e := tb.RasterToBasin(gridbasin.RasterToBasinJob{
				Raster:     raster,
				Band:       cfg.Band,
				Out:        out,
				Basin:      opt,
				Geographic: geo,
			})
			if e != nil {
				e = fmt.Errorf("%s: %w", raster, e)
			} else {
				log.Info(logTag+"basin written", zap.String("run", runID), zap.String("out", out),
					zap.Int("written", rep.Written), zap.Int("unprojectable", rep.Unprojectable), zap.Bool("canceled", rep.Canceled))
			}
			mu.Lock()
			errs = multierr.Append(errs, e)
			mu.Unlock()
		}(raster, out, opt)
	}
	wg.Wait()
	return errs
}
