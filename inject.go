package gridbasin

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wgdzlh/gridbasin/log"

	"go.uber.org/zap"
)

type InjectOptions struct {
	ValueField string   // 取值字段
	Progress   Progress // 可为nil
}

// 注入统计：非点要素、越界、非数值及无法转换坐标的点均跳过并计数
type InjectReport struct {
	Total         int // 已遍历的要素数
	Applied       int
	NonPoint      int
	NonNumeric    int
	OutOfRange    int
	Unprojectable int
	Canceled      bool
}

// 将点样本的字段值写入所在像元（后写覆盖先写）
// 取消时返回已修改的grid与nil错误
func InjectPoints(grid *Grid, src SampleSource, rp Reprojector, opt InjectOptions) (rep InjectReport, err error) {
	const logTag = "Injector:"
	if err = grid.Validate(); err != nil {
		return
	}
	if opt.ValueField == "" {
		err = fmt.Errorf("%w: empty value field", ErrMissingField)
		return
	}
	if rp == nil {
		rp = IdentityReprojector
	}
	prog := opt.Progress
	if prog == nil {
		prog = NopProgress
	}
	if err = src.Reset(); err != nil {
		return
	}
	total := src.Len()
	log.Info(logTag+"start inject points", zap.Stringer("grid", grid), zap.String("field", opt.ValueField), zap.Int("points", total))
	var (
		sp       Sample
		x, y     float64
		row, col int
		e        error
	)
	for {
		if prog.IsCanceled() {
			rep.Canceled = true
			log.Info(logTag+"inject canceled", zap.Int("done", rep.Total))
			break
		}
		if sp, e = src.Next(); e != nil {
			if errors.Is(e, ErrWrongGeoType) {
				rep.Total++
				rep.NonPoint++
				reportProgress(prog, rep.Total, total)
				log.Debug(logTag+"skip non point feature", zap.Error(e))
				continue
			}
			if !errors.Is(e, io.EOF) {
				err = e
				log.Error(logTag+"read point failed", zap.Int("done", rep.Total), zap.Error(e))
			}
			break
		}
		rep.Total++
		reportProgress(prog, rep.Total, total)
		value, ok := sp.Attrs.Get(opt.ValueField).Float()
		if !ok {
			rep.NonNumeric++
			continue
		}
		if x, y, e = rp.Reproject(sp.Point[0], sp.Point[1]); e != nil || math.IsNaN(x) || math.IsNaN(y) {
			rep.Unprojectable++
			log.Debug(logTag+"skip unprojectable point", zap.Float64("x", sp.Point[0]), zap.Float64("y", sp.Point[1]), zap.Error(e))
			continue
		}
		if row, col = grid.CellIndex(x, y); !grid.Contains(row, col) {
			rep.OutOfRange++
			log.Debug(logTag+"skip out of range point", zap.Float64("x", x), zap.Float64("y", y), zap.Int("row", row), zap.Int("col", col))
			continue
		}
		grid.Set(row, col, value)
		rep.Applied++
	}
	log.Info(logTag+"inject points done", zap.Int("total", rep.Total), zap.Int("applied", rep.Applied),
		zap.Int("nonPoint", rep.NonPoint), zap.Int("nonNumeric", rep.NonNumeric), zap.Int("outOfRange", rep.OutOfRange),
		zap.Int("unprojectable", rep.Unprojectable), zap.Bool("canceled", rep.Canceled))
	return
}

// total未知时不报告
func reportProgress(prog Progress, done, total int) {
	if total > 0 {
		prog.SetProgress(percent(done, total))
	}
}
