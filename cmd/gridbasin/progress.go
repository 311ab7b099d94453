package main

import (
	"context"
	"fmt"

	"github.com/gosuri/uiprogress"
	"github.com/wgdzlh/gridbasin"
)

// 终端进度条，每个任务一条
type bars struct {
	p *uiprogress.Progress
}

func newBars(enabled bool) *bars {
	if !enabled {
		return &bars{}
	}
	p := uiprogress.New()
	p.Start()
	return &bars{p: p}
}

// 返回绑定ctx取消信号的进度汇报
func (b *bars) track(ctx context.Context, name string) gridbasin.Progress {
	if b.p == nil {
		return gridbasin.ContextProgress(ctx, nil)
	}
	bar := b.p.AddBar(100).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(*uiprogress.Bar) string {
		return fmt.Sprintf("%-24s", name)
	})
	return gridbasin.ContextProgress(ctx, func(percent int) {
		bar.Set(percent)
	})
}

func (b *bars) stop() {
	if b.p != nil {
		b.p.Stop()
	}
}
