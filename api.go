package gridbasin

import (
	"context"
	"strconv"

	"github.com/paulmach/orb"
)

type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
)

// 属性值：数值 | 文本 | 空
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

func Number(v float64) Value {
	return Value{Kind: KindNumber, Num: v}
}

func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func Null() Value {
	return Value{}
}

// 仅当为数值时ok为true
func (v Value) Float() (f float64, ok bool) {
	if v.Kind != KindNumber {
		return
	}
	return v.Num, true
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Text
	default:
		return "NULL"
	}
}

// 按字段名索引的属性行
type Attributes map[string]Value

// 字段不存在时返回Null
func (a Attributes) Get(field string) Value {
	return a[field]
}

// 点样本：坐标 + 属性行
type Sample struct {
	Point orb.Point
	Attrs Attributes
}

// 点样本源，Next在遍历结束时返回io.EOF，Reset后可重新遍历
// 非点要素同样被消费，Next对其返回包装ErrWrongGeoType的错误，调用方可跳过继续
type SampleSource interface {
	SpatialRef() string // 原生坐标系定义（WKT/EPSG:xxxx），为空表示未知
	Len() int           // 要素总数（含非点要素），未知时为-1
	Reset() error
	Next() (Sample, error)
}

// 坐标转换器，源/目标坐标系在构造时固定
type Reprojector interface {
	Reproject(x, y float64) (tx, ty float64, err error)
}

// 进度与取消
type Progress interface {
	SetProgress(percent int)
	IsCanceled() bool
}

type nopProgress struct{}

func (nopProgress) SetProgress(int)  {}
func (nopProgress) IsCanceled() bool { return false }

// 不报告进度、永不取消
var NopProgress Progress = nopProgress{}

type ctxProgress struct {
	ctx context.Context
	fn  func(int)
}

func (p ctxProgress) SetProgress(percent int) {
	if p.fn != nil {
		p.fn(percent)
	}
}

func (p ctxProgress) IsCanceled() bool {
	return p.ctx.Err() != nil
}

// 以ctx的取消作为取消信号，fn可为nil
func ContextProgress(ctx context.Context, fn func(percent int)) Progress {
	return ctxProgress{ctx: ctx, fn: fn}
}

type identity struct{}

func (identity) Reproject(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// 不做任何转换
var IdentityReprojector Reprojector = identity{}
