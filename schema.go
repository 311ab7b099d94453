package gridbasin

import (
	"fmt"
	"strings"
)

type FieldKind uint8

const (
	FieldFill FieldKind = iota // 填充值
	FieldConst                 // 固定字面量
	FieldX
	FieldY
	FieldZ
	FieldLat
	FieldLon
)

// 基流域矩阵中的一列
type BasinField struct {
	Name  string
	Kind  FieldKind
	Const string
}

// 有序的列定义，由下游模型约定
type BasinSchema []BasinField

var computedFields = map[string]FieldKind{
	"X":   FieldX,
	"Y":   FieldY,
	"Z":   FieldZ,
	"lat": FieldLat,
	"lon": FieldLon,
}

// SIGA_CAL_V1.0 的变量矩阵列
var sigaFieldNames = []string{
	"tipo", "destino", "tramo", "llanura", "embalse",
	"X", "Y", "Z", "lat", "lon",
	"L", "S", "D", "alfa1", "beta1",
	"S0", "S1", "S2", "S3", "S4", "S5",
	"H5b", "W5b", "Q5b", "HU", "LAI",
	"arcS2S", "limS2S", "areS2S", "arcS2D", "limS2D", "areS2D",
	"arcS5S", "limS5S", "areS5S", "arcS5D", "limS5D", "areS5D",
	"alfa2", "beta2", "alfa3", "beta3",
	"S0EC", "S1ECp", "S1ECs", "S2EC", "S3EC", "S4EC",
	"S0NO", "S1NOp", "S1NOs", "S2NO", "S3NO", "S4NO",
	"S0NH4", "S1NH4p", "S1NH4s", "S2NH4", "S3NH4", "S4NH4",
	"S0NO3", "S1NO3p", "S1NO3s", "S2NO3", "S3NO3", "S4NO3",
	"S0PO", "S1POp", "S1POs", "S2PO", "S3PO", "S4PO",
	"S0PI", "S1PIp", "S1PIs", "S2PI", "S3PI", "S4PI",
	"S0PO_fb", "S1POp_fb", "S1POs_fb", "S2PO_fb", "S3PO_fb",
	"S0PI_fb", "S1PIp_fb", "S1PIs_fb", "S2PI_fb", "S3PI_fb",
	"OD", "CDBO", "CE", "EC", "NO3", "NH4", "NO", "PO", "PI", "PT", "pH", "alk",
}

var sigaConsts = map[string]string{
	"tipo":    "0",
	"destino": "1",
	"embalse": "0",
}

func DefaultBasinSchema() BasinSchema {
	return NewBasinSchema(sigaFieldNames, sigaConsts)
}

// X/Y/Z/lat/lon为计算列，consts中的列为固定值，其余为填充列
func NewBasinSchema(names []string, consts map[string]string) BasinSchema {
	s := make(BasinSchema, len(names))
	for i, n := range names {
		s[i].Name = n
		if k, ok := computedFields[n]; ok {
			s[i].Kind = k
		} else if c, ok := consts[n]; ok {
			s[i].Kind = FieldConst
			s[i].Const = c
		}
	}
	return s
}

func (s BasinSchema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty basin schema", ErrMissingField)
	}
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Name == "" || strings.ContainsAny(f.Name, " \t\r\n") {
			return fmt.Errorf("%w: invalid basin field name %q", ErrMissingField, f.Name)
		}
		if f.Kind == FieldConst && strings.ContainsAny(f.Const, " \t\r\n") {
			return fmt.Errorf("%w: invalid constant %q for %s", ErrMissingField, f.Const, f.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: duplicated basin field %s", ErrMissingField, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func (s BasinSchema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

func (s BasinSchema) needsGeographic() bool {
	for _, f := range s {
		if f.Kind == FieldLat || f.Kind == FieldLon {
			return true
		}
	}
	return false
}
