package gridbasin

const (
	SHP_DRIVER_NAME     = "ESRI Shapefile"
	GEOJSON_DRIVER_NAME = "GeoJSON"
	TIF_DRIVER_NAME     = "GTiff"

	UNIVERSAL_SRS = "EPSG:4326"

	DefaultBand      = 1
	DefaultFillValue = -9999.0

	// 基流域文件（SIGA）的固定段落
	BasinCellCountTitle = "[NÚMERO DE CELDAS]"
	BasinCellAreaTitle  = "[ÁREA DE LAS CELDAS]"
	BasinTopologyTitle  = "[TIPO DE TOPOLOGÍA]"
	BasinMatrixTitle    = "[MATRIZ DE VARIABLES]"
	BasinTopologyType   = "SIGA_CAL_V1.0"

	ErrColumnMissingTemplate = "point layer is missing field [%s]"
	ErrBandIndexTemplate     = "band %d out of range [1, %d]"
)

var (
	DefaultCreationOptions = []string{"COMPRESS=LZW"}
)
