package gridbasin

import "errors"

var (
	ErrSourceNotFound   = errors.New("source not found")
	ErrInvalidBandIndex = errors.New("invalid band index")
	ErrInvalidGrid      = errors.New("invalid grid")
	ErrMissingField     = errors.New("missing field")
	ErrGdalDriverCreate = errors.New("gdal driver create err")
	ErrRasterRead       = errors.New("raster read failed")
	ErrRasterWrite      = errors.New("raster write failed")
	ErrReprojection     = errors.New("reprojection failed")
	ErrUnsupportedSrs   = errors.New("unsupported spatial reference")
	ErrWrongGeoType     = errors.New("gdal wrong geo type")
	ErrUnknownEncoding  = errors.New("unknown text encoding")
)
