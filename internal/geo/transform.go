package geo

import (
	"fmt"
)

// EPSG code of the fixed reference datum every raster is tagged with.
const EPSG = 4326

// DefaultDegreesPerMeter approximates one meter of latitude in degrees.
const DefaultDegreesPerMeter = 1.0 / 111000

// Point is a geographic position in degrees.
// For a decoded mesh code it is the southwest corner of the cell.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("%.8f,%.8f", p.Lat, p.Lon)
}

// Box is an axis aligned extent in degrees.
type Box struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Transform is a north-up affine georeference. Rotation terms are always zero.
//
//	lon = OriginX + col*PixelWidth
//	lat = OriginY - row*PixelHeight
type Transform struct {
	OriginX     float64 `json:"origin_x"`
	OriginY     float64 `json:"origin_y"`
	PixelWidth  float64 `json:"pixel_width"`
	PixelHeight float64 `json:"pixel_height"`
}

// BuildTransform places a gridSize x gridSize raster so that origin is its
// bottom-left corner. Pixels are square, cellSizeMeters*degreesPerMeter wide.
func BuildTransform(origin Point, gridSize int, cellSizeMeters, degreesPerMeter float64) Transform {
	pixel := cellSizeMeters * degreesPerMeter

	return Transform{
		OriginX:     origin.Lon,
		OriginY:     origin.Lat + float64(gridSize)*cellSizeMeters*degreesPerMeter,
		PixelWidth:  pixel,
		PixelHeight: pixel,
	}
}

// Apply maps a pixel corner (col, row) to geographic coordinates.
func (t Transform) Apply(col, row float64) (lon, lat float64) {
	return t.OriginX + col*t.PixelWidth, t.OriginY - row*t.PixelHeight
}

// GDAL returns the transform in GDAL GeoTransform order.
func (t Transform) GDAL() [6]float64 {
	return [6]float64{t.OriginX, t.PixelWidth, 0, t.OriginY, 0, -t.PixelHeight}
}

// Bounds returns the extent covered by a width x height raster.
func (t Transform) Bounds(width, height int) Box {
	minLon, maxLat := t.Apply(0, 0)
	maxLon, minLat := t.Apply(float64(width), float64(height))

	return Box{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}
