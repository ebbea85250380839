package geo

import (
	"math"
	"testing"
)

func TestBuildTransform(t *testing.T) {
	origin := Point{Lat: 35.166666666666664, Lon: 136.875}
	tf := BuildTransform(origin, 3, 10, 1.0/111000)

	wantPixel := 10.0 / 111000
	if math.Abs(tf.PixelWidth-wantPixel) > 1e-15 || tf.PixelWidth != tf.PixelHeight {
		t.Errorf("pixel size: got %v x %v, want %v square", tf.PixelWidth, tf.PixelHeight, wantPixel)
	}
	if tf.OriginX != origin.Lon {
		t.Errorf("OriginX: got %v, want %v", tf.OriginX, origin.Lon)
	}
	if math.Abs(tf.OriginY-(origin.Lat+3*wantPixel)) > 1e-12 {
		t.Errorf("OriginY: got %v, want %v", tf.OriginY, origin.Lat+3*wantPixel)
	}
}

func TestBuildTransformBottomMatchesOrigin(t *testing.T) {
	tests := []struct {
		name     string
		gridSize int
		cellSize float64
	}{
		{"default", 1000, 10},
		{"tiny", 1, 1},
		{"coarse", 250, 40},
		{"fractional cell", 777, 2.5},
	}

	origin := Point{Lat: 34.666666666666664, Lon: 136}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := BuildTransform(origin, tt.gridSize, tt.cellSize, DefaultDegreesPerMeter)
			bottom := tf.OriginY - float64(tt.gridSize)*tf.PixelHeight
			if math.Abs(bottom-origin.Lat) > 1e-9 {
				t.Errorf("bottom edge: got %v, want %v", bottom, origin.Lat)
			}

			_, lat := tf.Apply(0, float64(tt.gridSize))
			if math.Abs(lat-origin.Lat) > 1e-9 {
				t.Errorf("Apply(0, size) lat: got %v, want %v", lat, origin.Lat)
			}
		})
	}
}

func TestTransformGDALAndBounds(t *testing.T) {
	tf := Transform{OriginX: 136, OriginY: 36, PixelWidth: 0.5, PixelHeight: 0.25}

	got := tf.GDAL()
	want := [6]float64{136, 0.5, 0, 36, 0, -0.25}
	if got != want {
		t.Errorf("GDAL: got %v, want %v", got, want)
	}

	b := tf.Bounds(4, 8)
	if b.MinLon != 136 || b.MaxLon != 138 || b.MaxLat != 36 || b.MinLat != 34 {
		t.Errorf("Bounds: got %+v", b)
	}
}

func TestBoxFeatureRingIsClosed(t *testing.T) {
	f := BoxFeature(Box{MinLat: 1, MinLon: 2, MaxLat: 3, MaxLon: 4}, map[string]interface{}{"code": "x"})

	rings, ok := f.Geometry.Coordinates.([][][]float64)
	if !ok || len(rings) != 1 {
		t.Fatalf("unexpected coordinates %#v", f.Geometry.Coordinates)
	}
	ring := rings[0]
	if len(ring) != 5 {
		t.Fatalf("ring length: got %d, want 5", len(ring))
	}
	if ring[0][0] != ring[4][0] || ring[0][1] != ring[4][1] {
		t.Errorf("ring not closed: %v", ring)
	}
	if f.Geometry.Type != "Polygon" || f.Type != "Feature" {
		t.Errorf("types: got %q/%q", f.Type, f.Geometry.Type)
	}
}
