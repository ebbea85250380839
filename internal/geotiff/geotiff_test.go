package geotiff

import (
	"bytes"
	"encoding/binary"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/meshraster/internal/geo"
	"github.com/woozymasta/meshraster/internal/render"

	"golang.org/x/image/tiff"
)

var testTransform = geo.Transform{OriginX: 136.875, OriginY: 35.2, PixelWidth: 0.001, PixelHeight: 0.001}

// tagValues reads the first IFD of a little-endian TIFF into raw value bytes.
func tagValues(t *testing.T, b []byte) map[uint16][]byte {
	t.Helper()
	le := binary.LittleEndian

	if string(b[:2]) != "II" || le.Uint16(b[2:]) != 42 {
		t.Fatalf("bad header % x", b[:4])
	}

	sizes := map[uint16]uint32{typeShort: 2, typeLong: 4, typeDouble: 8}
	off := le.Uint32(b[4:])
	n := int(le.Uint16(b[off:]))
	tags := make(map[uint16][]byte, n)

	for i := 0; i < n; i++ {
		e := b[off+2+uint32(i)*12:]
		tag, typ, count := le.Uint16(e), le.Uint16(e[2:]), le.Uint32(e[4:])
		size := sizes[typ] * count
		if size <= 4 {
			tags[tag] = e[8 : 8+size]
			continue
		}
		at := le.Uint32(e[8:])
		tags[tag] = b[at : at+size]
	}

	return tags
}

func doubles(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}

func shorts(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out
}

func TestEncodeGray8RoundTrip(t *testing.T) {
	img := &render.Image{Kind: render.Gray8, Width: 3, Height: 2, Pix: []uint8{0, 10, 20, 30, 40, 255}}

	var buf bytes.Buffer
	if err := Encode(&buf, img, testTransform); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := tiff.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("tiff.Decode failed: %v", err)
	}

	gray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("decoded type: got %T, want *image.Gray", decoded)
	}
	if gray.Bounds().Dx() != 3 || gray.Bounds().Dy() != 2 {
		t.Fatalf("bounds: got %v", gray.Bounds())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got, want := gray.GrayAt(x, y).Y, img.Pix[y*3+x]; got != want {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestEncodeRGB8RoundTrip(t *testing.T) {
	img := &render.Image{Kind: render.RGB8, Width: 2, Height: 1, Pix: []uint8{1, 2, 3, 250, 251, 252}}

	var buf bytes.Buffer
	if err := Encode(&buf, img, testTransform); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := tiff.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("tiff.Decode failed: %v", err)
	}

	r, g, b, _ := decoded.At(1, 0).RGBA()
	if r>>8 != 250 || g>>8 != 251 || b>>8 != 252 {
		t.Errorf("pixel (1,0): got %d,%d,%d", r>>8, g>>8, b>>8)
	}

	tags := tagValues(t, buf.Bytes())
	if got := shorts(tags[tagBitsPerSample]); len(got) != 3 || got[0] != 8 {
		t.Errorf("BitsPerSample: got %v", got)
	}
}

func TestEncodeFloat32(t *testing.T) {
	img := &render.Image{Kind: render.Float32, Width: 2, Height: 2, Float: []float32{0, 1.5, -2, 0.25}}

	var buf bytes.Buffer
	if err := Encode(&buf, img, testTransform); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	b := buf.Bytes()

	for i, want := range img.Float {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[headerSize+i*4:]))
		if got != want {
			t.Errorf("value %d: got %v, want %v", i, got, want)
		}
	}

	tags := tagValues(t, b)
	if got := shorts(tags[tagSampleFormat]); len(got) != 1 || got[0] != 3 {
		t.Errorf("SampleFormat: got %v, want [3]", got)
	}
	if got := shorts(tags[tagBitsPerSample]); got[0] != 32 {
		t.Errorf("BitsPerSample: got %v, want [32]", got)
	}
}

func TestEncodeGeoTags(t *testing.T) {
	img := &render.Image{Kind: render.Gray8, Width: 1, Height: 1, Pix: []uint8{7}}

	var buf bytes.Buffer
	if err := Encode(&buf, img, testTransform); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	tags := tagValues(t, buf.Bytes())

	scale := doubles(tags[tagModelPixelScale])
	if scale[0] != 0.001 || scale[1] != 0.001 || scale[2] != 0 {
		t.Errorf("ModelPixelScale: got %v", scale)
	}

	tie := doubles(tags[tagModelTiepoint])
	if tie[3] != testTransform.OriginX || tie[4] != testTransform.OriginY {
		t.Errorf("ModelTiepoint: got %v", tie)
	}

	keys := shorts(tags[tagGeoKeyDirectory])
	found := false
	for i := 4; i+3 < len(keys); i += 4 {
		if keys[i] == keyGeographicType && keys[i+3] == geo.EPSG {
			found = true
		}
	}
	if !found {
		t.Errorf("GeoKeyDirectory lacks EPSG %d: %v", geo.EPSG, keys)
	}
}

func TestEncodeRejectsMismatchedBuffers(t *testing.T) {
	tests := []struct {
		name string
		img  *render.Image
	}{
		{"gray short", &render.Image{Kind: render.Gray8, Width: 2, Height: 2, Pix: []uint8{1}}},
		{"rgb short", &render.Image{Kind: render.RGB8, Width: 1, Height: 1, Pix: []uint8{1}}},
		{"float short", &render.Image{Kind: render.Float32, Width: 2, Height: 1}},
		{"empty", &render.Image{Kind: render.Gray8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Encode(&bytes.Buffer{}, tt.img, testTransform); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriterWithWorldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "5236-67.tiff")
	img := &render.Image{Kind: render.Gray8, Width: 1, Height: 1, Pix: []uint8{9}}

	if err := (Writer{WorldFile: true}).Write(path, img, testTransform); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("raster missing: %v", err)
	}

	tfw, err := os.ReadFile(filepath.Join(filepath.Dir(path), "5236-67.tfw"))
	if err != nil {
		t.Fatalf("world file missing: %v", err)
	}
	lines := strings.Fields(string(tfw))
	if len(lines) != 6 {
		t.Fatalf("world file lines: got %d, want 6", len(lines))
	}
	if lines[3] != "-0.001000000000" {
		t.Errorf("world file y scale: got %s", lines[3])
	}
}
