// Package geotiff writes encoded images as uncompressed, single strip GeoTIFF
// files georeferenced in geographic WGS84 degrees.
package geotiff

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/woozymasta/meshraster/internal/geo"
	"github.com/woozymasta/meshraster/internal/render"
)

// TIFF field types.
const (
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

// Baseline and GeoTIFF tags.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagSampleFormat    = 339
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGeoKeyDirectory = 34735
)

// GeoKeys.
const (
	keyModelType       = 1024
	keyRasterType      = 1025
	keyGeographicType  = 2048
	keyGeogAngularUnit = 2054

	modelTypeGeographic = 2
	rasterPixelIsArea   = 1
	angularUnitDegree   = 9102
)

const headerSize = 8

type entry struct {
	tag    uint16
	typ    uint16
	shorts []uint16
	longs  []uint32
	floats []float64
}

func (e entry) count() uint32 {
	switch e.typ {
	case typeShort:
		return uint32(len(e.shorts))
	case typeLong:
		return uint32(len(e.longs))
	default:
		return uint32(len(e.floats))
	}
}

func (e entry) payload() []byte {
	var buf bytes.Buffer
	switch e.typ {
	case typeShort:
		_ = binary.Write(&buf, binary.LittleEndian, e.shorts)
	case typeLong:
		_ = binary.Write(&buf, binary.LittleEndian, e.longs)
	default:
		_ = binary.Write(&buf, binary.LittleEndian, e.floats)
	}
	return buf.Bytes()
}

// Writer persists images to disk. WorldFile adds an ESRI world file next to
// every raster.
type Writer struct {
	WorldFile bool
}

// Write encodes img with the georeference tf into path.
func (w Writer) Write(path string, img *render.Image, tf geo.Transform) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := Encode(bw, img, tf); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if w.WorldFile {
		return WriteWorldFile(WorldFilePath(path), tf)
	}

	return nil
}

// Encode writes a little-endian GeoTIFF: header, pixel strip, IFD, then
// out-of-line tag values.
func Encode(out io.Writer, img *render.Image, tf geo.Transform) error {
	pix, bits, format, photometric, err := layout(img)
	if err != nil {
		return err
	}

	channels := img.Channels()
	stripOffset := uint32(headerSize)
	stripSize := uint32(len(pix))

	entries := []entry{
		{tag: tagImageWidth, typ: typeLong, longs: []uint32{uint32(img.Width)}},
		{tag: tagImageLength, typ: typeLong, longs: []uint32{uint32(img.Height)}},
		{tag: tagBitsPerSample, typ: typeShort, shorts: repeat(bits, channels)},
		{tag: tagCompression, typ: typeShort, shorts: []uint16{1}},
		{tag: tagPhotometric, typ: typeShort, shorts: []uint16{photometric}},
		{tag: tagStripOffsets, typ: typeLong, longs: []uint32{stripOffset}},
		{tag: tagSamplesPerPixel, typ: typeShort, shorts: []uint16{uint16(channels)}},
		{tag: tagRowsPerStrip, typ: typeLong, longs: []uint32{uint32(img.Height)}},
		{tag: tagStripByteCounts, typ: typeLong, longs: []uint32{stripSize}},
		{tag: tagPlanarConfig, typ: typeShort, shorts: []uint16{1}},
		{tag: tagSampleFormat, typ: typeShort, shorts: repeat(format, channels)},
		{tag: tagModelPixelScale, typ: typeDouble, floats: []float64{tf.PixelWidth, tf.PixelHeight, 0}},
		{tag: tagModelTiepoint, typ: typeDouble, floats: []float64{0, 0, 0, tf.OriginX, tf.OriginY, 0}},
		{tag: tagGeoKeyDirectory, typ: typeShort, shorts: []uint16{
			1, 1, 0, 4,
			keyModelType, 0, 1, modelTypeGeographic,
			keyRasterType, 0, 1, rasterPixelIsArea,
			keyGeographicType, 0, 1, geo.EPSG,
			keyGeogAngularUnit, 0, 1, angularUnitDegree,
		}},
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	ifdOffset := stripOffset + stripSize
	pad := ifdOffset % 2
	ifdOffset += pad

	ifdSize := uint32(2 + 12*len(entries) + 4)
	extraOffset := ifdOffset + ifdSize

	var ifd, extra bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&ifd, le, uint16(len(entries)))

	for _, e := range entries {
		data := e.payload()
		_ = binary.Write(&ifd, le, e.tag)
		_ = binary.Write(&ifd, le, e.typ)
		_ = binary.Write(&ifd, le, e.count())

		if len(data) <= 4 {
			var field [4]byte
			copy(field[:], data)
			ifd.Write(field[:])
			continue
		}

		_ = binary.Write(&ifd, le, extraOffset+uint32(extra.Len()))
		extra.Write(data)
		if extra.Len()%2 == 1 {
			extra.WriteByte(0)
		}
	}
	_ = binary.Write(&ifd, le, uint32(0))

	header := []byte{'I', 'I', 42, 0, 0, 0, 0, 0}
	le.PutUint32(header[4:], ifdOffset)

	for _, chunk := range [][]byte{header, pix, make([]byte, pad), ifd.Bytes(), extra.Bytes()} {
		if _, err := out.Write(chunk); err != nil {
			return err
		}
	}

	return nil
}

// layout returns the strip bytes and the BitsPerSample, SampleFormat and
// PhotometricInterpretation values for img.
func layout(img *render.Image) ([]byte, uint16, uint16, uint16, error) {
	n := img.Width * img.Height
	if img.Width <= 0 || img.Height <= 0 {
		return nil, 0, 0, 0, fmt.Errorf("empty image %dx%d", img.Width, img.Height)
	}

	switch img.Kind {
	case render.Gray8:
		if len(img.Pix) != n {
			return nil, 0, 0, 0, fmt.Errorf("gray8: %d bytes for %d pixels", len(img.Pix), n)
		}
		return img.Pix, 8, 1, 1, nil

	case render.RGB8:
		if len(img.Pix) != n*3 {
			return nil, 0, 0, 0, fmt.Errorf("rgb8: %d bytes for %d pixels", len(img.Pix), n)
		}
		return img.Pix, 8, 1, 2, nil

	case render.Float32:
		if len(img.Float) != n {
			return nil, 0, 0, 0, fmt.Errorf("float32: %d values for %d pixels", len(img.Float), n)
		}
		pix := make([]byte, n*4)
		for i, v := range img.Float {
			binary.LittleEndian.PutUint32(pix[i*4:], math.Float32bits(v))
		}
		return pix, 32, 3, 1, nil

	default:
		return nil, 0, 0, 0, fmt.Errorf("unsupported pixel kind %v", img.Kind)
	}
}

func repeat(v uint16, n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// WorldFilePath returns the ".tfw" sidecar path for a raster path.
func WorldFilePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".tfw"
}

// WriteWorldFile writes the six line ESRI world file for tf. World files
// reference pixel centers.
func WriteWorldFile(path string, tf geo.Transform) error {
	content := fmt.Sprintf("%.12f\n%.12f\n%.12f\n%.12f\n%.12f\n%.12f\n",
		tf.PixelWidth,
		0.0,
		0.0,
		-tf.PixelHeight,
		tf.OriginX+tf.PixelWidth/2,
		tf.OriginY-tf.PixelHeight/2,
	)

	return os.WriteFile(path, []byte(content), 0644)
}
