// Package mesh decodes Japanese standard area mesh codes into geographic origins.
//
// A code is a digit string of 4 to 11 characters after separators are removed:
//
//	PPQQ RS TU V W X
//	|    |  |  | | +-- eighth mesh   (char 11)
//	|    |  |  | +---- quarter mesh  (char 10)
//	|    |  |  +------ half mesh     (char 9)
//	|    |  +--------- third level   (chars 7-8)
//	|    +------------ second level  (chars 5-6)
//	+----------------- first level   (chars 1-4)
//
// Every level refines the origin of the coarser one by addition.
package mesh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/woozymasta/meshraster/internal/geo"
)

// ErrInvalidMeshCode is returned for malformed, too short or non-numeric codes.
var ErrInvalidMeshCode = errors.New("invalid mesh code")

const (
	minLength = 4
	maxLength = 11

	// Third level cell extent used by the half/quarter/eighth subdivisions.
	subLon = 0.0125
	subLat = 0.00833333
)

// separators are dropped from raw input before indexing.
const separators = "-_ "

// Level identifies how deep a code reaches into the mesh hierarchy.
type Level int

// Mesh levels ordered from coarsest to finest.
const (
	LevelFirst Level = iota + 1
	LevelSecond
	LevelThird
	LevelHalf
	LevelQuarter
	LevelEighth
)

var levelNames = map[Level]string{
	LevelFirst:   "first",
	LevelSecond:  "second",
	LevelThird:   "third",
	LevelHalf:    "half",
	LevelQuarter: "quarter",
	LevelEighth:  "eighth",
}

// String implements fmt.Stringer.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Normalize strips separators and checks the remaining characters are 4 to 11 digits.
func Normalize(raw string) (string, error) {
	code := strings.Map(func(r rune) rune {
		if strings.ContainsRune(separators, r) {
			return -1
		}
		return r
	}, raw)

	if len(code) < minLength || len(code) > maxLength {
		return "", fmt.Errorf("%w %q: length %d not in [%d,%d]", ErrInvalidMeshCode, raw, len(code), minLength, maxLength)
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", fmt.Errorf("%w %q: non-digit %q at position %d", ErrInvalidMeshCode, raw, code[i], i+1)
		}
	}

	return code, nil
}

// LevelOf returns the finest level a normalized code of length n reaches.
// Lengths 5 and 7 carry a trailing digit that no level consumes.
func LevelOf(n int) Level {
	switch {
	case n >= 11:
		return LevelEighth
	case n >= 10:
		return LevelQuarter
	case n >= 9:
		return LevelHalf
	case n >= 8:
		return LevelThird
	case n >= 6:
		return LevelSecond
	default:
		return LevelFirst
	}
}

// Decode converts a mesh code into the southwest corner of its cell.
func Decode(raw string) (geo.Point, error) {
	code, err := Normalize(raw)
	if err != nil {
		return geo.Point{}, err
	}

	return decode(code), nil
}

// decode expects a normalized code. Term order is fixed so that shorter
// prefixes of a code produce bit-identical coarse terms.
func decode(code string) geo.Point {
	digit := func(i int) float64 { return float64(code[i] - '0') }
	pair := func(i int) float64 { return digit(i)*10 + digit(i+1) }

	lat := pair(0) * 2 / 3
	lon := pair(2) + 100

	if len(code) >= 6 {
		lat += digit(4) * 2 / 3 / 8
		lon += digit(5) / 8
	}

	if len(code) >= 8 {
		lat += digit(6) * 2 / 3 / 8 / 10
		lon += digit(7) / 8 / 10
	}

	// Half, quarter and eighth digits: even => east half, greater than 2 => north half.
	div := 2.0
	for i := 8; i < len(code) && i < maxLength; i++ {
		d := int(code[i] - '0')
		if d%2 == 0 {
			lon += subLon / div
		}
		if d > 2 {
			lat += subLat / div
		}
		div *= 2
	}

	return geo.Point{Lat: lat, Lon: lon}
}

// Cell describes a decoded mesh cell.
type Cell struct {
	Code   string    `json:"code" yaml:"code"`
	Origin geo.Point `json:"origin" yaml:"origin"`
	Level  Level     `json:"-" yaml:"-"`
	Height float64   `json:"height" yaml:"height"` // degrees of latitude
	Width  float64   `json:"width" yaml:"width"`   // degrees of longitude
}

// Footprint returns the cell extent.
func (c Cell) Footprint() geo.Box {
	return geo.Box{
		MinLat: c.Origin.Lat,
		MinLon: c.Origin.Lon,
		MaxLat: c.Origin.Lat + c.Height,
		MaxLon: c.Origin.Lon + c.Width,
	}
}

// Feature returns the cell footprint as a GeoJSON polygon.
func (c Cell) Feature() geo.GeoJSONFeature {
	return geo.BoxFeature(c.Footprint(), map[string]interface{}{
		"code":  c.Code,
		"level": c.Level.String(),
		"lat":   c.Origin.Lat,
		"lon":   c.Origin.Lon,
	})
}

// Parse decodes raw and attaches the extent of the level it reaches.
func Parse(raw string) (Cell, error) {
	code, err := Normalize(raw)
	if err != nil {
		return Cell{}, err
	}

	level := LevelOf(len(code))
	height, width := extent(level)

	return Cell{
		Code:   code,
		Origin: decode(code),
		Level:  level,
		Height: height,
		Width:  width,
	}, nil
}

// extent returns the cell size in degrees (lat, lon) at a level.
func extent(l Level) (float64, float64) {
	switch l {
	case LevelFirst:
		return 2.0 / 3, 1
	case LevelSecond:
		return 2.0 / 3 / 8, 1.0 / 8
	case LevelThird:
		return 2.0 / 3 / 8 / 10, 1.0 / 8 / 10
	case LevelHalf:
		return subLat / 2, subLon / 2
	case LevelQuarter:
		return subLat / 4, subLon / 4
	default:
		return subLat / 8, subLon / 8
	}
}
