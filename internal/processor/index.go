package processor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/woozymasta/meshraster/internal/config"
	"github.com/woozymasta/meshraster/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
)

// Index builds a feature collection with the raster extent of every
// successful result.
func (p *Pipeline) Index(results []Result) geo.GeoJSONFeatureCollection {
	fc := geo.NewFeatureCollection()

	for _, r := range results {
		if !r.OK() {
			continue
		}

		props := map[string]interface{}{
			"code":     r.Code,
			"mesh":     r.Cell.Code,
			"level":    r.Cell.Level.String(),
			"lat":      r.Cell.Origin.Lat,
			"lon":      r.Cell.Origin.Lon,
			"file":     filepath.Base(r.Path),
			"mode":     string(p.opts.Mode),
			"source":   p.source.Name(),
			"geotrans": r.Transform.GDAL(),
		}
		if r.Preview != "" {
			props["preview"] = filepath.Base(r.Preview)
		}

		fc.Features = append(fc.Features, geo.BoxFeature(r.Transform.Bounds(p.cfg.GridSize, p.cfg.GridSize), props))
	}

	return fc
}

// WriteIndex saves Index(results) as minified GeoJSON in the output directory.
func (p *Pipeline) WriteIndex(results []Result) (string, error) {
	path := filepath.Join(p.cfg.Output, config.IndexFile)
	if err := saveGeoJSON(p.cfg.Output, path, p.Index(results)); err != nil {
		return "", err
	}

	return path, nil
}

// saveGeoJSON marshals the feature collection, minifies it and writes it to disk.
func saveGeoJSON(dir, path string, fc geo.GeoJSONFeatureCollection) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}

	m := minify.New()
	m.AddFuncRegexp(regexp.MustCompile(`[/+]json$`), mjson.Minify)

	minified, err := m.Bytes("application/geo+json", data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to minify index, writing as is")
		minified = data
	}

	return os.WriteFile(path, minified, 0644)
}
