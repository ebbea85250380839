// Package processor runs the mesh code to GeoTIFF pipeline.
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/woozymasta/meshraster/internal/config"
	"github.com/woozymasta/meshraster/internal/geo"
	"github.com/woozymasta/meshraster/internal/grid"
	"github.com/woozymasta/meshraster/internal/mesh"
	"github.com/woozymasta/meshraster/internal/render"
	"github.com/woozymasta/meshraster/internal/source"

	"github.com/rs/zerolog/log"
)

// Sink persists an encoded image and its georeference.
type Sink interface {
	Write(path string, img *render.Image, tf geo.Transform) error
}

// Result is the outcome for one mesh code. Err is nil on success.
type Result struct {
	Err       error         `json:"-"`
	Code      string        `json:"code"`
	Path      string        `json:"path,omitempty"`
	Preview   string        `json:"preview,omitempty"`
	Cell      mesh.Cell     `json:"cell"`
	Transform geo.Transform `json:"transform"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether the code was rasterized.
func (r Result) OK() bool { return r.Err == nil }

// Pipeline holds everything shared, read-only, between mesh codes.
type Pipeline struct {
	source source.Source
	sink   Sink
	opts   render.Options
	cfg    config.Config
}

// New builds a pipeline from a validated configuration.
func New(cfg config.Config, src source.Source, sink Sink) (*Pipeline, error) {
	mode, err := render.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	ramp, err := render.RampByName(cfg.Ramp)
	if err != nil {
		return nil, err
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	return &Pipeline{
		source: src,
		sink:   sink,
		cfg:    cfg,
		opts:   render.Options{Mode: mode, Ramp: ramp, ScaleFactor: cfg.ScaleFactor},
	}, nil
}

// OutputName derives the raster file name from the code as given, the sample
// source and the mode. Separators are kept on purpose: "5236-67" and "523667"
// name different files even though they decode to the same cell.
func OutputName(code, sourceName string, mode render.Mode) string {
	switch {
	case sourceName == "random":
		return code + "(random).tiff"
	case mode == render.ModeColor:
		return code + "(color).tiff"
	default:
		return code + ".tiff"
	}
}

// ProcessMesh rasterizes a single code. Failures are returned in the Result.
func (p *Pipeline) ProcessMesh(ctx context.Context, code string) Result {
	start := time.Now()
	res := Result{Code: code}

	res.Err = p.process(ctx, code, &res)
	res.Duration = time.Since(start)

	if res.Err != nil {
		log.Error().
			Err(res.Err).
			Str("code", code).
			Dur("duration", res.Duration).
			Msg("Failed to process mesh code")
		return res
	}

	log.Info().
		Str("code", code).
		Str("path", res.Path).
		Dur("duration", res.Duration).
		Msg("Completed processing for mesh code")

	return res
}

func (p *Pipeline) process(ctx context.Context, code string, res *Result) error {
	log.Debug().Str("code", code).Msg("Processing mesh code")

	cell, err := mesh.Parse(code)
	if err != nil {
		return err
	}
	res.Cell = cell
	res.Transform = geo.BuildTransform(cell.Origin, p.cfg.GridSize, p.cfg.CellSize, p.cfg.DegreesPerMeter)

	log.Debug().
		Str("code", code).
		Float64("lat", cell.Origin.Lat).
		Float64("lon", cell.Origin.Lon).
		Stringer("level", cell.Level).
		Msg("Mesh code decoded")

	samples, err := p.source.Samples(ctx, code)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}

	g, err := grid.Assemble(samples, p.cfg.GridSize)
	if err != nil {
		return err
	}

	if ev := log.Debug(); ev.Enabled() {
		if lo, hi, err := render.DynamicRange(g.Values()); err == nil {
			ev.Str("code", code).Float64("min", lo).Float64("max", hi).Msg("Data range before normalization")
		} else {
			ev.Discard()
		}
	}

	img, err := render.Normalize(g, p.opts)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	res.Path = filepath.Join(p.cfg.Output, OutputName(code, p.source.Name(), p.opts.Mode))
	if err := p.sink.Write(res.Path, img, res.Transform); err != nil {
		return fmt.Errorf("write raster: %w", err)
	}

	if p.cfg.Preview {
		res.Preview = strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + ".webp"
		if err := writePreview(res.Preview, img.ToImage(), p.cfg.PreviewSize); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}

	return nil
}
