// Package config handles configuration loading and shared settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/meshraster/internal/geo"
	"github.com/woozymasta/meshraster/internal/render"

	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultGridSize    = 1000
	DefaultCellSize    = 10
	DefaultOutput      = "./output_tiffs"
	DefaultPreviewSize = 256
)

// IndexFile is the footprint index written to, and served from, the output directory.
const IndexFile = "index.geojson"

// Config represents the root configuration file structure.
type Config struct {
	Source          string   `yaml:"source,omitempty"`
	Mode            string   `yaml:"mode,omitempty"`
	Ramp            string   `yaml:"ramp,omitempty"`
	Output          string   `yaml:"output,omitempty"`
	Codes           []string `yaml:"codes"`
	GridSize        int      `yaml:"grid_size,omitempty"`
	CellSize        float64  `yaml:"cell_size,omitempty"` // meters
	DegreesPerMeter float64  `yaml:"degrees_per_meter,omitempty"`
	ScaleFactor     float64  `yaml:"scale_factor,omitempty"`
	Concurrency     int      `yaml:"concurrency,omitempty"`
	PreviewSize     int      `yaml:"preview_size,omitempty"`
	Seed            uint64   `yaml:"seed,omitempty"` // random source only
	Random          bool     `yaml:"random,omitempty"`
	WorldFile       bool     `yaml:"world_file,omitempty"`
	Preview         bool     `yaml:"preview,omitempty"`
	Index           bool     `yaml:"index,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Merge fills every unset field of c from other.
func (c *Config) Merge(other Config) {
	c.Codes = append(c.Codes, other.Codes...)

	if c.Source == "" {
		c.Source = other.Source
	}
	if c.Mode == "" {
		c.Mode = other.Mode
	}
	if c.Ramp == "" {
		c.Ramp = other.Ramp
	}
	if c.Output == "" {
		c.Output = other.Output
	}
	if c.GridSize <= 0 {
		c.GridSize = other.GridSize
	}
	if c.CellSize <= 0 {
		c.CellSize = other.CellSize
	}
	if c.DegreesPerMeter <= 0 {
		c.DegreesPerMeter = other.DegreesPerMeter
	}
	if c.ScaleFactor <= 0 {
		c.ScaleFactor = other.ScaleFactor
	}
	if c.Concurrency <= 0 {
		c.Concurrency = other.Concurrency
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = other.PreviewSize
	}
	if c.Seed == 0 {
		c.Seed = other.Seed
	}

	c.Random = c.Random || other.Random
	c.WorldFile = c.WorldFile || other.WorldFile
	c.Preview = c.Preview || other.Preview
	c.Index = c.Index || other.Index
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:            string(render.ModeRaw),
		Ramp:            render.RampJet,
		Output:          DefaultOutput,
		GridSize:        DefaultGridSize,
		CellSize:        DefaultCellSize,
		DegreesPerMeter: geo.DefaultDegreesPerMeter,
		ScaleFactor:     render.DefaultScaleFactor,
		PreviewSize:     DefaultPreviewSize,
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.GridSize <= 0 {
		errs = append(errs, fmt.Errorf("grid_size must be > 0, got %d", c.GridSize))
	}
	if c.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size must be > 0, got %v", c.CellSize))
	}
	if c.DegreesPerMeter <= 0 {
		errs = append(errs, fmt.Errorf("degrees_per_meter must be > 0, got %v", c.DegreesPerMeter))
	}
	if c.ScaleFactor <= 0 {
		errs = append(errs, fmt.Errorf("scale_factor must be > 0, got %v", c.ScaleFactor))
	}
	if _, err := render.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := render.RampByName(c.Ramp); err != nil {
		errs = append(errs, err)
	}
	if !c.Random && c.Source == "" {
		errs = append(errs, errors.New("no sample source: set source or random"))
	}

	return errors.Join(errs...)
}
