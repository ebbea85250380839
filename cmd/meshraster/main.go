package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/woozymasta/meshraster/internal/config"
	"github.com/woozymasta/meshraster/internal/geotiff"
	"github.com/woozymasta/meshraster/internal/logger"
	"github.com/woozymasta/meshraster/internal/processor"
	"github.com/woozymasta/meshraster/internal/source"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Args struct {
		Codes []string `positional-arg-name:"CODE" description:"Mesh codes to rasterize, e.g. 5236-67"`
	} `positional-args:"yes"`

	ConfigFile      string   `short:"c" long:"config"            env:"CONFIG_FILE"  description:"Path to optional configuration file"`
	Codes           []string `short:"m" long:"code"              description:"Mesh code to rasterize (repeatable)"`
	Source          string   `short:"s" long:"source"            env:"SOURCE_FILE"  description:"CSV file with samples, line = row, field = column"`
	Output          string   `short:"o" long:"output"            env:"OUTPUT_DIR"   description:"Output directory" default:"./output_tiffs"`
	Mode            string   `short:"M" long:"mode"              description:"Output mode" choice:"raw" choice:"linear" choice:"color" default:"raw"`
	Ramp            string   `short:"r" long:"ramp"              description:"Color ramp for color mode" choice:"jet" choice:"hcl" default:"jet"`
	GridSize        int      `short:"g" long:"grid-size"         description:"Raster size in cells" default:"1000"`
	CellSize        float64  `short:"C" long:"cell-size"         description:"Cell edge in meters" default:"10"`
	DegreesPerMeter float64  `short:"d" long:"degrees-per-meter" description:"Projection scale, defaults to 1/111000"`
	ScaleFactor     float64  `short:"k" long:"scale-factor"      description:"Contrast multiplier for color mode" default:"8"`
	Concurrency     int      `short:"p" long:"concurrency"       env:"CONCURRENCY"  description:"Parallel mesh codes, 0 = number of CPUs"`
	Seed            uint64   `long:"seed"                        description:"Seed for the random source, 0 = non-deterministic"`
	PreviewSize     int      `long:"preview-size"                description:"Preview width in pixels" default:"256"`
	Random          bool     `short:"R" long:"random"            description:"Use synthetic random samples instead of a file"`
	WorldFile       bool     `short:"w" long:"world-file"        description:"Write a .tfw world file next to each raster"`
	Preview         bool     `short:"P" long:"preview"           description:"Write a WebP preview next to each raster"`
	Index           bool     `short:"i" long:"index"             description:"Write an index.geojson with the extent of every raster"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := &config.Config{}
	if opts.ConfigFile != "" {
		var err error
		cfg, err = config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}

	cfg.Merge(config.Config{
		Codes:           append(opts.Codes, opts.Args.Codes...),
		Source:          opts.Source,
		Output:          opts.Output,
		Mode:            opts.Mode,
		Ramp:            opts.Ramp,
		GridSize:        opts.GridSize,
		CellSize:        opts.CellSize,
		DegreesPerMeter: opts.DegreesPerMeter,
		ScaleFactor:     opts.ScaleFactor,
		Concurrency:     opts.Concurrency,
		PreviewSize:     opts.PreviewSize,
		Seed:            opts.Seed,
		Random:          opts.Random,
		WorldFile:       opts.WorldFile,
		Preview:         opts.Preview,
		Index:           opts.Index,
	})
	cfg.Merge(config.Default())

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if len(cfg.Codes) == 0 {
		log.Fatal().Msg("No mesh codes given")
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Output).Msg("Failed to create output directory")
	}

	var src source.Source
	if cfg.Random {
		src = source.NewRandom(cfg.GridSize, cfg.Seed)
	} else {
		csvSrc, err := source.OpenCSV(cfg.Source)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Source).Msg("Failed to load samples")
		}
		src = csvSrc
	}

	pipeline, err := processor.New(*cfg, src, geotiff.Writer{WorldFile: cfg.WorldFile})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results := pipeline.Run(ctx, cfg.Codes)

	var indexPath string
	if cfg.Index {
		if indexPath, err = pipeline.WriteIndex(results); err != nil {
			log.Error().Err(err).Msg("Failed to write index")
		}
	}

	failed := processor.Failed(results)
	for _, r := range results {
		if !r.OK() {
			log.Warn().Err(r.Err).Str("code", r.Code).Msg("Mesh code not rasterized")
		}
	}

	log.Info().
		Int("codes", len(results)).
		Int("failed", failed).
		Str("index", indexPath).
		Dur("duration", time.Since(start)).
		Msg("Processing finished")

	if failed > 0 {
		stop()
		os.Exit(1)
	}
}
