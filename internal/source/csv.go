package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/meshraster/internal/grid"

	"github.com/rs/zerolog/log"
)

// CSV serves the same samples, read once from a delimited text file, to every
// mesh code. Line index is the row, field index is the column.
type CSV struct {
	path    string
	samples []grid.Sample
	skipped int
}

// OpenCSV reads the whole file up front.
func OpenCSV(path string) (*CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	samples, skipped, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("samples", len(samples)).
		Int("skipped", skipped).
		Msg("Samples loaded")

	return &CSV{path: path, samples: samples, skipped: skipped}, nil
}

// ReadCSV parses every field as a float. Fields that fail to parse are logged
// and skipped; the number of skipped fields is returned.
func ReadCSV(r io.Reader) ([]grid.Sample, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var (
		samples []grid.Sample
		skipped int
	)

	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}

		for col, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				skipped++
				log.Warn().
					Err(fmt.Errorf("%w: %w", ErrSampleParse, err)).
					Int("row", row).
					Int("col", col).
					Str("value", field).
					Msg("Invalid sample value, skipping")
				continue
			}

			samples = append(samples, grid.Sample{Row: row, Col: col, Value: value})
		}
	}

	return samples, skipped, nil
}

// Samples returns a copy of the loaded samples.
func (s *CSV) Samples(ctx context.Context, _ string) ([]grid.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]grid.Sample, len(s.samples))
	copy(out, s.samples)
	return out, nil
}

// Name implements Source.
func (s *CSV) Name() string { return "csv" }

// Skipped returns how many fields failed to parse.
func (s *CSV) Skipped() int { return s.skipped }
