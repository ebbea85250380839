// Package source provides the sample sources feeding the raster pipeline.
package source

import (
	"context"
	"errors"

	"github.com/woozymasta/meshraster/internal/grid"
)

// ErrSampleParse marks a field that could not be read as a number.
// Such fields are logged and skipped, never returned from a load.
var ErrSampleParse = errors.New("sample parse")

// Source supplies the samples rasterized for one mesh code.
// Implementations must be safe for concurrent use and must not let callers
// mutate shared state through the returned slice.
type Source interface {
	Samples(ctx context.Context, code string) ([]grid.Sample, error)
	Name() string
}
