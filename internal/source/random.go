package source

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"github.com/woozymasta/meshraster/internal/grid"
)

// Random generates a fresh uniform [0,1) sample for every cell of a size x size
// grid on each call. A non-zero seed makes the output reproducible per code.
type Random struct {
	size int
	seed uint64
}

// NewRandom returns a synthetic source.
func NewRandom(size int, seed uint64) *Random {
	return &Random{size: size, seed: seed}
}

// Samples implements Source.
func (s *Random) Samples(ctx context.Context, code string) ([]grid.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if s.seed != 0 {
		h := fnv.New64a()
		_, _ = h.Write([]byte(code))
		rng = rand.New(rand.NewPCG(s.seed, h.Sum64()))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	samples := make([]grid.Sample, 0, s.size*s.size)
	for row := 0; row < s.size; row++ {
		for col := 0; col < s.size; col++ {
			samples = append(samples, grid.Sample{Row: row, Col: col, Value: rng.Float64()})
		}
	}

	return samples, nil
}

// Name implements Source.
func (s *Random) Name() string { return "random" }
