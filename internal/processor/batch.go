package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrDuplicateOutput marks a code whose output file an earlier code in the
// same batch already writes.
var ErrDuplicateOutput = errors.New("duplicate output")

type job struct {
	Code  string
	Index int
}

type result struct {
	Result
	Index int
}

// Run processes every code on a bounded worker pool and returns one Result per
// code in input order. A failing code never stops its siblings. Once ctx is
// done, codes not yet started are reported as skipped. Codes mapping to an
// output file already claimed in the batch fail with ErrDuplicateOutput.
func (p *Pipeline) Run(ctx context.Context, codes []string) []Result {
	out := make([]Result, len(codes))
	queue := make([]job, 0, len(codes))
	claimed := make(map[string]string, len(codes))

	for i, code := range codes {
		name := OutputName(code, p.source.Name(), p.opts.Mode)
		if first, ok := claimed[name]; ok {
			log.Warn().Str("code", code).Str("first", first).Str("file", name).Msg("Duplicate mesh code, skipping")
			out[i] = Result{Code: code, Err: fmt.Errorf("%s: %w of %s", name, ErrDuplicateOutput, first)}
			continue
		}
		claimed[name] = code
		queue = append(queue, job{Code: code, Index: i})
	}

	jobs := make(chan job, len(queue))
	results := make(chan result, len(queue))

	for _, j := range queue {
		jobs <- j
	}
	close(jobs)

	workers := min(p.cfg.Concurrency, len(queue))

	log.Info().
		Int("codes", len(codes)).
		Int("workers", workers).
		Str("mode", string(p.opts.Mode)).
		Str("source", p.source.Name()).
		Msg("Starting mesh processing")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					log.Warn().Str("code", j.Code).Msg("Cancelled before start, skipping")
					results <- result{Result: Result{Code: j.Code, Err: fmt.Errorf("skipped: %w", err)}, Index: j.Index}
					continue
				}
				results <- result{Result: p.ProcessMesh(ctx, j.Code), Index: j.Index}
			}
		}()
	}
	wg.Wait()
	close(results)

	for res := range results {
		out[res.Index] = res.Result
	}

	return out
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
