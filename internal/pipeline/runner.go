package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gigcity/harvester/internal/venue"
)

// Runner executes many venue pipelines concurrently. Pipelines share no
// mutable state, so the only coordination needed is the parallelism cap.
type Runner struct {
	pipeline    *Pipeline
	parallelism int
	logger      zerolog.Logger
}

func NewRunner(p *Pipeline, parallelism int, logger zerolog.Logger) *Runner {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &Runner{pipeline: p, parallelism: parallelism, logger: logger}
}

// RunAll runs every enabled venue, at most parallelism at a time.
// Per-venue failures land in the corresponding Result and never abort the
// batch; results preserve the input venue order.
func (r *Runner) RunAll(ctx context.Context, venues []venue.Config) []Result {
	var enabled []venue.Config
	for _, v := range venues {
		if v.Enabled {
			enabled = append(enabled, v)
		}
	}

	results := make([]Result, len(enabled))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, cfg := range enabled {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Venue: cfg.Name, Err: err}
				return nil
			}
			res, _ := r.pipeline.Run(ctx, cfg)
			results[i] = res
			return nil
		})
	}

	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	return results
}
