// Package pipeline wires the stages together: fetch a venue's listing,
// extract candidates, normalize and filter them. One Run is one venue;
// the Runner fans independent runs out concurrently.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigcity/harvester/internal/event"
	"github.com/gigcity/harvester/internal/extract"
	"github.com/gigcity/harvester/internal/fetch"
	"github.com/gigcity/harvester/internal/metrics"
	"github.com/gigcity/harvester/internal/normalize"
	"github.com/gigcity/harvester/internal/venue"
)

// Result holds the outcome of one venue pipeline run. FetchFailed keeps a
// failed fetch distinguishable from a legitimately empty calendar, so
// operational tooling can alert on persistent fetch failures.
type Result struct {
	Venue       string
	RunID       string
	Strategy    extract.StrategyKind
	Events      []event.Normalized
	Report      normalize.Report
	FetchFailed bool
	Err         error
}

// Pipeline runs the fetch → extract → normalize sequence for one venue
// config. It holds no per-venue state; a single Pipeline serves
// concurrent runs.
type Pipeline struct {
	logger zerolog.Logger

	// newFetcher is swapped out in tests to avoid real network/browser use.
	newFetcher func(fetch.Config, zerolog.Logger) fetch.Fetcher
}

func New(logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		logger:     logger,
		newFetcher: fetch.New,
	}
}

// Run executes one venue's pipeline. The returned error mirrors
// Result.Err for callers that prefer idiomatic error flow; batch callers
// should inspect Result and continue.
func (p *Pipeline) Run(ctx context.Context, cfg venue.Config) (Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With().
		Str("venue", cfg.Name).
		Str("run_id", runID).
		Logger()

	result := Result{Venue: cfg.Name, RunID: runID}

	junk, err := normalize.NewJunkFilter(cfg.JunkPatterns)
	if err != nil {
		result.Err = err
		return result, err
	}

	fetchCfg := cfg.FetchConfig()
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.
			WithLabelValues(cfg.Name, string(fetchCfg.Mode)).
			Observe(time.Since(start).Seconds())
	}()

	fetcher := p.newFetcher(fetchCfg, logger)
	fetched, err := fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		result.FetchFailed = true
		result.Err = err

		kind := "network"
		var fe *fetch.Error
		if errors.As(err, &fe) {
			kind = string(fe.Kind)
		}
		metrics.FetchFailures.WithLabelValues(cfg.Name, kind).Inc()

		logger.Warn().Err(err).Msg("pipeline: fetch failed")
		return result, err
	}

	extractor := extract.New(logger)
	candidates, strategy := extractor.Extract(fetched, cfg.Strategies)
	result.Strategy = strategy
	if len(candidates) > 0 {
		metrics.CandidatesFound.
			WithLabelValues(cfg.Name, string(strategy)).
			Add(float64(len(candidates)))
	}

	events, report := normalize.Normalize(candidates, normalize.Options{
		Now:         time.Now(),
		BaseURL:     fetched.FinalURL,
		Venue:       cfg.Venue,
		SourceLabel: cfg.Name,
		Junk:        junk,
	})
	result.Events = events
	result.Report = report

	metrics.EventsAccepted.WithLabelValues(cfg.Name).Add(float64(report.Accepted))
	for reason, n := range report.ByReason {
		metrics.CandidatesRejected.
			WithLabelValues(cfg.Name, string(reason)).
			Add(float64(n))
	}

	logger.Info().
		Str("strategy", string(strategy)).
		Int("candidates", len(candidates)).
		Int("accepted", report.Accepted).
		Int("rejected", len(report.Rejected)).
		Msg("pipeline: run complete")

	return result, nil
}
