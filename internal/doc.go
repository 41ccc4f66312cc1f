// Package internal holds the harvesting pipeline internals.
//
// The internal tree is organized by pipeline stage:
// - fetch: page retrieval (static HTTP crawl or headless browser)
// - extract: candidate extraction from fetched DOM
// - normalize: date normalization, validation, deduplication
// - pipeline: per-venue orchestration and the concurrent batch runner
// - venue, config, event, sanitize, sink, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
