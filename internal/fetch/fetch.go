// Package fetch retrieves venue listing pages for the extractor. Two
// strategies are supported: a static HTTP crawl (Colly) for server-rendered
// sites, and a headless browser (rod) for listings populated client-side.
// Both hand back parsed goquery documents so the extractor never has to
// care which mode produced them.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Mode selects the retrieval strategy for a venue.
type Mode string

const (
	ModeStatic   Mode = "static"
	ModeRendered Mode = "rendered"
)

// ErrorKind classifies fetch failures.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network" // DNS/connection failures
	KindBlocked ErrorKind = "blocked" // non-2xx status, robots denial, anti-bot
	KindTimeout ErrorKind = "timeout" // deadline exceeded
)

// Error is the typed failure surfaced by both fetch modes. It is fatal to
// one venue's pipeline run but must never crash a multi-venue batch.
type Error struct {
	Kind   ErrorKind
	URL    string
	Status int // non-zero only for Kind == KindBlocked with an HTTP status
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config controls a single fetch. Zero values fall back to the defaults
// applied by withDefaults.
type Config struct {
	Mode      Mode
	Timeout   time.Duration
	Headers   map[string]string
	UserAgent string

	// Static mode: pagination link selector and page cap.
	PaginationSelector string
	MaxPages           int
	RateLimit          time.Duration

	// Rendered mode: settle delay after load, and the bounded interaction
	// budget for load-more clicks / lazy-load scrolls.
	Settle           time.Duration
	LoadMoreSelector string
	InfiniteScroll   bool
	Interactions     int
}

const (
	defaultTimeout      = 30 * time.Second
	defaultSettle       = 3 * time.Second
	defaultMaxPages     = 10
	defaultInteractions = 10
	maxInteractions     = 30
	defaultRateLimit    = time.Second
	maxBodyBytes        = 10 * 1024 * 1024 // cap parsed bodies to prevent OOM

	// Some venue sites reject default Go client signatures outright, so
	// the static fetcher presents a mainstream browser User-Agent.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
)

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeStatic
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Settle <= 0 {
		c.Settle = defaultSettle
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.Interactions <= 0 {
		c.Interactions = defaultInteractions
	}
	if c.Interactions > maxInteractions {
		c.Interactions = maxInteractions
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return c
}

// Page is one fetched document plus the URL it was actually served from
// (after redirects), which the normalizer uses as the base for resolving
// relative links.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// Result is the fetcher's output: at least one page on success.
type Result struct {
	Pages    []Page
	FinalURL string
}

// Fetcher retrieves a listing URL. Implementations enforce a hard timeout
// and surface *Error rather than hanging.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Result, error)
}

// New returns the Fetcher for cfg.Mode.
func New(cfg Config, logger zerolog.Logger) Fetcher {
	cfg = cfg.withDefaults()
	if cfg.Mode == ModeRendered {
		return &RenderedFetcher{cfg: cfg, logger: logger}
	}
	return &StaticFetcher{cfg: cfg, logger: logger}
}

// classify maps a low-level error (and optional HTTP status) onto the
// fetch error taxonomy.
func classify(rawURL string, err error, status int) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	case status >= 400:
		return &Error{Kind: KindBlocked, URL: rawURL, Status: status, Err: err}
	default:
		return &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
}

// validateURL rejects URLs without an http(s) scheme and host before any
// network activity happens.
func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: missing scheme or host", rawURL)
	}
	return u, nil
}
