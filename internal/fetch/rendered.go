package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"
)

// RenderedFetcher retrieves client-rendered listings with a headless
// browser (rod). The browser is launched, used, and torn down within a
// single Fetch call so concurrent venue runs never share browser state.
type RenderedFetcher struct {
	cfg    Config
	logger zerolog.Logger
}

// Fetch navigates to rawURL, waits for the page to settle, runs the
// bounded interaction budget (load-more clicks, lazy-load scrolls), and
// returns the rendered DOM as a single page.
func (f *RenderedFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if _, err := validateURL(rawURL); err != nil {
		return nil, err
	}

	// Colly checks robots.txt for the static path; the browser does not,
	// so check here before launching anything.
	allowed, robotsErr := RobotsAllowed(ctx, rawURL, f.cfg.UserAgent)
	if robotsErr != nil {
		f.logger.Warn().Err(robotsErr).Str("url", rawURL).
			Msg("fetch: robots.txt check failed, proceeding as allowed")
		allowed = true
	}
	if !allowed {
		return nil, &Error{Kind: KindBlocked, URL: rawURL, Err: errRobotsDisallowed}
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	l := launcher.New().Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, classify(rawURL, err, 0)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, classify(rawURL, err, 0)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			f.logger.Debug().Err(err).Msg("fetch: browser close")
		}
	}()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, classify(rawURL, err, 0)
	}

	if err := page.Navigate(rawURL); err != nil {
		return nil, classify(rawURL, err, 0)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, classify(rawURL, err, 0)
	}

	// Fixed settle delay: client-side rendering and pagination widgets
	// often populate well after the load event.
	if err := sleepCtx(ctx, f.cfg.Settle); err != nil {
		return nil, classify(rawURL, err, 0)
	}

	f.interact(ctx, page)

	html, err := page.HTML()
	if err != nil {
		return nil, classify(rawURL, err, 0)
	}

	finalURL := rawURL
	if info, infoErr := page.Info(); infoErr == nil && info.URL != "" {
		finalURL = info.URL
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, classify(rawURL, err, 0)
	}

	u, err := validateURL(finalURL)
	if err != nil {
		u, _ = validateURL(rawURL)
	}

	return &Result{
		Pages:    []Page{{URL: u, Doc: doc}},
		FinalURL: finalURL,
	}, nil
}

// interact runs the interaction budget: click the load-more control while
// it exists, or scroll to trigger lazy loading. Iterations are hard-capped
// so pages with unlimited "load more" affordances still terminate.
func (f *RenderedFetcher) interact(ctx context.Context, page *rod.Page) {
	for i := 0; i < f.cfg.Interactions; i++ {
		if ctx.Err() != nil {
			return
		}

		if f.cfg.LoadMoreSelector != "" {
			el, err := page.Timeout(2 * time.Second).Element(f.cfg.LoadMoreSelector)
			if err != nil {
				return // control gone, nothing more to load
			}
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				f.logger.Debug().Err(err).Int("iteration", i).
					Msg("fetch: load-more click failed")
				return
			}
		} else if f.cfg.InfiniteScroll {
			if err := page.Mouse.Scroll(0, 2000, 4); err != nil {
				f.logger.Debug().Err(err).Int("iteration", i).
					Msg("fetch: scroll failed")
				return
			}
		} else {
			return
		}

		if err := sleepCtx(ctx, f.cfg.Settle/2); err != nil {
			return
		}
	}
}

// sleepCtx sleeps for d unless ctx expires first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
