package fetch

import (
	"bytes"
	"context"
	"net/url"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// StaticFetcher retrieves server-rendered listings with a Colly crawl:
// one HTTP GET per page, following the configured pagination link up to
// cfg.MaxPages. robots.txt is respected (Colly default) and requests are
// rate limited per domain.
type StaticFetcher struct {
	cfg    Config
	logger zerolog.Logger
}

// Fetch retrieves rawURL and any paginated continuation pages. If ctx is
// cancelled mid-crawl the pages collected so far are returned.
func (f *StaticFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if _, err := validateURL(rawURL); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	domain, err := extractDomain(rawURL)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		pages     []Page
		pagesSeen int
		lastErr   error
		lastCode  int
		finalURL  string
	)

	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowedDomains(domain),
		// robots.txt is respected by default in Colly; do NOT use IgnoreRobotsTxt.
	)
	c.SetRequestTimeout(f.cfg.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      f.cfg.RateLimit,
	}); err != nil {
		f.logger.Warn().Err(err).Msg("fetch: failed to set rate limit rule")
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}

		mu.Lock()
		pagesSeen++
		reachedMax := pagesSeen > f.cfg.MaxPages
		mu.Unlock()

		if reachedMax {
			r.Abort()
			return
		}

		r.Headers.Set("Accept", defaultAccept)
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		for k, v := range f.cfg.Headers {
			r.Headers.Set(k, v)
		}

		f.logger.Debug().
			Str("url", r.URL.String()).
			Int("page", pagesSeen).
			Msg("fetch: visiting page")
	})

	c.OnResponse(func(r *colly.Response) {
		doc, parseErr := goquery.NewDocumentFromReader(bytes.NewReader(capBody(r.Body)))
		if parseErr != nil {
			f.logger.Warn().Err(parseErr).Str("url", r.Request.URL.String()).
				Msg("fetch: failed to parse HTML")
			return
		}

		pageURL := *r.Request.URL

		mu.Lock()
		pages = append(pages, Page{URL: &pageURL, Doc: doc})
		if finalURL == "" {
			finalURL = pageURL.String()
		}
		mu.Unlock()
	})

	if f.cfg.PaginationSelector != "" {
		c.OnHTML(f.cfg.PaginationSelector, func(h *colly.HTMLElement) {
			if ctx.Err() != nil {
				return
			}

			href := h.Attr("href")
			if href == "" {
				href = h.ChildAttr("a", "href")
			}
			if href == "" {
				return
			}

			nextURL := h.Request.AbsoluteURL(href)
			if nextURL == "" {
				return
			}

			if err := c.Visit(nextURL); err != nil {
				f.logger.Debug().Err(err).Str("url", nextURL).
					Msg("fetch: failed to queue pagination URL")
			}
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		lastErr = err
		lastCode = r.StatusCode
		mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		f.logger.Warn().
			Str("url", r.Request.URL.String()).
			Int("status", r.StatusCode).
			Err(err).
			Msg("fetch: request error")
	})

	visitErr := c.Visit(rawURL)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()

	// A failed first request is fatal; failures on continuation pages are
	// not, as long as at least one page parsed.
	if len(pages) == 0 {
		if ctx.Err() != nil {
			return nil, classify(rawURL, ctx.Err(), 0)
		}
		err := lastErr
		if err == nil {
			err = visitErr
		}
		return nil, classify(rawURL, err, lastCode)
	}

	return &Result{Pages: pages, FinalURL: finalURL}, nil
}

// extractDomain parses rawURL and returns just the hostname (no port).
func extractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Hostname(), nil
}

// capBody truncates oversized response bodies before parsing.
func capBody(body []byte) []byte {
	if len(body) > maxBodyBytes {
		return body[:maxBodyBytes]
	}
	return body
}
