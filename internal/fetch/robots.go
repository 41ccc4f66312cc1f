package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsTimeout = 10 * time.Second

var errRobotsDisallowed = errors.New("disallowed by robots.txt")

// RobotsAllowed checks whether the given user agent is permitted to fetch
// rawURL according to the site's robots.txt. A missing (404) robots.txt is
// treated as "allow all". Network errors fetching robots.txt are returned
// as errors; callers should typically treat them as allowed.
func RobotsAllowed(ctx context.Context, rawURL string, userAgent string) (bool, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	robotsURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
		Path:   "/robots.txt",
	}

	// Redirects are disabled to prevent open-redirect abuse.
	client := &http.Client{
		Timeout: robotsTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return false, fmt.Errorf("building robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetching robots.txt from %q: %w", robotsURL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return true, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("reading robots.txt body: %w", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		// Malformed robots.txt is treated as allow.
		return true, nil
	}

	return data.TestAgent(parsedURL.Path, userAgent), nil
}
