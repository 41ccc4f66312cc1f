// Package normalize converts raw candidates into validated, deduplicated
// event records. It is a pure function of its input and options (no
// network, no DOM, no clock reads), which keeps the core testable in
// isolation.
package normalize

import (
	"net/url"
	"strings"
	"time"

	"github.com/gigcity/harvester/internal/event"
	"github.com/gigcity/harvester/internal/sanitize"
)

const (
	minTitleLen = 3
	maxTitleLen = 500
)

// Options parameterizes one normalization pass.
type Options struct {
	// Now anchors year inference for dates without an explicit year.
	// Callers pass a fixed value in tests to keep the pass deterministic.
	Now time.Time

	// BaseURL is the fetched page's final URL. Relative event links are
	// resolved against it; candidates with no link at all fall back to it.
	BaseURL string

	// Venue metadata attached to every accepted record.
	Venue       event.Venue
	SourceLabel string

	// Junk rejects boilerplate titles. Nil means defaults only.
	Junk *JunkFilter
}

// Rejection records one dropped candidate and why.
type Rejection struct {
	Title  string
	Reason event.RejectReason
	Detail string
}

// Report aggregates the outcome of one pass for observability. Rejections
// are reported here, never raised: one bad candidate must not abort the
// batch.
type Report struct {
	Accepted int
	Rejected []Rejection
	ByReason map[event.RejectReason]int
}

func (r *Report) reject(title string, reason event.RejectReason, detail string) {
	r.Rejected = append(r.Rejected, Rejection{Title: title, Reason: reason, Detail: detail})
	if r.ByReason == nil {
		r.ByReason = map[event.RejectReason]int{}
	}
	r.ByReason[reason]++
}

// Normalize validates, resolves, and deduplicates candidates, preserving
// input order among the survivors. Running it twice on the same input
// with the same options yields identical output.
func Normalize(candidates []event.Candidate, opts Options) ([]event.Normalized, Report) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	junk := opts.Junk
	if junk == nil {
		junk = MustJunkFilter(nil)
	}

	base, _ := url.Parse(opts.BaseURL)

	var (
		out    []event.Normalized
		report Report
		seen   = map[string]bool{}
	)

	for _, c := range candidates {
		title := sanitize.Title(c.Title)

		switch {
		case len([]rune(title)) < minTitleLen:
			report.reject(title, event.RejectTitleTooShort, c.Title)
			continue
		case len([]rune(title)) > maxTitleLen:
			report.reject(string([]rune(title)[:40])+"…", event.RejectTitleTooLong, "")
			continue
		case junk.IsJunk(title):
			report.reject(title, event.RejectJunkTitle, "")
			continue
		}

		if strings.TrimSpace(c.RawDateText) == "" {
			report.reject(title, event.RejectDateMissing, "")
			continue
		}

		start, allDay, err := ParseDate(c.RawDateText, opts.Now)
		if err != nil {
			report.reject(title, event.RejectDateUnparseable, c.RawDateText)
			continue
		}

		key := dedupKey(title, start, allDay)
		if seen[key] {
			report.reject(title, event.RejectDuplicate, key)
			continue
		}
		seen[key] = true

		venue := opts.Venue
		if c.VenueNameHint != "" {
			venue.Name = sanitize.Title(c.VenueNameHint)
		}

		out = append(out, event.Normalized{
			Title:       title,
			Start:       start,
			AllDay:      allDay,
			Venue:       venue,
			URL:         resolveURL(base, c.URL, opts.BaseURL),
			ImageURL:    resolveOptionalURL(base, c.ImageURL),
			Description: sanitize.Description(c.Description),
			SourceLabel: opts.SourceLabel,
		})
		report.Accepted++
	}

	return out, report
}

// dedupKey collapses candidates sharing the same lowercased trimmed title
// and resolved date within one pass.
func dedupKey(title string, start time.Time, allDay bool) string {
	layout := time.RFC3339
	if allDay {
		layout = "2006-01-02"
	}
	return strings.ToLower(strings.TrimSpace(title)) + "|" + start.Format(layout)
}

// resolveURL resolves href against the page base. A dangling relative
// path must never reach the output: when resolution is impossible or no
// URL was scraped, the page URL itself is the fallback.
func resolveURL(base *url.URL, href, pageURL string) string {
	if href == "" {
		return pageURL
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return pageURL
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return pageURL
	}
	return base.ResolveReference(ref).String()
}

// resolveOptionalURL is resolveURL without the fallback: images may be
// absent.
func resolveOptionalURL(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}
