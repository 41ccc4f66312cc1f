// Package extract turns fetched documents into event candidates by
// applying an ordered list of per-venue strategies. Extraction never
// fails: a page with nothing recognizable yields an empty slice.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/gigcity/harvester/internal/event"
	"github.com/gigcity/harvester/internal/fetch"
)

// Extractor applies venue strategies to fetched pages.
type Extractor struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract tries each strategy in priority order across all fetched pages.
// As soon as one strategy yields candidates, its results are used
// exclusively: high-precision and low-precision extraction are never mixed
// within one pass. The winning strategy's kind is returned for
// observability. An empty result is valid, not an error.
func (e *Extractor) Extract(res *fetch.Result, strategies []Strategy) ([]event.Candidate, StrategyKind) {
	if res == nil || len(res.Pages) == 0 {
		return nil, ""
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	for _, strat := range strategies {
		var candidates []event.Candidate
		for _, page := range res.Pages {
			candidates = append(candidates, e.runStrategy(page, strat)...)
		}
		if len(candidates) > 0 {
			e.logger.Debug().
				Str("strategy", string(strat.Kind)).
				Int("candidates", len(candidates)).
				Msg("extract: strategy matched")
			return candidates, strat.Kind
		}
	}

	return nil, ""
}

func (e *Extractor) runStrategy(page fetch.Page, strat Strategy) []event.Candidate {
	switch strat.Kind {
	case KindJSONLD:
		return extractJSONLD(page.Doc)
	case KindSelector:
		return extractWithSelectors(page.Doc, strat.Selectors)
	case KindDateScan:
		return scanForDates(page.Doc)
	default:
		e.logger.Warn().Str("strategy", string(strat.Kind)).
			Msg("extract: unknown strategy kind, skipping")
		return nil
	}
}

// extractWithSelectors pulls one candidate per container fragment.
func extractWithSelectors(doc *goquery.Document, sel Selectors) []event.Candidate {
	if sel.Container == "" {
		return nil
	}

	var candidates []event.Candidate
	doc.Find(sel.Container).Each(func(_ int, frag *goquery.Selection) {
		c := event.Candidate{
			Title:       fragmentTitle(frag, sel.Title),
			RawDateText: fragmentDateText(frag, sel.Date),
			URL:         fragmentURL(frag, sel.URL),
			ImageURL:    fragmentImage(frag, sel.Image),
		}
		if sel.Description != "" {
			c.Description = strings.TrimSpace(frag.Find(sel.Description).First().Text())
		}
		if sel.Venue != "" {
			c.VenueNameHint = strings.TrimSpace(frag.Find(sel.Venue).First().Text())
		}

		// Missing optional fields stay empty and are resolved or rejected
		// downstream; only a completely empty title makes the fragment
		// useless here.
		if c.Title == "" {
			return
		}
		candidates = append(candidates, c)
	})

	return candidates
}

// fragmentTitle resolves a title from the first non-empty result of the
// ordered sub-selector list: explicit selector, heading tags, title-like
// classes, first link text, first line of the fragment's text.
func fragmentTitle(frag *goquery.Selection, explicit string) string {
	if explicit != "" {
		if t := strings.TrimSpace(frag.Find(explicit).First().Text()); t != "" {
			return t
		}
	}
	for _, s := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if t := strings.TrimSpace(frag.Find(s).First().Text()); t != "" {
			return t
		}
	}
	for _, s := range []string{`[class*="title"]`, `[class*="name"]`, `[class*="heading"]`} {
		if t := strings.TrimSpace(frag.Find(s).First().Text()); t != "" {
			return firstLine(t)
		}
	}
	if t := strings.TrimSpace(frag.Find("a").First().Text()); t != "" {
		return firstLine(t)
	}
	return firstLine(frag.Text())
}

// fragmentDateText resolves date text: datetime attributes first, then
// date-like classes, then regex patterns against the fragment's full text.
func fragmentDateText(frag *goquery.Selection, explicit string) string {
	if explicit != "" {
		target := frag.Find(explicit).First()
		if dt, ok := target.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return strings.TrimSpace(dt)
		}
		if dt, ok := target.Find("[datetime]").First().Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return strings.TrimSpace(dt)
		}
		if t := strings.TrimSpace(target.Text()); t != "" {
			return t
		}
	}

	if dt, ok := frag.Find("time[datetime]").First().Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	if dt, ok := frag.Find("[datetime]").First().Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}

	for _, s := range []string{`[class*="date"]`, `[class*="when"]`, `[class*="time"]`} {
		if t := strings.TrimSpace(frag.Find(s).First().Text()); t != "" {
			return firstLine(t)
		}
	}

	return FindDateText(frag.Text())
}

func fragmentURL(frag *goquery.Selection, explicit string) string {
	if explicit != "" {
		if href, ok := frag.Find(explicit).First().Attr("href"); ok && href != "" {
			return href
		}
	}
	if href, ok := frag.Attr("href"); ok && href != "" {
		return href // the fragment itself is a link card
	}
	if href, ok := frag.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	return ""
}

func fragmentImage(frag *goquery.Selection, explicit string) string {
	target := frag.Find("img").First()
	if explicit != "" {
		target = frag.Find(explicit).First()
	}
	if src, ok := target.Attr("src"); ok && src != "" {
		return src
	}
	// Lazy-loaded images park the real URL in data-src.
	if src, ok := target.Attr("data-src"); ok && src != "" {
		return src
	}
	return ""
}

// scanForDates is the last-resort whole-page scan: every element whose own
// text contains a date pattern yields a candidate built from its parent
// container. It produces many false positives, which is why it must stay
// lowest priority; the filter stage cleans up after it.
func scanForDates(doc *goquery.Document) []event.Candidate {
	var candidates []event.Candidate
	seen := map[string]bool{}

	doc.Find("p, li, span, div, td, time, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		own := ownText(s)
		dateText := FindDateText(own)
		if dateText == "" {
			return
		}

		container := s.Parent()
		if container.Length() == 0 {
			container = s
		}

		title := firstNonDateLine(container.Text())
		if title == "" {
			title = firstNonDateLine(own)
		}

		key := title + "|" + dateText
		if title == "" || seen[key] {
			return
		}
		seen[key] = true

		url := ""
		if href, ok := container.Find("a[href]").First().Attr("href"); ok {
			url = href
		}

		candidates = append(candidates, event.Candidate{
			Title:       title,
			RawDateText: dateText,
			URL:         url,
		})
	})

	return candidates
}

// ownText concatenates the element's direct text nodes, excluding
// descendant elements, so container elements don't swallow the whole page.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				b.WriteString(child.Data)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstNonDateLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || ContainsDateText(trimmed) {
			continue
		}
		return trimmed
	}
	return ""
}
