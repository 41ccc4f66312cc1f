package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InspectResult summarises the DOM structure of a fetched listing page to
// help write selector strategies for a new venue.
type InspectResult struct {
	URL         string
	TopClasses  []ClassCount // most frequent CSS classes
	DataAttrs   []ClassCount // most frequent data-* attribute names
	EventLinks  []string     // href values containing "event" or "show"
	SampleCards []SampleCard // first few likely event containers
	DatedBlocks int          // elements whose own text contains date text
}

// ClassCount is a CSS class (or data-attr) name and how often it appeared.
type ClassCount struct {
	Name  string
	Count int
}

// SampleCard is a snippet of a candidate event container element.
type SampleCard struct {
	Selector string // e.g. "article.event-card"
	HTML     string // trimmed outer HTML (first 300 chars)
}

// Inspect analyses an already-fetched document. Fetching is left to the
// fetcher so rendered pages can be inspected too.
func Inspect(doc *goquery.Document, pageURL string) *InspectResult {
	result := &InspectResult{URL: pageURL}

	classCounts := map[string]int{}
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		cls, _ := s.Attr("class")
		for _, part := range strings.Fields(cls) {
			classCounts[part]++
		}
	})
	result.TopClasses = topN(classCounts, 30)

	dataCounts := map[string]int{}
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			for _, attr := range node.Attr {
				if strings.HasPrefix(attr.Key, "data-") {
					dataCounts[attr.Key]++
				}
			}
		}
	})
	result.DataAttrs = topN(dataCounts, 15)

	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		if (strings.Contains(lower, "/event") || strings.Contains(lower, "/show") ||
			strings.Contains(lower, "/concert") || strings.Contains(lower, "/gig")) && !seen[href] {
			seen[href] = true
			result.EventLinks = append(result.EventLinks, href)
		}
	})
	if len(result.EventLinks) > 20 {
		result.EventLinks = result.EventLinks[:20]
	}

	eventWords := []string{"event", "show", "concert", "gig", "card", "listing", "performance", "item"}
	cardSeen := map[string]bool{}
	for _, tag := range []string{"article", "li", "div", "section"} {
		doc.Find(tag + "[class]").Each(func(_ int, s *goquery.Selection) {
			cls, _ := s.Attr("class")
			lower := strings.ToLower(cls)
			for _, w := range eventWords {
				if strings.Contains(lower, w) {
					firstClass := strings.Fields(cls)[0]
					sel := tag + "." + firstClass
					if cardSeen[sel] {
						return
					}
					cardSeen[sel] = true
					h, _ := goquery.OuterHtml(s)
					if len(h) > 300 {
						h = h[:300] + "…"
					}
					result.SampleCards = append(result.SampleCards, SampleCard{
						Selector: sel,
						HTML:     h,
					})
					if len(result.SampleCards) >= 8 {
						return
					}
					break
				}
			}
		})
		if len(result.SampleCards) >= 8 {
			break
		}
	}

	doc.Find("p, li, span, div, td, time").Each(func(_ int, s *goquery.Selection) {
		if ContainsDateText(ownText(s)) {
			result.DatedBlocks++
		}
	})

	return result
}

// FormatInspectResult formats an InspectResult as human-readable terminal output.
func FormatInspectResult(r *InspectResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "URL:          %s\n", r.URL)
	fmt.Fprintf(&b, "Dated blocks: %d\n\n", r.DatedBlocks)

	b.WriteString("── Top CSS Classes ─────────────────────────────────────\n")
	for i, c := range r.TopClasses {
		fmt.Fprintf(&b, "  %-40s %d\n", c.Name, c.Count)
		if i >= 19 {
			break
		}
	}

	if len(r.DataAttrs) > 0 {
		b.WriteString("\n── data-* Attributes ────────────────────────────────────\n")
		for _, c := range r.DataAttrs {
			fmt.Fprintf(&b, "  %-40s %d\n", c.Name, c.Count)
		}
	}

	if len(r.EventLinks) > 0 {
		b.WriteString("\n── Event-ish hrefs (sample) ─────────────────────────────\n")
		for _, l := range r.EventLinks {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}

	if len(r.SampleCards) > 0 {
		b.WriteString("\n── Candidate Event Containers ───────────────────────────\n")
		for _, card := range r.SampleCards {
			fmt.Fprintf(&b, "\n  selector: %s\n  html:     %s\n", card.Selector, card.HTML)
		}
	}

	return b.String()
}

// topN returns the N most frequent entries from a count map, sorted desc.
func topN(m map[string]int, n int) []ClassCount {
	out := make([]ClassCount, 0, len(m))
	for k, v := range m {
		out = append(out, ClassCount{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
