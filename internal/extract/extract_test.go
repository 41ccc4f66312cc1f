package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigcity/harvester/internal/fetch"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func resultFromHTML(t *testing.T, pages ...string) *fetch.Result {
	t.Helper()
	res := &fetch.Result{FinalURL: "https://example.com/events"}
	u, err := url.Parse(res.FinalURL)
	require.NoError(t, err)
	for _, html := range pages {
		res.Pages = append(res.Pages, fetch.Page{URL: u, Doc: docFromHTML(t, html)})
	}
	return res
}

const jsonldAndCardsHTML = `
<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"MusicEvent",
 "name":"Structured Band","startDate":"2026-04-01T20:00:00-07:00",
 "url":"https://example.com/show/1"}
</script>
</head><body>
<div class="event-card"><h2>Selector Band</h2><span class="date">April 2, 2026</span></div>
</body></html>`

func TestExtractStrategyPriority(t *testing.T) {
	e := New(zerolog.Nop())
	res := resultFromHTML(t, jsonldAndCardsHTML)

	strategies := []Strategy{
		{Kind: KindJSONLD},
		{Kind: KindSelector, Selectors: Selectors{Container: ".event-card"}},
	}

	candidates, kind := e.Extract(res, strategies)
	require.Len(t, candidates, 1)
	assert.Equal(t, KindJSONLD, kind)
	assert.Equal(t, "Structured Band", candidates[0].Title)

	// Reversed order: the selector strategy wins exclusively instead.
	candidates, kind = e.Extract(res, []Strategy{
		{Kind: KindSelector, Selectors: Selectors{Container: ".event-card"}},
		{Kind: KindJSONLD},
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, KindSelector, kind)
	assert.Equal(t, "Selector Band", candidates[0].Title)
}

func TestExtractFallsThroughToLaterStrategy(t *testing.T) {
	e := New(zerolog.Nop())
	res := resultFromHTML(t, `
<html><body>
<div class="event-card"><h2>Only Band</h2><span class="date">April 2, 2026</span></div>
</body></html>`)

	candidates, kind := e.Extract(res, []Strategy{
		{Kind: KindJSONLD},
		{Kind: KindSelector, Selectors: Selectors{Container: ".event-card"}},
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, KindSelector, kind)
}

func TestExtractEmptyPage(t *testing.T) {
	e := New(zerolog.Nop())

	candidates, kind := e.Extract(nil, nil)
	assert.Nil(t, candidates)
	assert.Empty(t, kind)

	candidates, kind = e.Extract(resultFromHTML(t, `<html><body><p>Nothing here.</p></body></html>`), nil)
	assert.Nil(t, candidates)
	assert.Empty(t, kind)
}

func TestExtractAggregatesAcrossPages(t *testing.T) {
	e := New(zerolog.Nop())
	page := `<html><body><div class="event-card"><h2>Band %s</h2><time datetime="2026-04-0%sT20:00">Apr</time></div></body></html>`
	res := resultFromHTML(t,
		strings.NewReplacer("%s", "1").Replace(page),
		strings.NewReplacer("%s", "2").Replace(page),
	)

	candidates, _ := e.Extract(res, []Strategy{
		{Kind: KindSelector, Selectors: Selectors{Container: ".event-card"}},
	})
	require.Len(t, candidates, 2)
	assert.Equal(t, "Band 1", candidates[0].Title)
	assert.Equal(t, "Band 2", candidates[1].Title)
}

func TestSelectorExtractionExplicitFields(t *testing.T) {
	doc := docFromHTML(t, `
<div class="show">
  <h3 class="headline">Explicit Band</h3>
  <span class="when">May 9, 2026</span>
  <a class="more" href="/show/9">details</a>
  <img class="poster" src="/img/9.jpg">
  <p class="blurb">Loud.</p>
  <span class="room">Side Stage</span>
</div>`)

	candidates := extractWithSelectors(doc, Selectors{
		Container:   ".show",
		Title:       ".headline",
		Date:        ".when",
		URL:         ".more",
		Image:       ".poster",
		Description: ".blurb",
		Venue:       ".room",
	})
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "Explicit Band", c.Title)
	assert.Equal(t, "May 9, 2026", c.RawDateText)
	assert.Equal(t, "/show/9", c.URL)
	assert.Equal(t, "/img/9.jpg", c.ImageURL)
	assert.Equal(t, "Loud.", c.Description)
	assert.Equal(t, "Side Stage", c.VenueNameHint)
}

func TestSelectorExtractionHeuristicFallbacks(t *testing.T) {
	// No field selectors configured: heading, datetime attribute, link and
	// lazy image are found heuristically.
	doc := docFromHTML(t, `
<article>
  <h2>Heuristic Band</h2>
  <time datetime="2026-05-10T19:30">Sun May 10</time>
  <a href="/tickets/10">Tickets</a>
  <img data-src="/lazy/10.jpg">
</article>`)

	candidates := extractWithSelectors(doc, Selectors{Container: "article"})
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "Heuristic Band", c.Title)
	assert.Equal(t, "2026-05-10T19:30", c.RawDateText)
	assert.Equal(t, "/tickets/10", c.URL)
	assert.Equal(t, "/lazy/10.jpg", c.ImageURL)
}

func TestSelectorExtractionSkipsTitleless(t *testing.T) {
	doc := docFromHTML(t, `<div class="card"></div><div class="card"><h2>Named</h2></div>`)

	candidates := extractWithSelectors(doc, Selectors{Container: ".card"})
	require.Len(t, candidates, 1)
	assert.Equal(t, "Named", candidates[0].Title)
}

func TestDateScan(t *testing.T) {
	doc := docFromHTML(t, `
<html><body>
<div class="listing">
  <p>Scanned Band</p>
  <p>March 15, 2026 at 8pm</p>
  <a href="/show/15">info</a>
</div>
<div class="footer"><p>No dates in this block.</p></div>
</body></html>`)

	candidates := scanForDates(doc)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "Scanned Band", candidates[0].Title)
	assert.Equal(t, "March 15, 2026", candidates[0].RawDateText)
	assert.Equal(t, "/show/15", candidates[0].URL)
}

func TestDateScanDeduplicatesRepeats(t *testing.T) {
	block := "<div>\n<p>Same Band</p>\n<p>March 15, 2026</p>\n</div>"
	doc := docFromHTML(t, "<html><body>"+block+block+"</body></html>")

	candidates := scanForDates(doc)
	assert.Len(t, candidates, 1)
}

func TestOwnTextExcludesDescendants(t *testing.T) {
	doc := docFromHTML(t, `<div id="x">outer <span>inner</span> text</div>`)
	sel := doc.Find("#x")
	got := ownText(sel)
	assert.Contains(t, got, "outer")
	assert.NotContains(t, got, "inner")
}
