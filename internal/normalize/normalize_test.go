package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigcity/harvester/internal/event"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Now:         testNow,
		BaseURL:     "https://example.com/events/",
		Venue:       event.Venue{Name: "The Rickshaw", Address: "254 E Hastings St", City: "Vancouver"},
		SourceLabel: "rickshaw-theatre",
	}
}

func TestNormalizeAccepts(t *testing.T) {
	candidates := []event.Candidate{
		{
			Title:       "  The Sadies <span>Live</span>  ",
			RawDateText: "2026-03-15T20:00:00Z",
			URL:         "/show/42",
			ImageURL:    "../img/sadies.jpg",
			Description: "<p>Alt-country legends.</p><script>alert(1)</script>",
		},
	}

	events, report := Normalize(candidates, testOptions())
	require.Len(t, events, 1)
	assert.Equal(t, 1, report.Accepted)
	assert.Empty(t, report.Rejected)

	e := events[0]
	assert.Equal(t, "The Sadies Live", e.Title)
	assert.Equal(t, "2026-03-15T20:00:00Z", e.StartISO())
	assert.False(t, e.AllDay)
	assert.Equal(t, "https://example.com/show/42", e.URL)
	assert.Equal(t, "https://example.com/img/sadies.jpg", e.ImageURL)
	assert.Equal(t, "<p>Alt-country legends.</p>", e.Description)
	assert.Equal(t, "The Rickshaw", e.Venue.Name)
	assert.Equal(t, "rickshaw-theatre", e.SourceLabel)
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name       string
		candidate  event.Candidate
		wantReason event.RejectReason
	}{
		{
			name:       "junk title",
			candidate:  event.Candidate{Title: "Buy Tickets", RawDateText: "2026-03-15"},
			wantReason: event.RejectJunkTitle,
		},
		{
			name:       "too short",
			candidate:  event.Candidate{Title: "ab", RawDateText: "2026-03-15"},
			wantReason: event.RejectTitleTooShort,
		},
		{
			name:       "markup-only title sanitizes to empty",
			candidate:  event.Candidate{Title: "<img src=x>", RawDateText: "2026-03-15"},
			wantReason: event.RejectTitleTooShort,
		},
		{
			name:       "missing date",
			candidate:  event.Candidate{Title: "Real Band Name"},
			wantReason: event.RejectDateMissing,
		},
		{
			name:       "unparseable date",
			candidate:  event.Candidate{Title: "Real Band Name", RawDateText: "Doors at some point"},
			wantReason: event.RejectDateUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, report := Normalize([]event.Candidate{tt.candidate}, testOptions())
			assert.Empty(t, events)
			require.Len(t, report.Rejected, 1)
			assert.Equal(t, tt.wantReason, report.Rejected[0].Reason)
			assert.Equal(t, 1, report.ByReason[tt.wantReason])
		})
	}
}

func TestNormalizeTitleTooLong(t *testing.T) {
	long := make([]rune, 600)
	for i := range long {
		long[i] = 'x'
	}

	events, report := Normalize([]event.Candidate{
		{Title: string(long), RawDateText: "2026-03-15"},
	}, testOptions())
	assert.Empty(t, events)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, event.RejectTitleTooLong, report.Rejected[0].Reason)
}

func TestNormalizeDeduplicates(t *testing.T) {
	candidates := []event.Candidate{
		{Title: "The Sadies", RawDateText: "2026-03-15", URL: "/a"},
		{Title: "  the sadies  ", RawDateText: "March 15, 2026", URL: "/b"},
		{Title: "The Sadies", RawDateText: "2026-03-16"}, // different date survives
	}

	events, report := Normalize(candidates, testOptions())
	require.Len(t, events, 2)
	assert.Equal(t, 1, report.ByReason[event.RejectDuplicate])

	// First occurrence wins.
	assert.Equal(t, "https://example.com/a", events[0].URL)
}

func TestNormalizePreservesOrderAndIsIdempotent(t *testing.T) {
	candidates := []event.Candidate{
		{Title: "Band C", RawDateText: "2026-05-03"},
		{Title: "Band A", RawDateText: "2026-05-01"},
		{Title: "Band B", RawDateText: "2026-05-02"},
	}

	first, _ := Normalize(candidates, testOptions())
	second, _ := Normalize(candidates, testOptions())

	require.Len(t, first, 3)
	assert.Equal(t, "Band C", first[0].Title)
	assert.Equal(t, "Band A", first[1].Title)
	assert.Equal(t, "Band B", first[2].Title)
	assert.Equal(t, first, second)
}

func TestNormalizeURLFallbacks(t *testing.T) {
	opts := testOptions()

	tests := []struct {
		name    string
		href    string
		wantURL string
	}{
		{name: "relative resolved", href: "/show/42", wantURL: "https://example.com/show/42"},
		{name: "document relative", href: "show/42", wantURL: "https://example.com/events/show/42"},
		{name: "absolute kept", href: "https://tickets.example.org/e/1", wantURL: "https://tickets.example.org/e/1"},
		{name: "empty falls back to page", href: "", wantURL: "https://example.com/events/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, _ := Normalize([]event.Candidate{
				{Title: "Real Band Name", RawDateText: "2026-03-15", URL: tt.href},
			}, opts)
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantURL, events[0].URL)
		})
	}
}

func TestNormalizeVenueHintOverride(t *testing.T) {
	events, _ := Normalize([]event.Candidate{
		{Title: "Touring Band", RawDateText: "2026-03-15", VenueNameHint: "The Annex Room"},
	}, testOptions())
	require.Len(t, events, 1)
	assert.Equal(t, "The Annex Room", events[0].Venue.Name)
	// Config address survives the hint.
	assert.Equal(t, "254 E Hastings St", events[0].Venue.Address)
}

func TestNormalizeAllDayRendering(t *testing.T) {
	events, _ := Normalize([]event.Candidate{
		{Title: "Record Fair", RawDateText: "2026-03-15"},
	}, testOptions())
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, "2026-03-15", events[0].StartISO())
}
