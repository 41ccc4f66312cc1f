package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// Deterministic fast-path layouts, tried before the locale-aware parser.
// The slash layouts are pinned to M/D/YYYY: this dataset is dominated by
// North American venues, and leaving the ambiguity to a locale guesser
// produced silent month/day swaps.
var (
	dateTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	dateOnlyLayouts = []string{
		"2006-01-02",
		"1/2/2006",
		"01/02/2006",
	}
)

// ParseDate converts free-text date text into a concrete time. The bool
// result reports whether the input carried only a calendar date (no
// time of day). When the year is omitted, the nearest future occurrence
// relative to now is chosen. Unparseable text is an error: defaulting to
// "now" hides bad data and is deliberately not supported here.
func ParseDate(text string, now time.Time) (time.Time, bool, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false, fmt.Errorf("empty date text")
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, false, nil
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true, nil
		}
	}

	// Locale-aware parse: English and French month names, year inference
	// anchored at now and preferring the future.
	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		Languages:           []string{"en", "fr"},
		PreferredDateSource: dateparser.Future,
	}
	dt, err := dateparser.Parse(cfg, trimmed)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unparseable date text %q: %w", text, err)
	}
	if dt.Time.IsZero() {
		return time.Time{}, false, fmt.Errorf("unparseable date text %q", text)
	}

	t := dt.Time
	allDay := t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
	return t, allDay, nil
}
