package extract

import "regexp"

// Date-text recognition patterns, in priority order. Month-name forms are
// matched before ISO and slash-delimited forms because they are what venue
// sites overwhelmingly render, and the month list covers French for the
// Montréal venues.
var (
	monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?|janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[ûu]t|septembre|octobre|novembre|d[ée]cembre)`

	// "March 15", "Mar 15, 2026", "Sept. 3rd 2026"
	monthDayPattern = regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:\s*,?\s*\d{4})?\b`)

	// "15 March 2026", "1er juillet 2026", "3 décembre"
	dayMonthPattern = regexp.MustCompile(`(?i)\b\d{1,2}(?:er)?\s+` + monthNames + `\.?(?:\s+\d{4})?\b`)

	// "2026-03-15", "2026-03-15T20:00", "2026-03-15T20:00:00"
	isoPattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?)?\b`)

	// "3/15/2026"
	slashPattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)

	datePatterns = []*regexp.Regexp{monthDayPattern, dayMonthPattern, isoPattern, slashPattern}
)

// FindDateText returns the first date-like substring of s, trying the
// pattern set in priority order, or "" when none match.
func FindDateText(s string) string {
	for _, p := range datePatterns {
		if m := p.FindString(s); m != "" {
			return m
		}
	}
	return ""
}

// ContainsDateText reports whether s contains any recognizable date text.
func ContainsDateText(s string) bool {
	return FindDateText(s) != ""
}
