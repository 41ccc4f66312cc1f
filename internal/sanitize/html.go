// Package sanitize strips unwanted HTML from scraped text before it
// enters validation. Venue pages routinely leak markup into titles and
// descriptions (tracking spans, inline SVG, script fragments).
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all tags and attributes. Used for titles and
	// any field that must be plain text.
	strictPolicy = bluemonday.StrictPolicy()

	// descriptionPolicy allows safe basic formatting (<p>, <b>, <i>,
	// <em>, <strong>, <a>, lists, <br>) for event descriptions.
	descriptionPolicy = bluemonday.UGCPolicy()
)

// Title strips all HTML from a scraped title and collapses surrounding
// whitespace. The result may be empty; the filter stage decides whether
// that rejects the candidate.
func Title(input string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(input))
}

// Description sanitizes an event description, keeping basic formatting
// and removing scripts, iframes, event handlers, and style attributes.
func Description(input string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(input))
}
