// Package event defines the data types shared across the harvesting
// pipeline: the raw candidates produced by extraction and the validated
// records handed back to callers.
package event

import "time"

// Candidate is a raw scraped fragment before date/title normalization.
// Every field except Title may be empty; missing optional fields are
// resolved or rejected downstream, never here.
type Candidate struct {
	Title         string
	RawDateText   string
	URL           string
	ImageURL      string
	Description   string
	VenueNameHint string
}

// Venue is the static venue metadata attached to every normalized event.
// It comes from configuration, not from the scraped page.
type Venue struct {
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
	City    string `yaml:"city" json:"city"`
}

// Normalized is a validated, deduplicated event record ready for
// persistence or display. Ownership passes to the caller once returned.
type Normalized struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	AllDay      bool      `json:"all_day"`
	Venue       Venue     `json:"venue"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	SourceLabel string    `json:"source_label"`
}

// StartISO renders the start as an ISO-8601 string: a bare calendar date
// for all-day events, RFC 3339 otherwise.
func (n Normalized) StartISO() string {
	if n.AllDay {
		return n.Start.Format("2006-01-02")
	}
	return n.Start.Format(time.RFC3339)
}

// RejectReason classifies why a candidate was dropped during
// normalization. Reasons are reported in aggregate and never abort a batch.
type RejectReason string

const (
	RejectJunkTitle       RejectReason = "junk-title"
	RejectTitleTooShort   RejectReason = "too-short"
	RejectTitleTooLong    RejectReason = "too-long"
	RejectDuplicate       RejectReason = "duplicate"
	RejectDateMissing     RejectReason = "date-missing"
	RejectDateUnparseable RejectReason = "date-unparseable"
)
