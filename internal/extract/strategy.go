package extract

// StrategyKind names one extraction approach. Strategies run in the order
// configured for a venue; the first one that yields candidates wins.
type StrategyKind string

const (
	// KindJSONLD extracts schema.org Event objects from JSON-LD script
	// blocks. Highest precision; configure it first when a site ships
	// structured data.
	KindJSONLD StrategyKind = "jsonld"

	// KindSelector extracts candidates from DOM fragments matched by a
	// CSS container selector, with per-field sub-selectors.
	KindSelector StrategyKind = "selector"

	// KindDateScan is the whole-page fallback: any element whose text
	// contains a recognizable date pattern becomes a candidate. High
	// false-positive rate; keep it last.
	KindDateScan StrategyKind = "datescan"
)

// Selectors holds the CSS selectors for a KindSelector strategy. Only
// Container is required; missing field selectors fall back to ordered
// per-field heuristics.
type Selectors struct {
	Container   string `yaml:"container" json:"container"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Date        string `yaml:"date,omitempty" json:"date,omitempty"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Venue       string `yaml:"venue,omitempty" json:"venue,omitempty"`
}

// Strategy is one entry in a venue's ordered extraction list.
type Strategy struct {
	Kind      StrategyKind `yaml:"kind" json:"kind" validate:"required,oneof=jsonld selector datescan"`
	Selectors Selectors    `yaml:"selectors,omitempty" json:"selectors,omitempty"`
}

// DefaultStrategies is the fallback list used when a venue config supplies
// none: structured data first, then generic event-card selectors, then the
// whole-page date scan.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Kind: KindJSONLD},
		{Kind: KindSelector, Selectors: Selectors{Container: ".event, .event-card, [class*=\"event-item\"]"}},
		{Kind: KindSelector, Selectors: Selectors{Container: "article"}},
		{Kind: KindDateScan},
	}
}
