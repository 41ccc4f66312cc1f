package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// defaultJunkPatterns match the boilerplate that venue pages shed into
// title extraction: navigation labels, generic CTAs, and CSS/SVG
// fragments. The list is data, not code; venue configs extend it.
var defaultJunkPatterns = []string{
	`^(?i)(buy\s+)?tickets?$`,
	`^(?i)(more|event)\s+info(rmation)?$`,
	`^(?i)read\s+more$`,
	`^(?i)learn\s+more$`,
	`^(?i)view\s+(all|details|event)$`,
	`^(?i)load\s+more$`,
	`^(?i)see\s+more$`,
	`^(?i)menu$`,
	`^(?i)search$`,
	`^(?i)(sign\s+up|log\s*in|register)$`,
	`^(?i)(subscribe|newsletter)$`,
	`^(?i)sold\s+out$`,
	`^(?i)free$`,
	`^(?i)(home|about( us)?|contact( us)?|faq)$`,
	`^(?i)(share|facebook|twitter|instagram|youtube)$`,
	`^(?i)(accept|cookies?|privacy policy|terms)`,
	`^(?i)upcoming\s+(events|shows)$`,
	`^(?i)(calendar|events|shows|what'?s\s+on)$`,
	`[{};]`,      // raw CSS fragments
	`^[.#]\w`,    // selector text leaking into titles
	`^<\w+`,      // unstripped markup
	`^\s*svg\b`,  // inline SVG artifacts
	`^https?://`, // bare URLs are not titles
}

// JunkFilter rejects titles matching any of its patterns.
type JunkFilter struct {
	patterns []*regexp.Regexp
}

// NewJunkFilter compiles the default pattern set plus any extra
// caller-supplied patterns. An invalid pattern is a configuration error
// and fails loudly rather than silently weakening the filter.
func NewJunkFilter(extra []string) (*JunkFilter, error) {
	all := make([]string, 0, len(defaultJunkPatterns)+len(extra))
	all = append(all, defaultJunkPatterns...)
	all = append(all, extra...)

	compiled := make([]*regexp.Regexp, 0, len(all))
	for _, p := range all {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("junk pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &JunkFilter{patterns: compiled}, nil
}

// MustJunkFilter is NewJunkFilter for known-good pattern sets (defaults,
// tests). It panics on compile errors.
func MustJunkFilter(extra []string) *JunkFilter {
	f, err := NewJunkFilter(extra)
	if err != nil {
		panic(err)
	}
	return f
}

// IsJunk reports whether title matches any junk pattern.
func (f *JunkFilter) IsJunk(title string) bool {
	trimmed := strings.TrimSpace(title)
	for _, re := range f.patterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}
