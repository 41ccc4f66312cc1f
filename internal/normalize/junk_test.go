package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJunkFilterDefaults(t *testing.T) {
	f := MustJunkFilter(nil)

	junk := []string{
		"Buy Tickets",
		"tickets",
		"More Info",
		"Read more",
		"LOAD MORE",
		"Menu",
		"Sign Up",
		"Sold Out",
		"Upcoming Events",
		"What's On",
		".event-card { display: none }",
		"<div class=\"x\">",
		"https://example.com/events",
	}
	for _, title := range junk {
		assert.True(t, f.IsJunk(title), "expected junk: %q", title)
	}

	real := []string{
		"The National with Special Guests",
		"Godspeed You! Black Emperor",
		"An Evening of Free Jazz", // "free" only junk as a whole title
		"Menuhin Competition Finals",
	}
	for _, title := range real {
		assert.False(t, f.IsJunk(title), "expected real title: %q", title)
	}
}

func TestJunkFilterExtraPatterns(t *testing.T) {
	f, err := NewJunkFilter([]string{`(?i)^19\+$`})
	require.NoError(t, err)

	assert.True(t, f.IsJunk("19+"))
	assert.False(t, f.IsJunk("19+ Years of Noise"))
}

func TestJunkFilterInvalidPattern(t *testing.T) {
	_, err := NewJunkFilter([]string{`([`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "junk pattern")
}
