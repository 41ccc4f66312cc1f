package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartISO(t *testing.T) {
	start := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)

	timed := Normalized{Start: start}
	assert.Equal(t, "2026-03-15T20:00:00Z", timed.StartISO())

	allDay := Normalized{Start: start, AllDay: true}
	assert.Equal(t, "2026-03-15", allDay.StartISO())
}

func TestNormalizedJSONShape(t *testing.T) {
	n := Normalized{
		Title:       "The Sadies",
		Start:       time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC),
		Venue:       Venue{Name: "The Rickshaw", City: "Vancouver"},
		URL:         "https://example.com/show/42",
		SourceLabel: "rickshaw-theatre",
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "The Sadies", decoded["title"])
	assert.Equal(t, "rickshaw-theatre", decoded["source_label"])
	// Optional fields are omitted when empty.
	assert.NotContains(t, decoded, "image_url")
	assert.NotContains(t, decoded, "description")
}
