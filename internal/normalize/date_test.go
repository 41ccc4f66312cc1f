package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFastPaths(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantHour  int
		allDay    bool
	}{
		{
			name:      "rfc3339",
			input:     "2026-03-15T20:00:00Z",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
			wantHour:  20,
		},
		{
			name:      "iso datetime no zone",
			input:     "2026-03-15T20:00",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
			wantHour:  20,
		},
		{
			name:      "iso date only",
			input:     "2026-03-15",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
			allDay:    true,
		},
		{
			name:      "slash date is month first",
			input:     "1/2/2026",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   2,
			allDay:    true,
		},
		{
			name:      "padded slash date",
			input:     "03/15/2026",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
			allDay:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, allDay, err := ParseDate(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, got.Year())
			assert.Equal(t, tt.wantMonth, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
			assert.Equal(t, tt.wantHour, got.Hour())
			assert.Equal(t, tt.allDay, allDay)
		})
	}
}

func TestParseDateFreeText(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{
			name:      "month day with year",
			input:     "March 15, 2026",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
		},
		{
			name:      "abbreviated month",
			input:     "Sep 3 2026",
			wantYear:  2026,
			wantMonth: time.September,
			wantDay:   3,
		},
		{
			name:      "french day month",
			input:     "15 juillet 2026",
			wantYear:  2026,
			wantMonth: time.July,
			wantDay:   15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ParseDate(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, got.Year())
			assert.Equal(t, tt.wantMonth, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
		})
	}
}

func TestParseDateYearInference(t *testing.T) {
	// Anchored at 2025-03-01: a past month rolls into next year, a future
	// month stays in the current year.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	jan, _, err := ParseDate("January 15", now)
	require.NoError(t, err)
	assert.Equal(t, 2026, jan.Year())
	assert.Equal(t, time.January, jan.Month())
	assert.Equal(t, 15, jan.Day())

	jun, _, err := ParseDate("June 1", now)
	require.NoError(t, err)
	assert.Equal(t, 2025, jun.Year())
	assert.Equal(t, time.June, jun.Month())
	assert.Equal(t, 1, jun.Day())
}

func TestParseDateErrors(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, input := range []string{"", "   ", "Doors at late o'clock", "TBA"} {
		_, _, err := ParseDate(input, now)
		assert.Error(t, err, "input %q should not parse", input)
	}
}
