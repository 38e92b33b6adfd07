package sentiment

import (
	"strconv"
	"time"
)

// FallbackAdvisory is shown whenever the series comes from FallbackEntries.
const FallbackAdvisory = "Note: Live data fetch failed. Displaying simulated data for development."

var fallbackRows = []struct {
	score int
	label string
}{
	{45, "Neutral"},
	{20, "Extreme Fear"},
	{35, "Fear"},
	{55, "Greed"},
	{78, "Extreme Greed"},
	{62, "Greed"},
}

// FallbackEntries returns six illustrative entries ending at now, newest
// first like the live feed.
func FallbackEntries(now time.Time) []RawEntry {
	base := now.Unix()
	last := len(fallbackRows) - 1
	entries := make([]RawEntry, 0, len(fallbackRows))
	for i := last; i >= 0; i-- {
		row := fallbackRows[i]
		daysAgo := int64(last - i)
		entries = append(entries, RawEntry{
			Value:          strconv.Itoa(row.score),
			Classification: row.label,
			Timestamp:      strconv.FormatInt(base-daysAgo*86400, 10),
		})
	}
	return entries
}

// FallbackSeries runs FallbackEntries through Synthesize.
func FallbackSeries(now time.Time) []Point {
	points, err := Synthesize(FallbackEntries(now))
	if err != nil {
		// fixed rows always parse
		panic("sentiment: fallback entries rejected: " + err.Error())
	}
	return points
}
