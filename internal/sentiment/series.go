package sentiment

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// BasePrice anchors the simulated price series.
	BasePrice = 45000.0
	// Amplitude of the sine wobble added to the simulated price.
	Amplitude = 2000.0

	dateLayout = "2006-01-02"
)

// ErrInvalidEntry reports a raw entry whose value or timestamp cannot be used.
var ErrInvalidEntry = errors.New("sentiment: invalid entry")

// RawEntry is one row of the upstream index feed.
type RawEntry struct {
	Value          string `json:"value"`
	Classification string `json:"value_classification"`
	Timestamp      string `json:"timestamp"`
}

// Point is a single day of the derived series. SyntheticPrice is simulated
// from the score and never reflects market data.
type Point struct {
	Date           string  `json:"date"`
	Score          int     `json:"fearGreedScore"`
	Classification string  `json:"classification"`
	SyntheticPrice float64 `json:"syntheticPrice"`
}

// Time returns the point's date at UTC midnight.
func (p Point) Time() time.Time {
	t, err := time.Parse(dateLayout, p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Synthesize converts a newest-first feed into an oldest-first series.
func Synthesize(entries []RawEntry) ([]Point, error) {
	points := make([]Point, 0, len(entries))
	for i := range entries {
		entry := entries[len(entries)-1-i]

		score, err := parseScore(entry.Value)
		if err != nil {
			return nil, err
		}
		day, err := parseDay(entry.Timestamp)
		if err != nil {
			return nil, err
		}
		if n := len(points); n > 0 && points[n-1].Date >= day {
			return nil, fmt.Errorf("%w: date %s not after %s", ErrInvalidEntry, day, points[n-1].Date)
		}

		points = append(points, Point{
			Date:           day,
			Score:          score,
			Classification: entry.Classification,
			SyntheticPrice: SyntheticPrice(score, i),
		})
	}
	return points, nil
}

// SyntheticPrice derives the simulated price for a score at series position i.
func SyntheticPrice(score, i int) float64 {
	factor := float64(score)/100*0.5 + 0.75
	return math.Round(BasePrice*factor + math.Sin(float64(i)/5)*Amplitude)
}

func parseScore(raw string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: value %q: %v", ErrInvalidEntry, raw, err)
	}
	if score < MinScore || score > MaxScore {
		return 0, fmt.Errorf("%w: value %d out of range", ErrInvalidEntry, score)
	}
	return score, nil
}

func parseDay(raw string) (string, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: timestamp %q: %v", ErrInvalidEntry, raw, err)
	}
	if ts > 1_000_000_000_000 {
		ts = ts / 1000
	}
	return time.Unix(ts, 0).UTC().Format(dateLayout), nil
}
