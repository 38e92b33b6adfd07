package storage

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

// Reading is one archived day of the index. SyntheticPrice is the simulated
// value for the row's position in the window it was archived with; Points
// recomputes it for the series being read.
type Reading struct {
	Day            time.Time
	Score          int
	Classification string
	Band           string
	SyntheticPrice decimal.Decimal
	CreatedAt      time.Time
}

// ReadingFromPoint converts a series point into an archive row.
func ReadingFromPoint(p sentiment.Point) Reading {
	return Reading{
		Day:            p.Time(),
		Score:          p.Score,
		Classification: p.Classification,
		Band:           sentiment.Classify(p.Score).Name,
		SyntheticPrice: decimal.NewFromFloat(p.SyntheticPrice),
	}
}

// Point converts the row back into a series point.
func (r Reading) Point() sentiment.Point {
	return sentiment.Point{
		Date:           r.Day.UTC().Format("2006-01-02"),
		Score:          r.Score,
		Classification: r.Classification,
		SyntheticPrice: r.SyntheticPrice.InexactFloat64(),
	}
}

// Points converts oldest-first rows into a series. Synthetic prices are
// derived from each row's position in readings, not taken from the archive.
func Points(readings []Reading) []sentiment.Point {
	points := make([]sentiment.Point, len(readings))
	for i, r := range readings {
		points[i] = r.Point()
		points[i].SyntheticPrice = sentiment.SyntheticPrice(r.Score, i)
	}
	return points
}

// Chronological returns rows ordered oldest first, such as the newest-first
// result of ListRecentReadings.
func Chronological(readings []Reading) []Reading {
	out := make([]Reading, len(readings))
	copy(out, readings)
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// AlertRecord captures an emitted band-change alert for de-duplication/auditing.
type AlertRecord struct {
	ID        int64
	Day       time.Time
	Score     int
	FromBand  string
	ToBand    string
	Channels  []string
	CreatedAt time.Time
}
