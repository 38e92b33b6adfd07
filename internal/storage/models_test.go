package storage

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

func TestReadingFromPoint(t *testing.T) {
	p := sentiment.Point{Date: "2024-03-02", Score: 76, Classification: "Greed", SyntheticPrice: 52123}
	r := ReadingFromPoint(p)

	if !r.Day.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("day = %v", r.Day)
	}
	if r.Band != "Extreme Greed" {
		t.Fatalf("band should come from the classifier, got %q", r.Band)
	}
	if r.Classification != "Greed" {
		t.Fatalf("upstream label should be kept, got %q", r.Classification)
	}
	if r.SyntheticPrice.StringFixed(2) != "52123.00" {
		t.Fatalf("price = %s", r.SyntheticPrice.StringFixed(2))
	}
	if back := r.Point(); back != p {
		t.Fatalf("round trip = %+v, want %+v", back, p)
	}
}

func TestPoints(t *testing.T) {
	series := sentiment.FallbackSeries(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
	readings := make([]Reading, len(series))
	for i, p := range series {
		readings[i] = ReadingFromPoint(p)
	}
	got := Points(readings)
	for i := range series {
		if got[i] != series[i] {
			t.Fatalf("point %d = %+v, want %+v", i, got[i], series[i])
		}
	}
}

func TestNilStoreNotConfigured(t *testing.T) {
	var s *Store
	if _, err := s.CountReadings(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
	if err := s.UpsertReadings(context.Background(), []Reading{{}}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
	if err := s.DeleteAlert(context.Background(), time.Now()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.ListRecentAlerts(context.Background(), 5); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
	s.Close()
}

// archiveWindow mimics an upsert of a daily window: rows keyed by day, later
// windows overwrite earlier ones.
func archiveWindow(archive map[string]Reading, start time.Time, scores []int) {
	n := len(scores)
	entries := make([]sentiment.RawEntry, n)
	for i := range entries {
		day := start.AddDate(0, 0, n-1-i)
		entries[i] = sentiment.RawEntry{
			Value:     strconv.Itoa(scores[n-1-i]),
			Timestamp: strconv.FormatInt(day.Unix(), 10),
		}
	}
	series, err := sentiment.Synthesize(entries)
	if err != nil {
		panic(err)
	}
	for _, p := range series {
		archive[p.Date] = ReadingFromPoint(p)
	}
}

func TestPointsPricesFollowReadPosition(t *testing.T) {
	archive := map[string]Reading{}
	mar1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	archiveWindow(archive, mar1, []int{50, 50, 50, 50, 50})
	archiveWindow(archive, mar1.AddDate(0, 0, 1), []int{50, 50, 50, 50, 50})

	stored := make([]Reading, 0, len(archive))
	for _, r := range archive {
		stored = append(stored, r)
	}
	got := Points(Chronological(stored))
	if len(got) != 6 {
		t.Fatalf("points = %d", len(got))
	}
	if got[0].Date != "2024-03-01" || got[5].Date != "2024-03-06" {
		t.Fatalf("order = %s..%s", got[0].Date, got[5].Date)
	}
	for i, p := range got {
		if want := sentiment.SyntheticPrice(p.Score, i); p.SyntheticPrice != want {
			t.Fatalf("price[%d] (%s) = %v, want %v", i, p.Date, p.SyntheticPrice, want)
		}
	}
	if got[1].SyntheticPrice != 45397 {
		t.Fatalf("second day price = %v, want 45397", got[1].SyntheticPrice)
	}
}

func TestChronological(t *testing.T) {
	newest := []Reading{
		{Day: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		{Day: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Day: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := Chronological(newest)
	if got[0].Day.Day() != 1 || got[2].Day.Day() != 3 {
		t.Fatalf("order = %v", got)
	}
	if newest[0].Day.Day() != 3 {
		t.Fatal("input must not be reordered")
	}
}
