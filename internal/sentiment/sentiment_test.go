package sentiment

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "Extreme Fear"},
		{24, "Extreme Fear"},
		{25, "Fear"},
		{44, "Fear"},
		{45, "Neutral"},
		{54, "Neutral"},
		{55, "Greed"},
		{74, "Greed"},
		{75, "Extreme Greed"},
		{100, "Extreme Greed"},
		{-3, "Extreme Fear"},
		{140, "Extreme Greed"},
	}
	for _, tc := range cases {
		if got := Classify(tc.score).Name; got != tc.want {
			t.Errorf("Classify(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestBandsPartitionScoreRange(t *testing.T) {
	if Bands[0].Lower != MinScore || Bands[len(Bands)-1].Upper != MaxScore {
		t.Fatalf("bands do not span [%d,%d]", MinScore, MaxScore)
	}
	for i := 1; i < len(Bands); i++ {
		if Bands[i].Lower != Bands[i-1].Upper {
			t.Fatalf("gap or overlap between %q and %q", Bands[i-1].Name, Bands[i].Name)
		}
	}
	for s := MinScore; s <= MaxScore; s++ {
		matches := 0
		for j, b := range Bands {
			upperOK := s < b.Upper || (j == len(Bands)-1 && s == b.Upper)
			if s >= b.Lower && upperOK {
				matches++
				if Classify(s) != b {
					t.Fatalf("Classify(%d) = %q, band scan says %q", s, Classify(s).Name, b.Name)
				}
			}
		}
		if matches != 1 {
			t.Fatalf("score %d matched %d bands", s, matches)
		}
	}
}

func newestFirst(scores ...int) []RawEntry {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]RawEntry, len(scores))
	for i, s := range scores {
		day := start.AddDate(0, 0, len(scores)-1-i)
		entries[i] = RawEntry{
			Value:          strconv.Itoa(s),
			Classification: Classify(s).Name,
			Timestamp:      strconv.FormatInt(day.Unix(), 10),
		}
	}
	return entries
}

func TestSynthesizeReversesAndPreservesLength(t *testing.T) {
	in := newestFirst(62, 78, 55, 35)
	out, err := Synthesize(in)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	if out[0].Score != 35 || out[0].Date != "2024-03-01" {
		t.Fatalf("first point should come from the last entry, got %+v", out[0])
	}
	if out[len(out)-1].Score != 62 || out[len(out)-1].Date != "2024-03-04" {
		t.Fatalf("last point should come from the first entry, got %+v", out[len(out)-1])
	}
	for i := 1; i < len(out); i++ {
		if out[i].Date <= out[i-1].Date {
			t.Fatalf("dates not increasing at %d: %s <= %s", i, out[i].Date, out[i-1].Date)
		}
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	in := newestFirst(10, 90, 50, 49, 51, 0, 100)
	a, err := Synthesize(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Synthesize(in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("outputs differ:\n%+v\n%+v", a, b)
	}
}

func TestSynthesizePriceFormula(t *testing.T) {
	out, err := Synthesize(newestFirst(80, 50, 0))
	if err != nil {
		t.Fatal(err)
	}
	// i=0, score 0: 45000*0.75 + sin(0)*2000
	if out[0].SyntheticPrice != 33750 {
		t.Fatalf("price[0] = %v, want 33750", out[0].SyntheticPrice)
	}
	want1 := math.Round(45000*1.0 + math.Sin(0.2)*2000)
	if out[1].SyntheticPrice != want1 {
		t.Fatalf("price[1] = %v, want %v", out[1].SyntheticPrice, want1)
	}
	want2 := math.Round(45000*1.15 + math.Sin(0.4)*2000)
	if out[2].SyntheticPrice != want2 {
		t.Fatalf("price[2] = %v, want %v", out[2].SyntheticPrice, want2)
	}
}

func TestSynthesizeCarriesUpstreamLabel(t *testing.T) {
	in := []RawEntry{{Value: "50", Classification: "Greed", Timestamp: "1709251200"}}
	out, err := Synthesize(in)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Classification != "Greed" {
		t.Fatalf("label should be carried unchanged, got %q", out[0].Classification)
	}
}

func TestSynthesizeMillisecondTimestamp(t *testing.T) {
	in := []RawEntry{{Value: "50", Classification: "Neutral", Timestamp: "1709251200000"}}
	out, err := Synthesize(in)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Date != "2024-03-01" {
		t.Fatalf("date = %s", out[0].Date)
	}
}

func TestSynthesizeRejectsInvalidEntries(t *testing.T) {
	cases := map[string][]RawEntry{
		"non numeric":  {{Value: "abc", Timestamp: "1709251200"}},
		"out of range": {{Value: "101", Timestamp: "1709251200"}},
		"negative":     {{Value: "-1", Timestamp: "1709251200"}},
		"bad ts":       {{Value: "50", Timestamp: "yesterday"}},
		"oldest first": {
			{Value: "50", Timestamp: "1709251200"},
			{Value: "51", Timestamp: "1709337600"},
		},
	}
	for name, in := range cases {
		if _, err := Synthesize(in); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("%s: err = %v, want ErrInvalidEntry", name, err)
		}
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	out, err := Synthesize(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty series, got %d points", len(out))
	}
}

func TestFallbackSeries(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	entries := FallbackEntries(now)
	if len(entries) != 6 {
		t.Fatalf("len(entries) = %d", len(entries))
	}
	if entries[0].Value != "62" || entries[5].Value != "45" {
		t.Fatalf("entries should be newest first, got %+v", entries)
	}

	series := FallbackSeries(now)
	want := []int{45, 20, 35, 55, 78, 62}
	if len(series) != len(want) {
		t.Fatalf("len(series) = %d", len(series))
	}
	for i, p := range series {
		if p.Score != want[i] {
			t.Fatalf("series[%d].Score = %d, want %d", i, p.Score, want[i])
		}
	}
	if series[0].Date != "2024-05-05" || series[5].Date != "2024-05-10" {
		t.Fatalf("unexpected date span %s..%s", series[0].Date, series[5].Date)
	}
	if series[4].Classification != "Extreme Greed" {
		t.Fatalf("label = %q", series[4].Classification)
	}
}

func TestGaugeAngle(t *testing.T) {
	if got := GaugeAngle(0); got != -90 {
		t.Fatalf("GaugeAngle(0) = %v", got)
	}
	if got := GaugeAngle(50); got != 0 {
		t.Fatalf("GaugeAngle(50) = %v", got)
	}
	if got := GaugeAngle(100); got != 90 {
		t.Fatalf("GaugeAngle(100) = %v", got)
	}
	prev := GaugeAngle(0)
	for s := 1; s <= 100; s++ {
		cur := GaugeAngle(s)
		if cur < prev {
			t.Fatalf("GaugeAngle decreased at %d", s)
		}
		prev = cur
	}
}

func TestGaugeGeometry(t *testing.T) {
	g := DefaultGauge()
	x, y := g.NeedleTip(50)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-10) > 1e-9 {
		t.Fatalf("needle at 50 should point up, got (%v,%v)", x, y)
	}
	x, y = g.NeedleTip(0)
	if math.Abs(x-10) > 1e-9 || math.Abs(y-100) > 1e-9 {
		t.Fatalf("needle at 0 should point left, got (%v,%v)", x, y)
	}

	arcs := g.BandArcs()
	if len(arcs) != len(Bands) {
		t.Fatalf("len(arcs) = %d", len(arcs))
	}
	if arcs[0].From != -90 || arcs[len(arcs)-1].To != 90 {
		t.Fatalf("arcs should span the dial: %+v", arcs)
	}
	for i := 1; i < len(arcs); i++ {
		if arcs[i].From != arcs[i-1].To {
			t.Fatalf("arcs %d and %d are not contiguous", i-1, i)
		}
	}
}
