package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

// ErrNoData is returned when there is nothing to scale.
var ErrNoData = errors.New("chart: no data")

const (
	priceHeadroomLow  = 0.95
	priceHeadroomHigh = 1.05
	// flatPricePad widens the price domain when every price is zero.
	flatPricePad  = 1000.0
	dateLabelEach = 8
)

// ScoreTicks are the fixed left-axis values.
var ScoreTicks = []int{0, 25, 50, 75, 100}

// Layout is the logical canvas the plot is mapped into.
type Layout struct {
	Width   float64 `json:"width" mapstructure:"width"`
	Height  float64 `json:"height" mapstructure:"height"`
	Padding float64 `json:"padding" mapstructure:"padding"`
}

// DefaultLayout is a 600x300 canvas with 40 units of padding.
func DefaultLayout() Layout {
	return Layout{Width: 600, Height: 300, Padding: 40}
}

// InnerWidth is the plotting width inside the padding.
func (l Layout) InnerWidth() float64 { return l.Width - 2*l.Padding }

// InnerHeight is the plotting height inside the padding.
func (l Layout) InnerHeight() float64 { return l.Height - 2*l.Padding }

// Validate rejects canvases with no drawable area.
func (l Layout) Validate() error {
	if l.Padding < 0 {
		return fmt.Errorf("chart padding cannot be negative")
	}
	if l.InnerWidth() <= 0 || l.InnerHeight() <= 0 {
		return fmt.Errorf("chart %gx%g leaves no room inside padding %g", l.Width, l.Height, l.Padding)
	}
	return nil
}

// X positions the i-th of n points.
func (l Layout) X(i, n int) float64 {
	if n <= 1 {
		return l.Padding
	}
	return l.Padding + float64(i)/float64(n-1)*l.InnerWidth()
}

// YScore maps a score onto the fixed [0,100] axis, higher scores higher up.
func (l Layout) YScore(score float64) float64 {
	return l.Padding + l.InnerHeight() - (score-sentiment.MinScore)/(sentiment.MaxScore-sentiment.MinScore)*l.InnerHeight()
}

// ScoreHeight is the vertical extent of a score span.
func (l Layout) ScoreHeight(span float64) float64 {
	return span / (sentiment.MaxScore - sentiment.MinScore) * l.InnerHeight()
}

// PriceDomain is the data-dependent range of the right axis.
type PriceDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewPriceDomain adds 5% headroom below and above the observed prices.
func NewPriceDomain(prices []float64) PriceDomain {
	if len(prices) == 0 {
		return PriceDomain{Min: 0, Max: flatPricePad}
	}
	lo, hi := prices[0], prices[0]
	for _, p := range prices[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	d := PriceDomain{Min: lo * priceHeadroomLow, Max: hi * priceHeadroomHigh}
	if d.Max-d.Min <= 0 {
		d.Min -= flatPricePad
		d.Max += flatPricePad
	}
	return d
}

// Mid is the centre of the domain.
func (d PriceDomain) Mid() float64 { return (d.Min + d.Max) / 2 }

// YPrice maps a price onto the right axis of l.
func (l Layout) YPrice(d PriceDomain, price float64) float64 {
	return l.Padding + l.InnerHeight() - (price-d.Min)/(d.Max-d.Min)*l.InnerHeight()
}

// PlotPoint is one series point in canvas coordinates.
type PlotPoint struct {
	sentiment.Point
	X      float64 `json:"x"`
	YScore float64 `json:"yScore"`
	YPrice float64 `json:"yPrice"`
}

// Zone is a background band of the score axis.
type Zone struct {
	Category sentiment.Category `json:"category"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
}

// Tick is an axis label anchored at a canvas position.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Plot is a fully scaled historical chart.
type Plot struct {
	Layout      Layout      `json:"layout"`
	Prices      PriceDomain `json:"prices"`
	Points      []PlotPoint `json:"points"`
	Zones       []Zone      `json:"zones"`
	ScoreTicks  []Tick      `json:"scoreTicks"`
	PriceTicks  []Tick      `json:"priceTicks"`
	DateLabels  []Tick      `json:"dateLabels"`
	LabelStride int         `json:"labelStride"`
}

// Scale maps series onto l. The series is not modified.
func Scale(series []sentiment.Point, l Layout) (Plot, error) {
	if len(series) == 0 {
		return Plot{}, ErrNoData
	}
	if err := l.Validate(); err != nil {
		return Plot{}, err
	}

	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.SyntheticPrice
	}
	domain := NewPriceDomain(prices)

	n := len(series)
	plot := Plot{
		Layout: l,
		Prices: domain,
		Points: make([]PlotPoint, n),
		Zones:  Zones(l),
	}
	for i, p := range series {
		plot.Points[i] = PlotPoint{
			Point:  p,
			X:      l.X(i, n),
			YScore: l.YScore(float64(p.Score)),
			YPrice: l.YPrice(domain, p.SyntheticPrice),
		}
	}

	for _, s := range ScoreTicks {
		plot.ScoreTicks = append(plot.ScoreTicks, Tick{
			Value: float64(s),
			Label: fmt.Sprintf("%d", s),
			X:     l.Padding,
			Y:     l.YScore(float64(s)),
		})
	}
	for _, v := range []float64{domain.Min, domain.Mid(), domain.Max} {
		plot.PriceTicks = append(plot.PriceTicks, Tick{
			Value: v,
			Label: PriceLabel(v),
			X:     l.Width - l.Padding,
			Y:     l.YPrice(domain, v),
		})
	}

	plot.LabelStride = LabelStride(n)
	for i := 0; i < n; i += plot.LabelStride {
		plot.DateLabels = append(plot.DateLabels, Tick{
			Value: float64(i),
			Label: shortDate(series[i].Date),
			X:     plot.Points[i].X,
			Y:     l.Height - l.Padding,
		})
	}

	return plot, nil
}

// Zones returns the five fixed score bands as rectangles.
func Zones(l Layout) []Zone {
	zones := make([]Zone, 0, len(sentiment.Bands))
	for _, band := range sentiment.Bands {
		zones = append(zones, Zone{
			Category: band,
			X:        l.Padding,
			Y:        l.YScore(float64(band.Upper)),
			Width:    l.InnerWidth(),
			Height:   l.ScoreHeight(float64(band.Upper - band.Lower)),
		})
	}
	return zones
}

// LabelStride keeps roughly eight date labels on the x axis.
func LabelStride(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + dateLabelEach - 1) / dateLabelEach
}

// PriceLabel renders a price in thousands, e.g. $45K.
func PriceLabel(v float64) string {
	return fmt.Sprintf("$%.0fK", v/1000)
}

func shortDate(date string) string {
	if len(date) >= 10 {
		return date[5:10]
	}
	return date
}

// ScorePath is the SVG path of the score line.
func (p Plot) ScorePath() string {
	return p.path(func(pt PlotPoint) float64 { return pt.YScore })
}

// PricePath is the SVG path of the simulated price line.
func (p Plot) PricePath() string {
	return p.path(func(pt PlotPoint) float64 { return pt.YPrice })
}

func (p Plot) path(y func(PlotPoint) float64) string {
	var b strings.Builder
	for i, pt := range p.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s %g %g", cmd, pt.X, y(pt))
	}
	return b.String()
}
