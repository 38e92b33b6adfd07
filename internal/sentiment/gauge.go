package sentiment

import "math"

// GaugeAngle maps a score onto a needle rotation in degrees, -90 at 0 and
// +90 at 100. Out-of-range scores are clamped.
func GaugeAngle(score int) float64 {
	return -90 + float64(Clamp(score))/100*180
}

// Gauge describes the semicircular dial. The needle at rotation 0 points
// straight up from the centre.
type Gauge struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
	Needle  float64 `json:"needle"`
}

// DefaultGauge is the 200x110 dial.
func DefaultGauge() Gauge {
	return Gauge{Width: 200, Height: 110, CenterX: 100, CenterY: 100, Radius: 90, Needle: 90}
}

// Arc is the angular extent of one band on the dial.
type Arc struct {
	Category Category `json:"category"`
	From     float64  `json:"from"`
	To       float64  `json:"to"`
}

// NeedleTip returns the end point of the needle for score.
func (g Gauge) NeedleTip(score int) (x, y float64) {
	rad := GaugeAngle(score) * math.Pi / 180
	return g.CenterX + g.Needle*math.Sin(rad), g.CenterY - g.Needle*math.Cos(rad)
}

// PointAt returns the point on the dial rim at the given rotation.
func (g Gauge) PointAt(deg float64) (x, y float64) {
	rad := deg * math.Pi / 180
	return g.CenterX + g.Radius*math.Sin(rad), g.CenterY - g.Radius*math.Cos(rad)
}

// BandArcs returns one arc per band, left to right.
func (g Gauge) BandArcs() []Arc {
	arcs := make([]Arc, 0, len(Bands))
	for _, band := range Bands {
		arcs = append(arcs, Arc{
			Category: band,
			From:     GaugeAngle(band.Lower),
			To:       GaugeAngle(band.Upper),
		})
	}
	return arcs
}
