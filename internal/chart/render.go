package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

const (
	backgroundHex = "#111827"
	plotAreaHex   = "#1f2937"
	scoreLineHex  = "#10b981"
	priceLineHex  = "#3b82f6"
	axisTextHex   = "#9ca3af"
	needleHex     = "#1f2937"

	zoneAlpha = 26 // ~10% opacity
	arcStep   = 2.0
)

// Painter draws scaled geometry through a go-chart renderer.
type Painter struct {
	provider gochart.RendererProvider
	scale    float64
}

// NewPainter returns a Painter; scale multiplies logical canvas units into
// output pixels.
func NewPainter(provider gochart.RendererProvider, scale float64) *Painter {
	if scale <= 0 {
		scale = 1
	}
	return &Painter{provider: provider, scale: scale}
}

// SVG paints at logical size.
func SVG() *Painter { return NewPainter(gochart.SVG, 1) }

// PNG paints at twice the logical size.
func PNG() *Painter { return NewPainter(gochart.PNG, 2) }

func (p *Painter) px(v float64) int { return int(math.Round(v * p.scale)) }

func (p *Painter) open(width, height float64) (gochart.Renderer, error) {
	r, err := p.provider(p.px(width), p.px(height))
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)
	return r, nil
}

// History draws the dual-axis chart: zone backdrop, score line, simulated
// price line, tick labels and legend.
func (p *Painter) History(w io.Writer, plot Plot) error {
	l := plot.Layout
	r, err := p.open(l.Width, l.Height)
	if err != nil {
		return err
	}

	p.fillRect(r, 0, 0, l.Width, l.Height, color(backgroundHex))
	p.fillRect(r, l.Padding, l.Padding, l.InnerWidth(), l.InnerHeight(), color(plotAreaHex))
	for _, z := range plot.Zones {
		p.fillRect(r, z.X, z.Y, z.Width, z.Height, color(z.Category.Hex).WithAlpha(zoneAlpha))
	}

	p.polyline(r, plot.Points, func(pt PlotPoint) float64 { return pt.YScore }, color(scoreLineHex), 2)
	p.polyline(r, plot.Points, func(pt PlotPoint) float64 { return pt.YPrice }, color(priceLineHex), 2)

	for _, t := range plot.ScoreTicks {
		p.text(r, t.Label, t.X-5, t.Y, 10, color(scoreLineHex), alignEnd)
	}
	for _, t := range plot.PriceTicks {
		p.text(r, t.Label, t.X+5, t.Y, 10, color(priceLineHex), alignStart)
	}
	for _, t := range plot.DateLabels {
		p.text(r, t.Label, t.X, t.Y+15, 9, color(axisTextHex), alignMiddle)
	}

	p.text(r, "F&G Score", l.Padding, 20, 12, color(scoreLineHex), alignStart)
	p.text(r, "Price (simulated)", l.Padding+80, 20, 12, color(priceLineHex), alignStart)

	return r.Save(w)
}

// NoData draws the empty-series placeholder.
func (p *Painter) NoData(w io.Writer, l Layout) error {
	r, err := p.open(l.Width, l.Height)
	if err != nil {
		return err
	}
	p.fillRect(r, 0, 0, l.Width, l.Height, color(backgroundHex))
	p.text(r, "No Historical Data Loaded for Charting.", l.Width/2, l.Height/2, 14, color("#f87171"), alignMiddle)
	return r.Save(w)
}

// Gauge draws the dial with one arc per band and the needle at score.
func (p *Painter) Gauge(w io.Writer, g sentiment.Gauge, score int) error {
	r, err := p.open(g.Width, g.Height)
	if err != nil {
		return err
	}

	for _, arc := range g.BandArcs() {
		r.ResetStyle()
		r.SetStrokeColor(color(arc.Category.Hex))
		r.SetStrokeWidth(20 * p.scale)
		for i, deg := range arcSteps(arc.From, arc.To) {
			x, y := g.PointAt(deg)
			if i == 0 {
				r.MoveTo(p.px(x), p.px(y))
				continue
			}
			r.LineTo(p.px(x), p.px(y))
		}
		r.Stroke()
	}

	tipX, tipY := g.NeedleTip(score)
	r.ResetStyle()
	r.SetStrokeColor(color(needleHex))
	r.SetStrokeWidth(4 * p.scale)
	r.MoveTo(p.px(g.CenterX), p.px(g.CenterY))
	r.LineTo(p.px(tipX), p.px(tipY))
	r.Stroke()

	p.disc(r, g.CenterX, g.CenterY, 8, color(needleHex))

	category := sentiment.Classify(score)
	p.text(r, fmt.Sprintf("%d", sentiment.Clamp(score)), g.CenterX, g.CenterY-30, 20, color(category.Hex), alignMiddle)
	p.text(r, strings.ToUpper(category.Name), g.CenterX, g.CenterY-14, 9, color(category.Hex), alignMiddle)

	return r.Save(w)
}

type align int

const (
	alignStart align = iota
	alignMiddle
	alignEnd
)

func (p *Painter) text(r gochart.Renderer, body string, x, y, size float64, c drawing.Color, a align) {
	r.ResetStyle()
	r.SetFontColor(c)
	r.SetFontSize(size * p.scale)
	px, py := p.px(x), p.px(y)
	switch a {
	case alignMiddle:
		px -= r.MeasureText(body).Width() / 2
	case alignEnd:
		px -= r.MeasureText(body).Width()
	}
	r.Text(body, px, py)
}

func (p *Painter) fillRect(r gochart.Renderer, x, y, w, h float64, c drawing.Color) {
	r.ResetStyle()
	r.SetFillColor(c)
	r.MoveTo(p.px(x), p.px(y))
	r.LineTo(p.px(x+w), p.px(y))
	r.LineTo(p.px(x+w), p.px(y+h))
	r.LineTo(p.px(x), p.px(y+h))
	r.Close()
	r.Fill()
}

func (p *Painter) polyline(r gochart.Renderer, pts []PlotPoint, y func(PlotPoint) float64, c drawing.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	r.ResetStyle()
	r.SetStrokeColor(c)
	r.SetStrokeWidth(width * p.scale)
	r.MoveTo(p.px(pts[0].X), p.px(y(pts[0])))
	for _, pt := range pts[1:] {
		r.LineTo(p.px(pt.X), p.px(y(pt)))
	}
	if len(pts) == 1 {
		// a lone point still gets a visible tick
		r.LineTo(p.px(pts[0].X)+1, p.px(y(pts[0])))
	}
	r.Stroke()
}

func (p *Painter) disc(r gochart.Renderer, cx, cy, radius float64, c drawing.Color) {
	const sides = 24
	r.ResetStyle()
	r.SetFillColor(c)
	for i := 0; i <= sides; i++ {
		rad := 2 * math.Pi * float64(i) / sides
		x, y := p.px(cx+radius*math.Cos(rad)), p.px(cy+radius*math.Sin(rad))
		if i == 0 {
			r.MoveTo(x, y)
			continue
		}
		r.LineTo(x, y)
	}
	r.Close()
	r.Fill()
}

func arcSteps(from, to float64) []float64 {
	steps := []float64{from}
	for deg := from + arcStep; deg < to; deg += arcStep {
		steps = append(steps, deg)
	}
	return append(steps, to)
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
