package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/storage"
)

var (
	advisoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
)

func bandStyle(c sentiment.Category) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex))
}

// Show prints the latest reading and recent points.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Alerts {
		return a.showAlerts(ctx, opts.Limit)
	}
	if opts.Stored {
		return a.showStored(ctx, opts.Limit)
	}

	tracker, closeSource, err := a.newTracker()
	if err != nil {
		return err
	}
	defer closeSource()

	snap, err := tracker.Load(ctx)
	if err != nil {
		return err
	}

	if snap.Advisory != "" {
		fmt.Fprintln(a.Out, advisoryStyle.Render(snap.Advisory))
	}

	reading, ok := snap.Gauge()
	if !ok {
		fmt.Fprintln(a.Out, "no data")
		return nil
	}

	style := bandStyle(reading.Category)
	fmt.Fprintf(a.Out, "%s %s %s\n",
		headerStyle.Render("Fear & Greed"),
		style.Render(fmt.Sprintf("%d", reading.Score)),
		style.Render(strings.ToUpper(reading.Category.Name)),
	)
	fmt.Fprintln(a.Out, gaugeBar(reading.Score))
	fmt.Fprintln(a.Out, dimStyle.Render(fmt.Sprintf("%s  needle %+.1f°  price $%.0f (simulated)", reading.Date, reading.Angle, reading.SyntheticPrice)))
	fmt.Fprintln(a.Out)

	return a.writePoints(newestFirst(snap.Series, opts.Limit))
}

func (a *App) showStored(ctx context.Context, limit int) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show stored readings")
	}
	if closeStore != nil {
		defer closeStore()
	}

	readings, err := store.ListRecentReadings(ctx, limit)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		fmt.Fprintln(a.Out, "no readings found")
		return nil
	}
	points := storage.Points(storage.Chronological(readings))
	return a.writePoints(newestFirst(points, 0))
}

func (a *App) showAlerts(ctx context.Context, limit int) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show alert history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	alerts, err := store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return err
	}
	return a.writeAlerts(alerts)
}

func (a *App) writeAlerts(alerts []storage.AlertRecord) error {
	if len(alerts) == 0 {
		fmt.Fprintln(a.Out, "no alerts recorded")
		return nil
	}
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Day\tScore\tFrom\tTo\tChannels\tSent at")
	for _, rec := range alerts {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%s\t%s\n",
			rec.Day.UTC().Format("2006-01-02"),
			rec.Score,
			rec.FromBand,
			rec.ToBand,
			strings.Join(rec.Channels, ","),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return writer.Flush()
}

func (a *App) writePoints(points []sentiment.Point) error {
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tScore\tBand\tUpstream label\tPrice (simulated)")
	for _, p := range points {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%.0f\n",
			p.Date,
			p.Score,
			sentiment.Classify(p.Score).Name,
			sanitizeInline(p.Classification),
			p.SyntheticPrice,
		)
	}
	return writer.Flush()
}

// gaugeBar renders the score as a 50-cell bar coloured by band.
func gaugeBar(score int) string {
	const cells = 50
	filled := sentiment.Clamp(score) * cells / sentiment.MaxScore
	var b strings.Builder
	for i := 0; i < cells; i++ {
		c := sentiment.Classify(i * sentiment.MaxScore / cells)
		glyph := "░"
		if i < filled {
			glyph = "█"
		}
		b.WriteString(bandStyle(c).Render(glyph))
	}
	return b.String()
}

// newestFirst returns at most limit points, newest first.
func newestFirst(series []sentiment.Point, limit int) []sentiment.Point {
	if limit <= 0 || limit > len(series) {
		limit = len(series)
	}
	out := make([]sentiment.Point, 0, limit)
	for i := len(series) - 1; i >= len(series)-limit; i-- {
		out = append(out, series[i])
	}
	return out
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
