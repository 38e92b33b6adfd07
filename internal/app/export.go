package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kavya-jain14/sentiment-tracker/internal/chart"
	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/storage"
)

const day = 24 * time.Hour

// Export renders a live or archived series as CSV, PNG and/or SVG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" && opts.SVGPath == "" && opts.GaugeSVGPath == "" {
		return errors.New("at least one of --csv, --png, --svg or --gauge-svg must be provided")
	}
	if opts.Source == "" {
		opts.Source = SourceLive
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	series, err := a.exportSeries(ctx, opts)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		a.Logger.Info().Str("source", opts.Source).Msg("no points found for export window")
		return nil
	}

	downsampled := downsamplePoints(series, opts.MaxPoints)
	a.Logger.Info().Int("total", len(series)).Int("exported", len(downsampled)).Msg("exporting points")

	if opts.CSVPath != "" {
		if err := writePointsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" || opts.SVGPath != "" {
		plot, err := chart.Scale(downsampled, a.Config.Chart)
		if err != nil {
			return err
		}
		if opts.PNGPath != "" {
			if err := writeFile(opts.PNGPath, func(w io.Writer) error { return chart.PNG().History(w, plot) }); err != nil {
				return err
			}
		}
		if opts.SVGPath != "" {
			if err := writeFile(opts.SVGPath, func(w io.Writer) error { return chart.SVG().History(w, plot) }); err != nil {
				return err
			}
		}
	}

	if opts.GaugeSVGPath != "" {
		latest := downsampled[len(downsampled)-1]
		if err := writeFile(opts.GaugeSVGPath, func(w io.Writer) error {
			return chart.SVG().Gauge(w, sentiment.DefaultGauge(), latest.Score)
		}); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) exportSeries(ctx context.Context, opts ExportOptions) ([]sentiment.Point, error) {
	switch opts.Source {
	case SourceLive:
		tracker, closeSource, err := a.newTracker()
		if err != nil {
			return nil, err
		}
		defer closeSource()

		snap, err := tracker.Load(ctx)
		if err != nil {
			return nil, err
		}
		if snap.Simulated {
			a.Logger.Warn().Msg(snap.Advisory)
		}
		return filterWindow(snap.Series, opts.From, opts.To), nil

	case SourceStore:
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, errors.New("database not configured; cannot export stored readings")
		}
		if closeStore != nil {
			defer closeStore()
		}

		to := time.Now().UTC().Truncate(day).Add(day)
		if opts.To != nil {
			to = opts.To.UTC()
		}
		from := to.Add(-time.Duration(opts.MaxPoints) * day)
		if opts.From != nil {
			from = opts.From.UTC()
		}
		if !from.Before(to) {
			return nil, errors.New("from must be before to")
		}

		readings, err := store.ListReadingsBetween(ctx, from, to, opts.MaxPoints)
		if err != nil {
			return nil, err
		}
		return storage.Points(readings), nil

	default:
		return nil, fmt.Errorf("unknown export source %q (want %s or %s)", opts.Source, SourceLive, SourceStore)
	}
}

// filterWindow keeps points with from <= day < to.
func filterWindow(series []sentiment.Point, from, to *time.Time) []sentiment.Point {
	if from == nil && to == nil {
		return series
	}
	out := make([]sentiment.Point, 0, len(series))
	for _, p := range series {
		t := p.Time()
		if from != nil && t.Before(from.UTC()) {
			continue
		}
		if to != nil && !t.Before(to.UTC()) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func downsamplePoints(points []sentiment.Point, max int) []sentiment.Point {
	if max <= 0 || len(points) <= max {
		return points
	}
	if max == 1 {
		return points[len(points)-1:]
	}

	result := make([]sentiment.Point, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(points) {
			idx = len(points) - 1
		}
		result = append(result, points[idx])
	}
	return result
}

func writePointsCSV(path string, points []sentiment.Point) error {
	return writeFile(path, func(w io.Writer) error {
		writer := csv.NewWriter(w)

		header := []string{"date", "score", "band", "upstream_classification", "synthetic_price_simulated"}
		if err := writer.Write(header); err != nil {
			return err
		}

		for _, p := range points {
			record := []string{
				p.Date,
				strconv.Itoa(p.Score),
				sentiment.Classify(p.Score).Name,
				p.Classification,
				strconv.FormatFloat(p.SyntheticPrice, 'f', 0, 64),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}

		writer.Flush()
		return writer.Error()
	})
}

func writeFile(path string, write func(w io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
