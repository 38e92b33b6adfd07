package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kavya-jain14/sentiment-tracker/internal/app"
)

var (
	exportFrom      string
	exportTo        string
	exportSource    string
	exportPNGPath   string
	exportCSVPath   string
	exportSVGPath   string
	exportGaugePath string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the series as CSV, PNG or SVG",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Source:       exportSource,
			PNGPath:      exportPNGPath,
			CSVPath:      exportCSVPath,
			SVGPath:      exportSVGPath,
			GaugeSVGPath: exportGaugePath,
			MaxPoints:    exportMaxPoints,
		}

		if exportFrom != "" {
			from, err := parseDay(exportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if exportTo != "" {
			to, err := parseDay(exportTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

// parseDay accepts a date (2006-01-02) or an RFC3339 timestamp.
func parseDay(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start day (YYYY-MM-DD or RFC3339, inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End day (YYYY-MM-DD or RFC3339, exclusive)")
	exportCmd.Flags().StringVar(&exportSource, "source", app.SourceLive, "Series source: live or store")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportSVGPath, "svg", "", "Path to write SVG chart")
	exportCmd.Flags().StringVar(&exportGaugePath, "gauge-svg", "", "Path to write SVG gauge of the latest day")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
}
