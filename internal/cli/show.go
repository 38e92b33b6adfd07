package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kavya-jain14/sentiment-tracker/internal/app"
)

var (
	showLimit  int
	showStored bool
	showAlerts bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Load the index once and print the latest reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit:  showLimit,
			Stored: showStored,
			Alerts: showAlerts,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 10, "Number of recent days to display")
	showCmd.Flags().BoolVar(&showStored, "stored", false, "List archived readings instead of fetching")
	showCmd.Flags().BoolVar(&showAlerts, "alerts", false, "List recently sent band-change alerts")
	showCmd.MarkFlagsMutuallyExclusive("stored", "alerts")
}
