package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kavya-jain14/sentiment-tracker/internal/app"
)

var (
	backfillLimit  int
	backfillDryRun bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Archive the index history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backfillLimit < 0 {
			return fmt.Errorf("--limit cannot be negative")
		}

		opts := app.BackfillOptions{
			Limit:  backfillLimit,
			DryRun: backfillDryRun,
		}

		return getApp().Backfill(cmd.Context(), opts)
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillLimit, "limit", 0, "Days to fetch (0 = full history)")
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Run without writing to storage")
}
