package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

var (
	simulateFrom int
	simulateTo   int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次情绪档位变化并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, v := range []int{simulateFrom, simulateTo} {
			if v < sentiment.MinScore || v > sentiment.MaxScore {
				return errors.New("--from 与 --to 必须在 0-100 之间")
			}
		}
		return getApp().SimulateAlert(cmd.Context(), simulateFrom, simulateTo)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateFrom, "from", 50, "前一日分数")
	simulateCmd.Flags().IntVar(&simulateTo, "to", 80, "当日分数")
}
