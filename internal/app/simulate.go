package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kavya-jain14/sentiment-tracker/internal/alerting"
	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/service"
)

// SimulateAlert 使用给定的前后两日分数模拟一次档位变化告警。
func (a *App) SimulateAlert(ctx context.Context, previous, current int) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	today := time.Now().UTC().Truncate(day)
	entries := []sentiment.RawEntry{
		staticEntry(current, today),
		staticEntry(previous, today.Add(-day)),
	}
	series, err := sentiment.Synthesize(entries)
	if err != nil {
		return err
	}

	change, ok := service.DetectBandChange(series)
	if !ok {
		return fmt.Errorf("%d 与 %d 属于同一档位 (%s)，不会触发告警", previous, current, sentiment.Classify(current).Name)
	}

	note := alerting.Notification{
		Day:            change.Point.Time(),
		Score:          change.Point.Score,
		FromBand:       change.From.Name,
		ToBand:         change.To.Name,
		SyntheticPrice: decimal.NewFromFloat(change.Point.SyntheticPrice),
		Simulated:      true,
		Channels:       a.Config.Alerting.Channels,
		AdditionalMsg:  "triggered by simulate-alert",
	}
	return notifier.Notify(ctx, note)
}

func staticEntry(score int, at time.Time) sentiment.RawEntry {
	return sentiment.RawEntry{
		Value:          strconv.Itoa(score),
		Classification: sentiment.Classify(score).Name,
		Timestamp:      strconv.FormatInt(at.Unix(), 10),
	}
}
