package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/storage"
)

// Backfill 拉取完整历史并写入归档。只写入真实数据，失败时不使用模拟序列。
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	if opts.Limit < 0 {
		return errors.New("--limit 不能为负数")
	}

	var store *storage.Store
	if opts.DryRun {
		a.Logger.Warn().Msg("回填 dry-run：不会写入数据库")
	} else {
		var closeStore func()
		var err error
		store, closeStore, err = a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database.dsn 未配置，无法回填")
		}
		if closeStore != nil {
			defer closeStore()
		}
	}

	source, closeSource, err := a.newSource(opts.Limit, false)
	if err != nil {
		return err
	}
	defer closeSource()

	entries, err := source.FetchEntries(ctx)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	series, err := sentiment.Synthesize(entries)
	if err != nil {
		return fmt.Errorf("synthesize history: %w", err)
	}
	if len(series) == 0 {
		a.Logger.Info().Msg("上游未返回任何数据")
		return nil
	}

	logger := a.Logger.With().
		Int("points", len(series)).
		Str("first", series[0].Date).
		Str("last", series[len(series)-1].Date).
		Logger()

	if store == nil {
		logger.Info().Msg("回填 dry-run 完成")
		return nil
	}

	readings := make([]storage.Reading, len(series))
	for i, p := range series {
		readings[i] = storage.ReadingFromPoint(p)
	}
	if err := store.UpsertReadings(ctx, readings); err != nil {
		return err
	}

	total, err := store.CountReadings(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int64("archived_total", total).Msg("回填完成")
	return nil
}
