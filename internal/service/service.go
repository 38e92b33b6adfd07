package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kavya-jain14/sentiment-tracker/internal/alerting"
	"github.com/kavya-jain14/sentiment-tracker/internal/config"
	"github.com/kavya-jain14/sentiment-tracker/internal/scheduler"
	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
	"github.com/kavya-jain14/sentiment-tracker/internal/storage"
)

// Service drives periodic tracker refreshes, archives live series and
// raises band-change alerts.
type Service struct {
	tracker    *Tracker
	scheduler  *scheduler.Scheduler
	store      storage.ReadingStore
	alertStore storage.AlertStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	channels []string
	alertsOn bool
	locker   storage.AdvisoryLocker
	lockKey  int64

	mu        sync.Mutex
	alertedOn string
}

// New constructs the refresh service. store, alertStore and notifier may be nil.
func New(cfg *config.Config, tracker *Tracker, sched *scheduler.Scheduler, store storage.ReadingStore, alertStore storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		tracker:    tracker,
		scheduler:  sched,
		store:      store,
		alertStore: alertStore,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		channels:   cfg.Alerting.Channels,
		alertsOn:   cfg.Alerting.Enabled,
		locker:     locker,
		lockKey:    cfg.Scheduler.AdvisoryLockKey,
	}
}

// Snapshot returns the tracker's current state.
func (s *Service) Snapshot() *Snapshot {
	return s.tracker.Snapshot()
}

// Run begins the refresh loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.Refresh)
}

// Refresh 执行单次刷新：加载、归档、档位变化告警。
func (s *Service) Refresh(ctx context.Context, slot time.Time) error {
	_, err := s.refresh(ctx, slot)
	return err
}

// Load runs an on-demand refresh and returns the published snapshot.
// A live series is archived and checked for a band change like a scheduled one.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	return s.refresh(ctx, time.Now().UTC())
}

func (s *Service) refresh(ctx context.Context, slot time.Time) (*Snapshot, error) {
	snap, err := s.tracker.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Simulated {
		s.logger.Debug().Time("slot", slot).Msg("fallback series is not archived or alerted")
		return snap, nil
	}

	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return snap, err
	}
	if !proceed {
		s.logger.Debug().Time("slot", slot).Msg("skip archive because advisory lock held elsewhere")
		return snap, nil
	}
	if unlock != nil {
		defer unlock()
	}

	s.archive(ctx, snap.Series)
	s.checkBandChange(ctx, snap)
	return snap, nil
}

func (s *Service) archive(ctx context.Context, series []sentiment.Point) {
	if s.store == nil || len(series) == 0 {
		return
	}
	readings := make([]storage.Reading, len(series))
	for i, p := range series {
		readings[i] = storage.ReadingFromPoint(p)
	}
	if err := s.store.UpsertReadings(ctx, readings); err != nil {
		s.logger.Error().Err(err).Int("rows", len(readings)).Msg("failed to archive readings")
		return
	}
	s.logger.Info().Int("rows", len(readings)).Str("latest", series[len(series)-1].Date).Msg("readings archived")
}

// BandChange describes the latest point moving into a new band.
type BandChange struct {
	Point sentiment.Point
	From  sentiment.Category
	To    sentiment.Category
}

// DetectBandChange compares the two newest points of a series.
func DetectBandChange(series []sentiment.Point) (BandChange, bool) {
	if len(series) < 2 {
		return BandChange{}, false
	}
	prev, latest := series[len(series)-2], series[len(series)-1]
	from, to := sentiment.Classify(prev.Score), sentiment.Classify(latest.Score)
	if from.Name == to.Name {
		return BandChange{}, false
	}
	return BandChange{Point: latest, From: from, To: to}, true
}

func (s *Service) checkBandChange(ctx context.Context, snap *Snapshot) {
	if !s.alertsOn || s.notifier == nil {
		return
	}
	change, ok := DetectBandChange(snap.Series)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alertedOn == change.Point.Date {
		return
	}

	logger := s.logger.With().Str("day", change.Point.Date).Logger()

	// the band_alerts row claims the day; it is released again if the send fails
	claimed := false
	if s.alertStore != nil {
		record := storage.AlertRecord{
			Day:      change.Point.Time(),
			Score:    change.Point.Score,
			FromBand: change.From.Name,
			ToBand:   change.To.Name,
			Channels: s.channels,
		}
		_, inserted, err := s.alertStore.InsertAlert(ctx, record)
		switch {
		case err != nil:
			logger.Error().Err(err).Msg("failed to persist alert record")
		case !inserted:
			logger.Debug().Msg("alert already sent for day")
			s.alertedOn = change.Point.Date
			return
		default:
			claimed = true
		}
	}

	note := alerting.Notification{
		Day:            change.Point.Time(),
		Score:          change.Point.Score,
		FromBand:       change.From.Name,
		ToBand:         change.To.Name,
		SyntheticPrice: decimal.NewFromFloat(change.Point.SyntheticPrice),
		Simulated:      snap.Simulated,
		Channels:       s.channels,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		logger.Error().Err(err).Msg("failed to dispatch alert; will retry on next refresh")
		if claimed {
			if relErr := s.alertStore.DeleteAlert(ctx, change.Point.Time()); relErr != nil {
				logger.Error().Err(relErr).Msg("failed to release alert record; alert for day is lost")
			}
		}
		return
	}
	s.alertedOn = change.Point.Date
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
