package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavya-jain14/sentiment-tracker/internal/fetcher"
	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

// ErrLoadInProgress is returned when a load is requested while another runs.
var ErrLoadInProgress = errors.New("service: load already in progress")

// Phase is the tracker state.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// Snapshot is an immutable view of the tracker state. Series is shared
// between readers and must not be modified.
type Snapshot struct {
	Phase     Phase
	Series    []sentiment.Point
	Advisory  string
	Simulated bool
	LoadedAt  time.Time
}

// Latest returns the newest point, or false when the series is empty.
func (s *Snapshot) Latest() (sentiment.Point, bool) {
	if s == nil || len(s.Series) == 0 {
		return sentiment.Point{}, false
	}
	return s.Series[len(s.Series)-1], true
}

// GaugeReading is the latest point prepared for the gauge renderer.
type GaugeReading struct {
	Score          int                `json:"score"`
	Category       sentiment.Category `json:"category"`
	Angle          float64            `json:"angle"`
	Date           string             `json:"date"`
	Classification string             `json:"classification"`
	SyntheticPrice float64            `json:"syntheticPrice"`
	Simulated      bool               `json:"simulated"`
	Advisory       string             `json:"advisory,omitempty"`
}

// Gauge classifies and angles the latest point.
func (s *Snapshot) Gauge() (GaugeReading, bool) {
	p, ok := s.Latest()
	if !ok {
		return GaugeReading{}, false
	}
	return GaugeReading{
		Score:          p.Score,
		Category:       sentiment.Classify(p.Score),
		Angle:          sentiment.GaugeAngle(p.Score),
		Date:           p.Date,
		Classification: p.Classification,
		SyntheticPrice: p.SyntheticPrice,
		Simulated:      s.Simulated,
		Advisory:       s.Advisory,
	}, true
}

// Tracker owns the current series. Each load replaces the snapshot wholesale.
type Tracker struct {
	source   fetcher.SentimentSource
	logger   zerolog.Logger
	now      func() time.Time
	current  atomic.Pointer[Snapshot]
	inFlight atomic.Bool
}

// NewTracker builds a tracker in the Loading phase.
func NewTracker(source fetcher.SentimentSource, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		source: source,
		logger: logger.With().Str("component", "tracker").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	t.current.Store(&Snapshot{Phase: PhaseLoading})
	return t
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() *Snapshot {
	return t.current.Load()
}

// Latest returns the newest point of the current series.
func (t *Tracker) Latest() (sentiment.Point, bool) {
	return t.Snapshot().Latest()
}

// Load performs one fetch and publishes a Ready snapshot. Fetch and payload
// failures publish the fallback series with an advisory instead of failing.
// A cancelled context leaves the previous snapshot in place.
func (t *Tracker) Load(ctx context.Context) (*Snapshot, error) {
	if !t.inFlight.CompareAndSwap(false, true) {
		return nil, ErrLoadInProgress
	}
	defer t.inFlight.Store(false)

	if t.Snapshot().Phase != PhaseReady {
		t.current.Store(&Snapshot{Phase: PhaseLoading})
	}

	series, err := t.fetchSeries(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	next := &Snapshot{Phase: PhaseReady, Series: series, LoadedAt: t.now()}
	if err != nil {
		t.logger.Warn().Err(err).Str("cause", failureKind(err)).Msg("live fetch failed; serving fallback series")
		next.Series = sentiment.FallbackSeries(next.LoadedAt)
		next.Advisory = sentiment.FallbackAdvisory
		next.Simulated = true
	} else {
		t.logger.Info().Int("points", len(series)).Msg("series loaded")
	}

	t.current.Store(next)
	return next, nil
}

func (t *Tracker) fetchSeries(ctx context.Context) ([]sentiment.Point, error) {
	entries, err := t.source.FetchEntries(ctx)
	if err != nil {
		return nil, err
	}
	return sentiment.Synthesize(entries)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, fetcher.ErrTransport):
		return "transport"
	case errors.Is(err, fetcher.ErrSchema), errors.Is(err, sentiment.ErrInvalidEntry):
		return "schema"
	default:
		return "unknown"
	}
}
