package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavya-jain14/sentiment-tracker/internal/alerting"
	"github.com/kavya-jain14/sentiment-tracker/internal/config"
	"github.com/kavya-jain14/sentiment-tracker/internal/fetcher"
	"github.com/kavya-jain14/sentiment-tracker/internal/scheduler"
	"github.com/kavya-jain14/sentiment-tracker/internal/server"
	"github.com/kavya-jain14/sentiment-tracker/internal/service"
	"github.com/kavya-jain14/sentiment-tracker/internal/storage"
	"github.com/kavya-jain14/sentiment-tracker/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

// newSource builds the index client, optionally behind the redis cache.
// limit < 0 uses the configured limit; useCache=false always hits upstream.
func (a *App) newSource(limit int, useCache bool) (fetcher.SentimentSource, func(), error) {
	ua := a.Config.Source.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	alt := fetcher.NewAlternative(fetcher.AlternativeOptions{
		BaseURL:   a.Config.Source.BaseURL,
		Limit:     a.Config.Source.Limit,
		Timeout:   a.Config.Source.RequestTimeout,
		UserAgent: ua,
	}, a.Logger)
	if limit >= 0 {
		alt = alt.WithLimit(limit)
	}

	if !useCache || !a.Config.Cache.Enabled() {
		return alt, func() {}, nil
	}

	client, err := fetcher.NewRedisClient(a.Config.Cache.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if limit < 0 {
		limit = a.Config.Source.Limit
	}
	key := a.Config.CacheKey("fng", strconv.Itoa(limit))
	cached := fetcher.NewCached(alt, client, key, a.Config.Cache.TTL, a.Logger)
	return cached, func() { _ = client.Close() }, nil
}

func (a *App) newTracker() (*service.Tracker, func(), error) {
	source, closer, err := a.newSource(-1, true)
	if err != nil {
		return nil, nil, err
	}
	return service.NewTracker(source, a.Logger), closer, nil
}

func (a *App) newNotifier() alerting.Notifier {
	var notifiers alerting.Multi
	for _, channel := range a.Config.Alerting.Channels {
		switch channel {
		case "telegram":
			cfg := a.Config.Alerting.Telegram
			if !cfg.Enabled {
				continue
			}
			notifiers = append(notifiers, alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger))
		case "log":
			notifiers = append(notifiers, alerting.NewLogNotifier(a.Logger))
		default:
			a.Logger.Warn().Str("channel", channel).Msg("unknown alert channel ignored")
		}
	}
	if len(notifiers) == 0 {
		return nil
	}
	return notifiers
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running refresh service and HTTP API.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	tracker, closeSource, err := a.newTracker()
	if err != nil {
		return err
	}
	defer closeSource()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
		Immediate:    true,
	}, a.Logger)

	var readingStore storage.ReadingStore
	var alertStore storage.AlertStore
	if store != nil {
		readingStore = store
		alertStore = store
	}

	var notifier alerting.Notifier
	if a.Config.Alerting.Enabled {
		notifier = a.newNotifier()
	}

	svc := service.New(a.Config, tracker, sched, readingStore, alertStore, notifier, a.Logger)

	router := server.NewRouter(server.New(svc, a.Config.Chart), a.Logger)
	srv := server.NewServer(server.Options{
		Addr:            a.Config.HTTP.Addr,
		ShutdownTimeout: a.Config.HTTP.ShutdownTimeout,
	}, router, a.Logger)

	a.Logger.Info().Str("version", version.String()).Msg("starting sentiment tracker")

	svcErr := make(chan error, 1)
	go func() {
		svcErr <- svc.Run(ctx)
	}()

	err = srv.Serve(ctx)
	cancel()
	if runErr := <-svcErr; runErr != nil && !errors.Is(runErr, context.Canceled) {
		a.Logger.Error().Err(runErr).Msg("service terminated with error")
		return runErr
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("http server terminated with error")
		return err
	}

	a.Logger.Info().Msg("sentiment tracker stopped")
	return nil
}

// ExportOptions hold parameters for exporting a series.
type ExportOptions struct {
	From         *time.Time
	To           *time.Time
	Source       string
	PNGPath      string
	CSVPath      string
	SVGPath      string
	GaugeSVGPath string
	MaxPoints    int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Stored bool
	Alerts bool
}

// BackfillOptions configure the backfill job.
type BackfillOptions struct {
	Limit  int
	DryRun bool
}

const (
	SourceLive  = "live"
	SourceStore = "store"
)
