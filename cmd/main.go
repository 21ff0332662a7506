package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/ttfl/internal/adapters/http/api"
	"github.com/okian/ttfl/internal/adapters/http/site"
	"github.com/okian/ttfl/internal/adapters/http/swagger"
	"github.com/okian/ttfl/internal/adapters/repository"
	app "github.com/okian/ttfl/internal/app"
	"github.com/okian/ttfl/internal/config"
	"github.com/okian/ttfl/pkg/logger"
	"github.com/okian/ttfl/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.Init(loggerOptions(cfg)...); err != nil {
		os.Stderr.WriteString("failed to configure logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()
	metrics.Init(metricsOptions(cfg)...)

	svc, err := buildService(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// loggerOptions maps the log settings of cfg onto logger options.
func loggerOptions(cfg *config.Config) []logger.Option {
	opts := []logger.Option{logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)}
	if strings.EqualFold(cfg.LogOutput, "stderr") {
		opts = append(opts, logger.WithWriter(os.Stderr))
	}
	return opts
}

// metricsOptions maps the metrics settings of cfg onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithConstLabels(cfg.MetricsLabels),
	}
}

// buildService wires the dataset and pick store named by cfg into a started
// service. Without a dataset every date is a data gap; without a database
// path picks are kept in memory.
func buildService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	log := logger.Get()
	opts := []app.Option{
		app.WithLogger(log.Named("picker")),
		app.WithLockDays(cfg.LockDays),
		app.WithBaselineWindow(cfg.BaselineWindow),
		app.WithMinBaseline(cfg.MinBaseline),
		app.WithUseForm(cfg.UseForm),
		app.WithUseDefense(cfg.UseDefense),
		app.WithIgnoreLocks(cfg.IgnoreLocks),
		app.WithMaxPlanDays(cfg.MaxPlanDays),
	}

	if cfg.DatasetPath != "" {
		ds, err := repository.LoadDataset(ctx, cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		for _, w := range ds.Warnings {
			log.Warn(ctx, "dataset warning", logger.String("path", cfg.DatasetPath), logger.String("warning", w))
		}
		log.Info(ctx, "dataset loaded",
			logger.String("path", cfg.DatasetPath),
			logger.Int("dates", len(ds.Dates())),
			logger.Int("players", ds.Players()),
			logger.Int("picks", len(ds.Picks)),
		)
		opts = append(opts, app.WithSlateSource(ds), app.WithHistory(ds.Picks))
	}

	var store repository.PickStore
	if cfg.PicksDBPath != "" {
		db, err := repository.OpenSQLite(ctx, cfg.PicksDBPath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "pick store opened", logger.String("path", db.Path()))
		store = db
		opts = append(opts, app.WithPickStore(store))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return svc, nil
}

// newHandler registers every route on a fresh mux behind the request id
// middleware.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithDefaultTop(cfg.DefaultTop),
		api.WithMaxPlanDays(cfg.MaxPlanDays),
	)
	apiServer.Register(ctx, mux)
	return api.RequestIDMiddleware(mux)
}

// startSystemMetricsUpdater periodically refreshes runtime gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes dataset gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	updateServiceMetrics(svc)
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond)
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	dates, _ := stats["scheduledDates"].(int)
	players, _ := stats["players"].(int)
	metrics.UpdateDatasetSize(dates, players)
}
