package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cabinbook/internal/api"
	"cabinbook/internal/config"
	"cabinbook/internal/database"
	"cabinbook/internal/domain"
	"cabinbook/internal/events"
	"cabinbook/internal/export"
	"cabinbook/internal/logging"
	"cabinbook/internal/metrics"
	"cabinbook/internal/repository"
	"cabinbook/internal/service"
	"cabinbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const identityTTL = 30 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()

	db, err := initDatabase(ctx, cfg, bus, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, identityRepo := initIdentityRepo(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	calendarSvc := service.NewCalendarService(db, &logger)
	bookingSvc := service.NewBookingService(db, cfg.Booking.MaxAdvanceDays, &logger)
	guestbookSvc := service.NewGuestbookService(db, identityRepo,
		cfg.Booking.GuestbookLimit,
		time.Duration(cfg.Booking.GuestbookWindowSec)*time.Second,
		&logger)
	identitySvc := service.NewIdentityService(db, identityRepo, &logger)
	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)

	live := service.NewLiveSnapshot(calendarSvc, bus,
		time.Duration(cfg.Booking.SnapshotTimeoutSec)*time.Second, &logger)
	now := time.Now()
	if err := live.SetMonth(ctx, now.Year(), now.Month()); err != nil {
		logger.Warn().Err(err).Msg("initial snapshot build failed")
	}
	defer live.Close()

	if cfg.Reconciler.Enabled {
		go startReconciler(ctx, cfg, db, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg, calendarSvc, bookingSvc, guestbookSvc, identitySvc, exporter, db, &logger)
	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
			return err
		}
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, bus events.Publisher, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	db.SetPublisher(bus)

	// Список администраторов живет в конфиге и синхронизируется при старте
	for _, admin := range cfg.Admins {
		if err := db.UpsertAdmin(ctx, admin.Name, admin.Phone); err != nil {
			logger.Error().Err(err).Str("admin", admin.Name).Msg("seed admin")
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func initIdentityRepo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.IdentityRepository) {
	fallback := repository.NewMemoryIdentityRepository(identityTTL)
	if cfg.Redis.Address == "" {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := repository.NewRedisIdentityRepository(redisClient, identityTTL)
	return redisClient, repository.NewFailoverIdentityRepository(primary, fallback, logger)
}

func startReconciler(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	interval, err := time.ParseDuration(cfg.Reconciler.Interval)
	if err != nil {
		logger.Error().Err(err).Str("interval", cfg.Reconciler.Interval).Msg("invalid reconciler interval")
		return
	}

	retryDelay := 2 * time.Second
	if cfg.Reconciler.RetryDelay != "" {
		if d, err := time.ParseDuration(cfg.Reconciler.RetryDelay); err == nil {
			retryDelay = d
		}
	}

	rec := worker.NewReconciler(db, interval, worker.RetryPolicy{
		MaxRetries:   cfg.Reconciler.MaxRetries,
		InitialDelay: retryDelay,
	}, logger)
	rec.Start(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	logger.Info().Msg("server stopped")
	return nil
}
