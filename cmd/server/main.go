package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Hezi12/rothschild-backoffice/internal/api"
	"github.com/Hezi12/rothschild-backoffice/internal/config"
	"github.com/Hezi12/rothschild-backoffice/internal/database"
	"github.com/Hezi12/rothschild-backoffice/internal/events"
	"github.com/Hezi12/rothschild-backoffice/internal/metrics"
	"github.com/Hezi12/rothschild-backoffice/internal/notify"
	"github.com/Hezi12/rothschild-backoffice/internal/pricing"
	"github.com/Hezi12/rothschild-backoffice/internal/reports"
	"github.com/Hezi12/rothschild-backoffice/internal/repository"
	"github.com/Hezi12/rothschild-backoffice/internal/service"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("BACKOFFICE_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var repo repository.Repository = db
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.PriceCacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		repo = repository.NewCachedRepository(db, rdb, cfg.PriceCacheTTL())
	}

	bus := events.NewEventBus()
	calc := pricing.NewCalculator(cfg.Pricing.VATRate)
	svc := service.New(repo, calc, bus, &logger)

	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		notifier, err := notify.New(cfg.Telegram.BotToken, cfg.Telegram.ManagerChatIDs, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier error")
		}
		notifier.Subscribe(bus)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup.Dir,
			time.Duration(cfg.Backup.IntervalHours)*time.Hour, cfg.Backup.RetentionDays, &logger)
		go backup.Start(ctx)
	}

	from, to := cfg.FetchWindow(time.Now())
	if err := svc.Refresh(ctx, from, to); err != nil {
		logger.Fatal().Err(err).Msg("initial snapshot load failed")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(svc, reports.NewGenerator(svc), api.Options{
		APIKey:            cfg.Server.APIKey,
		MaxRangeDays:      cfg.Calendar.MaxRangeDays,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, &logger)

	logger.Info().Int("port", cfg.Server.Port).Msg("back-office server started")
	if err := server.Serve(ctx, cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
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
