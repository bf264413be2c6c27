package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"energidash/migrations"
	"energidash/pkg/cache"
	"energidash/pkg/config"
	"energidash/pkg/database"
	"energidash/pkg/logger"
	"energidash/pkg/metrics"
	"energidash/pkg/ratelimit"
	"energidash/services/dashboard-svc/internal/handlers"
	"energidash/services/dashboard-svc/internal/loader"
	"energidash/services/dashboard-svc/internal/middleware"
	"energidash/services/dashboard-svc/internal/repository"
	"energidash/services/dashboard-svc/internal/service"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		logger.Init("error")
		logger.Fatal("Failed to load config", "error", err)
	}

	// Инициализируем логгер
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	logger.Log.Info("Starting Dashboard Service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// Инициализируем метрики
	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.App.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Репозиторий снапшотов: in-memory либо Postgres
	repos, err := repository.NewRepositories(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize repositories", "error", err)
	}
	defer repos.Close()

	if db := repos.DB(); db != nil && cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database,
			migrations.PostgresMigrations, "postgres"); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}
	}

	// Кэш объединённых таблиц
	appCache, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Fatal("Failed to initialize cache", "error", err)
	}
	defer func() { _ = appCache.Close() }()

	mergedCache := cache.NewMergedCache(appCache, cfg.Cache.DefaultTTL)

	// Сервис панели
	svc := service.NewDashboardService(
		repos.Datasets,
		loader.New(&cfg.Data),
		mergedCache,
		&cfg.Export,
	)

	// Первичная загрузка данных с диска
	if cfg.Data.ReloadOnStart {
		if result, err := svc.Reload(ctx); err != nil {
			logger.Log.Error("Initial dataset load failed", "error", err)
		} else {
			logger.Log.Info("Initial dataset loaded",
				"snapshot_id", result.SnapshotID,
				"buildings", result.Buildings,
				"consumption", result.Consumption,
				"climate", result.Climate,
			)
		}
	}

	// Создаём HTTP mux
	mux := http.NewServeMux()
	handlers.NewDashboardHandler(svc, cfg).RegisterRoutes(mux)

	// Health endpoints (обычный HTTP для k8s probes)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", handleReady(svc))

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// Собираем цепочку middleware
	mws := []middleware.Middleware{
		middleware.Recovery(),
		middleware.Logging(),
	}
	if cfg.Metrics.Enabled {
		mws = append(mws, middleware.Metrics())
	}
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(ratelimit.FromConfig(&cfg.RateLimit))
		if err != nil {
			logger.Fatal("Failed to initialize rate limiter", "error", err)
		}
		defer func() { _ = limiter.Close() }()
		mws = append(mws, middleware.RateLimit(limiter, ratelimit.IPKeyExtractor))
	}
	if cfg.HTTP.CORS.Enabled {
		mws = append(mws, middleware.CORS(cfg.HTTP.CORS))
	}

	httpHandler := middleware.Chain(mux, mws...)

	// Создаём HTTP сервер с поддержкой HTTP/2
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      h2c.NewHandler(httpHandler, &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// Запускаем сервер
	go func() {
		logger.Log.Info("Dashboard listening",
			"port", cfg.HTTP.Port,
			"protocol", "HTTP/1.1 + H2C",
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown error", "error", err)
	}

	logger.Log.Info("Server stopped")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		// Логировать не можем - response уже начат отправляться
		return
	}
}

func handleReady(svc *service.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.Ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte(`{"ready":false}`)); err != nil {
				return
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"ready":true}`)); err != nil {
			return
		}
	}
}
