package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aiPlanner/internal/config"
	"aiPlanner/internal/handlers"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/worker"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	storage   *Storage
	services  *Services
	sweeper   *worker.SessionSweeper
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	ApplyLocation(a.config)

	storage, err := OpenStorage(ctx, a.config)
	if err != nil {
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, storage.Close)

	services, err := NewServices(ctx, a.config, storage)
	if err != nil {
		return err
	}
	a.services = services

	if storage.SweepSessions {
		a.sweeper = worker.NewSessionSweeper(storage.Sessions, a.config.Auth.SweepSchedule)
	}

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           newHandler(a.config, storage, services),
		ReadHeaderTimeout: 10 * time.Second,
		// ответы модели приходят долго, поэтому запас сверх таймаута запроса
		WriteTimeout: a.config.Server.RequestTimeout + a.config.Enrichment.Timeout,
		IdleTimeout:  2 * time.Minute,
	}

	logger.Info("Приложение инициализировано",
		zap.String("addr", a.server.Addr),
		zap.String("storage", a.config.Storage.Type))
	return nil
}

func newHandler(cfg *config.Config, storage *Storage, services *Services) http.Handler {
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:        services.Users,
		Users:       services.Users,
		Tasks:       services.Tasks,
		Enrich:      services.Enrich,
		Health:      storage.Docs,
		Sessions:    services.Users,
		Location:    cfg.GetLocation(),
		RateLimit:   cfg.Server.RateLimit,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	return otelhttp.NewHandler(router, "ai-planner")
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if a.sweeper != nil {
		go func() {
			if err := a.sweeper.Start(workerCtx); err != nil {
				logger.Error("Worker: Очистка сессий не запущена", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("сервер остановлен: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	logger.Info("Сервер остановлен")
	return nil
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
