// cmd/bridge/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mackflow-bridge/internal/bridge"
	"mackflow-bridge/internal/common/config"
	"mackflow-bridge/internal/common/database"
	"mackflow-bridge/internal/common/logger"
	"mackflow-bridge/internal/common/observability"
	"mackflow-bridge/internal/connectors/cabme"
	"mackflow-bridge/internal/connectors/zpro"
	"mackflow-bridge/internal/dispatch"
	"mackflow-bridge/internal/server"
	"mackflow-bridge/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting bridge...",
		zap.String("sessionBackend", cfg.Session.Backend),
		zap.Int("port", cfg.Server.Port),
	)

	obs := observability.New("mackflow-bridge")
	defer obs.Shutdown()

	ttls := session.TTLs{
		Session:  time.Duration(cfg.Session.TTLHours) * time.Hour,
		Dispatch: time.Duration(cfg.Session.DispatchHours) * time.Hour,
	}

	// --- Session store ---
	var store session.Store
	if cfg.Session.IsRedis() {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis initialization")
		if err != nil {
			zapLog.Fatal("redis unavailable", zap.Error(err))
		}
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient.Client, ttls)
	} else {
		store = session.NewMemoryStore(ttls)
	}

	// --- Connectors and service wiring ---
	zproClient := zpro.NewClient(cfg.Zpro, log)
	cabmeClient := cabme.NewClient(cfg.Cabme, log)
	orch := dispatch.NewOrchestrator(store, zproClient, cabmeClient, log)
	svc := bridge.NewService(store, orch, obs, log)

	handler := server.NewHandler(svc, zproClient.ListTickets, cabmeClient.GetVehicleCategories, cfg.Server.AdminKey, log)
	router := server.NewRouter(handler, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Bridge stopped")
}
