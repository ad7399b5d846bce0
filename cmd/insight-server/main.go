// cmd/insight-server/main.go
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

	"insight-service/internal/agents/booking"
	"insight-service/internal/agents/market"
	"insight-service/internal/agents/pricing"
	"insight-service/internal/agents/review"
	"insight-service/internal/api"
	"insight-service/internal/backend"
	"insight-service/internal/common/config"
	"insight-service/internal/common/database"
	"insight-service/internal/common/logger"
	"insight-service/internal/common/observability"
	"insight-service/internal/dispatch"
	"insight-service/pkg/registry"
)

const sessionTTL = 24 * time.Hour

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
			delay *= 2
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

	zapLog.Info("Starting insight server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Listing backend ---
	var dataClient backend.DataClient
	switch cfg.Backend.Mode {
	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
		dataClient = backend.NewPostgresClient(pg.DB, log)
	default:
		dataClient = backend.NewRESTClient(
			cfg.Backend.BaseURL,
			time.Duration(cfg.Backend.Timeout)*time.Millisecond,
			log,
		)
		zapLog.Info("Using REST backend", zap.String("base_url", cfg.Backend.BaseURL))
	}

	// --- Session store: Redis if configured, in-memory otherwise ---
	var sessions dispatch.SessionStore = dispatch.NewMemorySessionStore()
	if cfg.Database.Redis.Address != "" {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		if err := rdb.Ping(ctx); err != nil {
			zapLog.Fatal("redis ping failed", zap.Error(err))
		}
		defer rdb.Close()
		sessions = dispatch.NewRedisSessionStore(rdb.Client, sessionTTL, log)
		zapLog.Info("Redis connected successfully", zap.String("address", cfg.Database.Redis.Address))
	}

	// --- Analysis agents ---
	pricingAgent := pricing.NewAnalyzer(pricingConfig(cfg), dataClient, log)

	zeroOnEmpty := cfg.Actions.EmptyDataPolicy == "zero"
	marketCfg := market.DefaultConfig()
	marketCfg.ZeroOnEmpty = zeroOnEmpty
	marketAgent := market.NewAnalyzer(marketCfg, dataClient, log)

	reviewCfg := review.DefaultConfig()
	reviewCfg.ZeroOnEmpty = zeroOnEmpty
	reviewAgent := review.NewAnalyzer(reviewCfg, dataClient, log)

	bookingAgent := booking.NewAnalyzer(booking.DefaultConfig(), dataClient, log)

	// --- Dispatcher and HTTP surface ---
	actionRegistry := dispatch.NewRegistry(cfg.Actions)
	if cfg.Actions.RegistryPath != "" {
		doc, err := registry.LoadRegistry(cfg.Actions.RegistryPath)
		if err != nil {
			zapLog.Warn("action registry file not loaded",
				zap.String("path", cfg.Actions.RegistryPath), zap.Error(err))
		} else {
			actionRegistry.ApplyDocument(doc)
			zapLog.Info("action registry overlay applied",
				zap.String("path", cfg.Actions.RegistryPath), zap.String("version", doc.Version))
		}
	}

	dispatcher := dispatch.NewDispatcher(
		actionRegistry, sessions,
		pricingAgent, marketAgent, reviewAgent, bookingAgent,
		obs, log,
	)

	handler := api.NewHandler(dispatcher, actionRegistry, cfg.App.Name, cfg.App.Version, log)
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(handler, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}

// pricingConfig maps the YAML pricing section onto the analyzer config,
// keeping defaults for anything the file leaves unset.
func pricingConfig(cfg *config.Config) *pricing.Config {
	pc := pricing.DefaultConfig()
	if cfg.Pricing.MinAdjustPercent > 0 {
		pc.MinAdjustPercent = cfg.Pricing.MinAdjustPercent
	}
	if cfg.Pricing.MaxAdjustPercent > 0 {
		pc.MaxAdjustPercent = cfg.Pricing.MaxAdjustPercent
	}
	if cfg.Pricing.StrongDemandPercent > 0 {
		pc.StrongDemandPercent = cfg.Pricing.StrongDemandPercent
	}
	if cfg.Pricing.MildDemandPercent > 0 {
		pc.MildDemandPercent = cfg.Pricing.MildDemandPercent
	}
	if cfg.Pricing.DecreasePercent > 0 {
		pc.DecreasePercent = cfg.Pricing.DecreasePercent
	}
	if len(cfg.Pricing.HolidayWindows) > 0 {
		windows := make([]pricing.Window, 0, len(cfg.Pricing.HolidayWindows))
		for _, w := range cfg.Pricing.HolidayWindows {
			start, err := time.Parse("2006-01-02", w.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse("2006-01-02", w.End)
			if err != nil {
				continue
			}
			windows = append(windows, pricing.Window{Name: w.Name, Start: start, End: end})
		}
		pc.HolidayWindows = windows
	}
	return pc
}
