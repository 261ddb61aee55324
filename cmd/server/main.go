package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cf_buddy/internal/api"
	"cf_buddy/internal/app/service"
	"cf_buddy/internal/domain/repository"
	"cf_buddy/internal/platform/cache"
	"cf_buddy/internal/platform/codeforces"
	"cf_buddy/internal/platform/config"
	"cf_buddy/internal/platform/database"
	"cf_buddy/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	envErr := config.Load()

	// 2. Initialize Logger
	logger.Init(config.AppConfig.LogMode)
	defer logger.Sync()
	switch {
	case errors.Is(envErr, fs.ErrNotExist):
		logger.Log.Info("No .env file found, relying on environment variables")
	case envErr != nil:
		logger.Log.Warn("Could not read .env file, relying on environment variables", zap.Error(envErr))
	}
	logger.Log.Info("Configuration loaded", zap.String("log_mode", config.AppConfig.LogMode))

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, database.DB); err != nil {
		schemaCancel()
		logger.Log.Fatal("Could not prepare schema", zap.Error(err))
	}
	schemaCancel()

	// 4. Initialize Redis (optional snapshot store)
	cache.ConnectRedis()
	defer cache.CloseRedis()
	var store cache.Store
	if cache.RDB != nil {
		store = cache.NewRedisStore(cache.RDB, "cf_buddy:")
	}

	// 5. Initialize Codeforces Client
	cf := codeforces.NewClient(codeforces.Options{
		BaseURL:         config.AppConfig.CodeforcesAPIURL,
		Key:             config.AppConfig.CodeforcesKey,
		Secret:          config.AppConfig.CodeforcesSecret,
		Timeout:         config.AppConfig.UpstreamTimeout,
		SubmissionCount: config.AppConfig.SubmissionCount,
	})

	// 6. Initialize Repositories
	recordRepo := repository.NewPgDailyRecordRepository(database.DB)

	// 7. Initialize Services
	loc, err := time.LoadLocation(config.AppConfig.DefaultTimezone)
	if err != nil {
		logger.Log.Warn("Unknown default timezone, using UTC",
			zap.String("timezone", config.AppConfig.DefaultTimezone), zap.Error(err))
		loc = time.UTC
	}
	corpusService := service.NewCorpusService(cf, cache.SnapshotConfig{
		Name:  "problem-corpus",
		TTL:   config.AppConfig.CorpusTTL,
		Store: store,
	})
	referenceService := service.NewReferenceService(cf,
		config.AppConfig.ReferenceHandles, config.AppConfig.ReferenceFetchConcurrency,
		cache.SnapshotConfig{
			Name:  "reference-index",
			TTL:   config.AppConfig.ReferenceTTL,
			Store: store,
		})
	dppService := service.NewDPPService(recordRepo, corpusService, referenceService, cf, loc)
	analyticsService := service.NewAnalyticsService(cf, cf, loc)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(dppService, analyticsService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Log.Info("Server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Could not listen", zap.String("port", config.AppConfig.APIPort), zap.Error(err))
		}
	}()

	<-stop

	logger.Log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
		return
	}
	logger.Log.Info("Server stopped gracefully")
}
