// cmd/search-service/main.go
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

	"trial-search/internal/common/config"
	"trial-search/internal/common/database"
	"trial-search/internal/common/logger"
	"trial-search/internal/search/execlog"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
	"trial-search/internal/search/options"
	"trial-search/internal/search/persistence"
	"trial-search/internal/search/records"
	"trial-search/internal/server"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting search service...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Field catalog ---
	registry := fields.Default()
	if cfg.Search.FieldCatalogPath != "" {
		registry, err = fields.LoadFromFile(cfg.Search.FieldCatalogPath)
		if err != nil {
			zapLog.Fatal("field catalog load failed", zap.Error(err))
		}
	}
	resolver := operators.NewResolver(registry)

	// --- Init Redis with retry (local saved-query and history store) ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Record search backend ---
	var searcher records.Searcher
	switch cfg.Search.Backend {
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

		searcher = records.NewSQLRepository(pg.DB, registry, cfg.Search.RecordTable, log)

	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		searcher = records.NewElasticRepository(esClient.Client, registry, cfg.Search.Index, log)

	default:
		searcher = records.NewMemoryRepository(registry, nil)
		zapLog.Info("Using in-memory record backend")
	}

	// --- Saved queries and execution history ---
	localStore := persistence.NewRedisStore(redisClient.Client, cfg.Search.NamespacePrefix)
	remoteStore := persistence.NewRemoteQueryClient(cfg.Portal)
	queryService := persistence.NewService(remoteStore, localStore, log)
	history := execlog.New(localStore, log)

	// --- Dropdown option source ---
	optionSource := options.NewSource(cfg.Portal, log)
	for category, opts := range options.DefaultFallbacks() {
		optionSource.RegisterFallback(category, opts)
	}

	// --- HTTP server ---
	handler := server.Handler(server.Dependencies{
		Registry:   registry,
		Resolver:   resolver,
		Options:    optionSource,
		Queries:    queryService,
		History:    history,
		Searcher:   searcher,
		MaxResults: cfg.Search.MaxResults,
	}, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Search service stopped")
}
