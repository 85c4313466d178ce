package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jian131/agent-bds/internal/adapters/extractor"
	"github.com/jian131/agent-bds/internal/adapters/fetcher"
	"github.com/jian131/agent-bds/internal/adapters/llm"
	logger_adapter "github.com/jian131/agent-bds/internal/adapters/logger"
	postgres_adapter "github.com/jian131/agent-bds/internal/adapters/postgres"
	rabbitmq_adapter "github.com/jian131/agent-bds/internal/adapters/rabbitmq"
	"github.com/jian131/agent-bds/internal/adapters/rediscache"
	"github.com/jian131/agent-bds/internal/adapters/rest"
	"github.com/jian131/agent-bds/internal/adapters/scheduler"
	"github.com/jian131/agent-bds/internal/adapters/vecstore"
	"github.com/jian131/agent-bds/internal/configs"
	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/port/usecases_port"
	"github.com/jian131/agent-bds/internal/core/usecase"
	fluentlogger "github.com/jian131/agent-bds/pkg/fluent_logger"
	"github.com/jian131/agent-bds/pkg/postgres"
	"github.com/jian131/agent-bds/pkg/rabbitmq/rabbitmq_common"
)

const shutdownTimeout = 10 * time.Second

// App is the composition root. Every backend is optional: a missing
// DSN, URL or key wires a disabled port and the use cases answer with
// their degraded behavior instead of failing at startup.
type App struct {
	config       *configs.AppConfig
	baseLogger   port.LoggerPort
	logger       port.LoggerPort
	fluentClient *fluent.Fluent

	dbPool       *pgxpool.Pool
	cache        *rediscache.Cache
	vectors      *vecstore.Store
	extractor    *extractor.Extractor
	listingQueue *rabbitmq_adapter.ListingQueueAdapter
	consumer     *rabbitmq_adapter.ListingConsumerAdapter
	apiServer    *rest.Server
	scheduler    *scheduler.Scheduler

	searchUC  *usecase.SearchListingsUseCase
	cleanupUC *usecase.CleanupListingsUseCase
}

// NewApp creates and wires all dependencies.
func NewApp(ctx context.Context) (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// Loggers first, so everything after has somewhere to complain.
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	app := &App{
		config:       appConfig,
		baseLogger:   baseLogger,
		logger:       appLogger,
		fluentClient: fluentClient,
	}

	components := map[string]string{
		"db":     rest.ComponentDisabled,
		"cache":  rest.ComponentDisabled,
		"vector": rest.ComponentDisabled,
		"llm":    rest.ComponentDisabled,
		"queue":  rest.ComponentDisabled,
	}

	// Ports stay nil interfaces when a backend is off. Assigning a
	// typed nil would make them non-nil, so adapters are only assigned
	// inside their config guards.
	var (
		listingStorage port.ListingStoragePort
		analyticsRepo  port.AnalyticsPort
		scrapeLog      port.ScrapeLogPort
		cachePort      port.QueryCachePort
		vectorIndex    port.VectorIndexPort
		embedder       port.EmbedderPort
		intentLLM      port.IntentLLMPort
		queuePort      port.ListingQueuePort
		browser        port.FetcherPort
	)

	if appConfig.StorageEnabled() {
		dbPool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: appConfig.Database.URL})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		app.dbPool = dbPool

		if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
			appLogger.Error("Failed to apply database schema", err, nil)
			app.Close()
			return nil, err
		}

		listingRepo, err := postgres_adapter.NewListingRepository(dbPool)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create listing repository: %w", err)
		}
		listingStorage = listingRepo

		analytics, err := postgres_adapter.NewAnalyticsRepository(dbPool)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create analytics repository: %w", err)
		}
		analyticsRepo = analytics

		scrapeLogRepo, err := postgres_adapter.NewScrapeLogRepository(dbPool)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create scrape log repository: %w", err)
		}
		scrapeLog = scrapeLogRepo

		components["db"] = rest.ComponentUp
		appLogger.Info("PostgreSQL storage initialized.", nil)
	} else {
		appLogger.Warn("DATABASE_URL is not set, listing persistence and analytics are disabled", nil)
	}

	if appConfig.Redis.URL != "" {
		cache, err := rediscache.New(ctx, appConfig.Redis.URL, time.Duration(appConfig.Redis.TTLSeconds)*time.Second, baseLogger)
		if err != nil {
			appLogger.Error("Failed to connect to Redis", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.cache = cache
		cachePort = cache
		components["cache"] = rest.ComponentUp
		appLogger.Info("Redis result cache initialized.", nil)
	} else {
		appLogger.Warn("REDIS_URL is not set, search results are not cached", nil)
	}

	if appConfig.Vector.Path != "" {
		vectors, err := vecstore.New(appConfig.Vector.Path, baseLogger)
		if err != nil {
			appLogger.Error("Failed to open the vector store", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to open the vector store: %w", err)
		}
		app.vectors = vectors
		vectorIndex = vectors
		components["vector"] = rest.ComponentUp
		appLogger.Info("Vector store initialized.", port.Fields{"path": appConfig.Vector.Path})
	} else {
		appLogger.Warn("VECTOR_DB_PATH is not set, similarity search is disabled", nil)
	}

	if appConfig.LLMEnabled() {
		gemini, err := llm.NewGemini(ctx, appConfig.Gemini, baseLogger)
		if err != nil {
			appLogger.Error("Failed to create the Gemini client", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to create the Gemini client: %w", err)
		}
		intentLLM = gemini
		embedder = gemini
		components["llm"] = rest.ComponentUp
		appLogger.Info("Gemini client initialized.", port.Fields{"model": appConfig.Gemini.Model})
	} else {
		appLogger.Warn("GEMINI_API_KEY is not set, intent parsing runs on rules alone and embeddings are disabled", nil)
	}

	var connManager *rabbitmq_common.ConnectionManager
	if appConfig.RabbitMQ.URL != "" {
		connManager, err = rabbitmq_common.NewManager(appConfig.RabbitMQ.URL, rabbitmq_adapter.NewPkgLoggerBridge(baseLogger))
		if err != nil {
			appLogger.Error("Failed to create the RabbitMQ connection manager", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to create the RabbitMQ connection manager: %w", err)
		}

		listingQueue, err := rabbitmq_adapter.NewListingQueueAdapter(connManager, appConfig.RabbitMQ.URL, baseLogger)
		if err != nil {
			appLogger.Error("Failed to create the listings producer", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to create the listings producer: %w", err)
		}
		app.listingQueue = listingQueue
		queuePort = listingQueue
		components["queue"] = rest.ComponentUp
		appLogger.Info("RabbitMQ producer initialized.", nil)
	} else {
		appLogger.Warn("RABBITMQ_URL is not set, collected listings are stored directly instead of queued", nil)
	}

	ext, err := extractor.New(appConfig.Selectors.Path, baseLogger)
	if err != nil {
		appLogger.Error("Failed to load extraction selectors", err, nil)
		app.Close()
		return nil, fmt.Errorf("failed to load extraction selectors: %w", err)
	}
	app.extractor = ext

	colly, err := fetcher.NewCollyFetcher(
		appConfig.Crawler.Concurrency,
		time.Duration(appConfig.Crawler.RandomDelaySeconds)*time.Second,
		baseLogger,
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create the static fetcher: %w", err)
	}
	if appConfig.Crawler.BrowserEnabled {
		browser = fetcher.NewChromedpFetcher(ext.ListContainer, baseLogger)
		appLogger.Info("Browser fetcher enabled.", nil)
	}

	// Core pipeline.
	parseIntentUC := usecase.NewParseIntentUseCase(intentLLM, appConfig.Search.PriceTolerance)
	generateTargetsUC := usecase.NewGenerateTargetsUseCase(appConfig.Crawler.Platforms)
	dispatchUC := usecase.NewDispatchCrawlUseCase(
		colly,
		browser,
		appConfig.Crawler.Concurrency,
		time.Duration(appConfig.Crawler.TimeoutSeconds)*time.Second,
	)
	validateUC := usecase.NewValidateListingsUseCase()

	var ingestUC *usecase.IngestListingsUseCase
	var ingestForSearch usecases_port.IngestListingsUseCase
	if listingStorage != nil {
		ingestUC = usecase.NewIngestListingsUseCase(listingStorage, embedder, vectorIndex)
		ingestForSearch = ingestUC
	}

	searchUC := usecase.NewSearchListingsUseCase(
		parseIntentUC,
		generateTargetsUC,
		dispatchUC,
		validateUC,
		ext,
		ingestForSearch,
		queuePort,
		scrapeLog,
		cachePort,
		appConfig.Search.DefaultLimit,
		appConfig.Search.MaxLimit,
	)
	app.searchUC = searchUC
	streamUC := usecase.NewStreamSearchUseCase(searchUC)

	findSimilarUC := usecase.NewFindSimilarUseCase(embedder, vectorIndex, listingStorage)
	getListingUC := usecase.NewGetListingUseCase(listingStorage)
	listListingsUC := usecase.NewListListingsUseCase(listingStorage)
	deleteListingUC := usecase.NewDeleteListingUseCase(listingStorage, vectorIndex)
	analyticsUC := usecase.NewGetAnalyticsUseCase(analyticsRepo, scrapeLog)
	app.cleanupUC = usecase.NewCleanupListingsUseCase(listingStorage, appConfig.Cleanup.ExpireAfterDays)

	appLogger.Info("All use cases initialized.", nil)

	// Consuming only makes sense when batches can land somewhere.
	if connManager != nil && ingestUC != nil {
		consumer, err := rabbitmq_adapter.NewListingConsumerAdapter(connManager, rabbitmq_adapter.ConsumerOptions{
			URL:          appConfig.RabbitMQ.URL,
			BatchSize:    appConfig.RabbitMQ.BatchSize,
			BatchTimeout: time.Duration(appConfig.RabbitMQ.BatchTimeoutSeconds) * time.Second,
			MaxRetries:   appConfig.RabbitMQ.MaxRetries,
		}, ingestUC, baseLogger)
		if err != nil {
			appLogger.Error("Failed to create the listings consumer", err, nil)
			app.Close()
			return nil, fmt.Errorf("failed to create the listings consumer: %w", err)
		}
		app.consumer = consumer
		appLogger.Info("Listings consumer initialized.", nil)
	} else if connManager != nil {
		appLogger.Warn("RabbitMQ is configured without a database, queued listings are left for another consumer", nil)
	}

	searchHandler := rest.NewSearchHandler(searchUC, streamUC, findSimilarUC)
	listingHandler := rest.NewListingHandler(listListingsUC, getListingUC, deleteListingUC, findSimilarUC)
	analyticsHandler := rest.NewAnalyticsHandler(analyticsUC)
	healthHandler := rest.NewHealthHandler(components)

	app.apiServer = rest.NewServer(appConfig.Rest.Port, searchHandler, listingHandler, analyticsHandler, healthHandler, baseLogger)
	appLogger.Info("REST API server configured.", port.Fields{"port": appConfig.Rest.Port})

	if appConfig.Scheduler.Enabled {
		if appConfig.StorageEnabled() {
			app.scheduler = scheduler.New(appConfig.Scheduler, searchUC, app.cleanupUC, baseLogger)
			appLogger.Info("Scheduler configured.", port.Fields{
				"crawl_spec":   appConfig.Scheduler.CrawlSpec,
				"cleanup_spec": appConfig.Scheduler.CleanupSpec,
			})
		} else {
			appLogger.Warn("SCHEDULER_ENABLED is set without a database, background crawls would discard their results. Scheduler stays off.", nil)
		}
	}

	return app, nil
}

// Run starts all components and blocks until a shutdown signal or a
// fatal component error, then stops everything in reverse order.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	defer func() {
		cancelApp()
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.scheduler != nil {
			a.scheduler.Stop()
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := a.apiServer.Stop(shutdownCtx); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
			cancelShutdown()
		}

		a.logger.Info("Application shut down gracefully.", nil)
		a.Close()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	if a.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Listings Consumer"})
			listenerLogger.Info("Starting listener...", nil)

			if err := a.consumer.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("listings consumer error: %w", err)
			} else {
				listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
			}
		}()
	}

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.Port})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	if a.scheduler != nil {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start the scheduler: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	return nil
}

// RunSearch executes one pipeline pass outside the server lifecycle.
// The crawl command uses it.
func (a *App) RunSearch(ctx context.Context, query string, limit int) (*domain.SearchResult, error) {
	ctx = contextkeys.ContextWithLogger(ctx, a.baseLogger)
	return a.searchUC.Execute(ctx, domain.SearchRequest{Query: query, Limit: limit})
}

// RunCleanup executes one expiry pass outside the server lifecycle.
// The cleanup command uses it.
func (a *App) RunCleanup(ctx context.Context) (int64, error) {
	ctx = contextkeys.ContextWithLogger(ctx, a.baseLogger)
	return a.cleanupUC.Execute(ctx)
}

// Close drains pending persistence and releases every connected
// backend. Run calls it at the end of its shutdown sequence; the
// one-off commands and NewApp's error paths call it directly.
func (a *App) Close() {
	if a.searchUC != nil {
		a.searchUC.Drain()
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("Error closing the listings consumer", err, nil)
		}
	}
	if a.listingQueue != nil {
		if err := a.listingQueue.Close(); err != nil {
			a.logger.Error("Error closing the listings producer", err, nil)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("Error closing the Redis client", err, nil)
		}
	}
	if a.vectors != nil {
		if err := a.vectors.Close(); err != nil {
			a.logger.Error("Error closing the vector store", err, nil)
		}
	}
	if a.extractor != nil {
		if err := a.extractor.Close(); err != nil {
			a.logger.Error("Error closing the selector watcher", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// Stdout directly, the fluent sink itself is what failed.
			fmt.Printf("ERROR: failed to close fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
