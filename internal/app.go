package internal

import (
	"context"
	"errors"
	"fmt"
	"listings-service/internal/adapters/filesource"
	"listings-service/internal/adapters/listing_api_client"
	logger_adapter "listings-service/internal/adapters/logger"
	postgres_adapter "listings-service/internal/adapters/postgres"
	rabbitmq_adapter "listings-service/internal/adapters/rabbitmq"
	"listings-service/internal/adapters/rediscache"
	"listings-service/internal/adapters/rest"
	"listings-service/internal/configs"
	"listings-service/internal/constants"
	"listings-service/internal/core/catalog"
	"listings-service/internal/core/engine"
	"listings-service/internal/core/port"
	"listings-service/internal/core/session"
	"listings-service/internal/core/usecase"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	fluentlogger "listings-service/pkg/fluent_logger"
	"listings-service/pkg/postgres"
	"listings-service/pkg/rabbitmq/rabbitmq_common"
	"listings-service/pkg/rabbitmq/rabbitmq_consumer"
	"listings-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	listingsChangedBatchWindow = 2 * time.Second
	shutdownTimeout            = 10 * time.Second
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	catalog   *catalog.Catalog

	listeners     []port.EventListenerPort
	dbPool        *pgxpool.Pool
	recordCache   *rediscache.RecordCache
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- 1. логгеры ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		app.fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(app.fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			app.fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})
	app.logger = baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// дальше при ошибке нужно освободить то, что уже создано
	ok := false
	defer func() {
		if !ok {
			app.close()
		}
	}()

	// --- 2. источник записей ---
	source, fileSource, err := app.newRecordSource()
	if err != nil {
		app.logger.Error("Failed to create record source", err, nil)
		return nil, err
	}
	app.logger.Info("Record source initialized", port.Fields{"source": source.Name()})

	// --- 3. кэш ---
	var cache port.RecordCachePort
	if appConfig.Redis.Enabled {
		app.recordCache, err = rediscache.NewRecordCache(rediscache.Config{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		if err != nil {
			app.logger.Error("Failed to connect to Redis", err, nil)
			return nil, err
		}
		cache = app.recordCache
		app.logger.Info("Redis record cache initialized", port.Fields{"addr": appConfig.Redis.Addr})
	}

	// --- 4. RabbitMQ: публикация событий каталога ---
	var events port.CatalogEventsPort
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		app.connManager, err = rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger))
		if err != nil {
			app.logger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		app.logger.Info("RabbitMQ Connection Manager initialized.", nil)

		if appConfig.RabbitMQ.PublishEvents {
			producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
			app.eventProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
				Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
				ExchangeName:             appConfig.RabbitMQ.ListingsExchange,
				ExchangeType:             "direct",
				DurableExchange:          true,
				DeclareExchangeIfMissing: true,
				Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
			}, app.connManager)
			if err != nil {
				return nil, fmt.Errorf("failed to create event producer: %w", err)
			}

			publisher, err := rabbitmq_adapter.NewCatalogEventsPublisher(app.eventProducer, constants.RoutingKeyCatalogRefreshed)
			if err != nil {
				return nil, err
			}
			events = publisher
			app.logger.Info("RabbitMQ Event Producer initialized.", nil)
		}
	}

	// --- 5. каталог и use cases ---
	app.catalog, err = catalog.NewCatalog(source, cache, events, baseLogger, catalog.Config{
		FetchTimeout: appConfig.Source.FetchTimeout,
		CacheTTL:     appConfig.Redis.TTL,
	})
	if err != nil {
		return nil, err
	}

	pipeline := engine.NewPipeline()
	queryOpts := session.Options{
		PageSize:        appConfig.Query.PageSize,
		ResetPageOnSort: appConfig.Query.ResetPageOnSort,
	}

	queryListingsUseCase := usecase.NewQueryListingsUseCase(app.catalog, pipeline, queryOpts)
	patchQueryUseCase := usecase.NewPatchQueryUseCase(app.catalog, pipeline, queryOpts)
	getListingDetailsUseCase := usecase.NewGetListingDetailsUseCase(app.catalog)
	getFilterOptionsUseCase := usecase.NewGetFilterOptionsUseCase(app.catalog)
	refreshCatalogUseCase := usecase.NewRefreshCatalogUseCase(app.catalog)
	getCatalogStatusUseCase := usecase.NewGetCatalogStatusUseCase(app.catalog)

	app.logger.Info("All use cases initialized", nil)

	// --- 6. слушатели событий ---
	if appConfig.RabbitMQ.Enabled {
		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:                 rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:              appConfig.RabbitMQ.ListingsChangedQueue,
			DeclareQueue:           true,
			DurableQueue:           true,
			ExchangeNameForBind:    appConfig.RabbitMQ.ListingsExchange,
			DeclareExchangeForBind: true,
			ExchangeTypeForBind:    "direct",
			DurableExchangeForBind: true,
			RoutingKeyForBind:      constants.RoutingKeyListingsChanged,
			PrefetchCount:          constants.ListingsChangedBatchSize,
			ConsumerTag:            appConfig.AppName + "-listings-changed",
			DeadLetterExchange:     constants.DeadLetterExchange,
		}
		listener, err := rabbitmq_adapter.NewListingsChangedConsumerAdapter(consumerCfg, listingsChangedBatchWindow, refreshCatalogUseCase, baseLogger, app.connManager)
		if err != nil {
			app.logger.Error("Failed to create listings changed consumer", err, nil)
			return nil, err
		}
		app.listeners = append(app.listeners, listener)
	}

	if fileSource != nil && appConfig.Source.WatchFile {
		watcher, err := filesource.NewWatcher(fileSource.Path(), filesource.DefaultDebounce, refreshCatalogUseCase, baseLogger)
		if err != nil {
			app.logger.Error("Failed to create listings file watcher", err, nil)
			return nil, err
		}
		app.listeners = append(app.listeners, watcher)
	}

	// --- 7. REST ---
	app.apiServer = rest.NewServer(
		appConfig.Rest.PORT,
		appConfig.Rest.CORSAllowedOrigins,
		rest.NewListingsHandler(queryListingsUseCase, patchQueryUseCase, getListingDetailsUseCase),
		rest.NewFilterHandler(getFilterOptionsUseCase),
		rest.NewCatalogHandler(refreshCatalogUseCase, getCatalogStatusUseCase),
		baseLogger,
	)

	ok = true
	return app, nil
}

// newRecordSource выбирает источник по конфигурации. Для файла дополнительно возвращает
// сам FileSource, чтобы за ним можно было следить.
func (a *App) newRecordSource() (port.RecordSourcePort, *filesource.FileSource, error) {
	cfg := a.config.Source
	switch cfg.Kind {
	case configs.SourceHTTP:
		client, err := listing_api_client.NewClient(cfg.APIURL, cfg.APIPath, &http.Client{Timeout: cfg.FetchTimeout})
		return client, nil, err

	case configs.SourcePostgres:
		pool, err := postgres.NewClient(context.Background(), postgres.Config{
			DatabaseURL:     cfg.DatabaseURL,
			MaxConns:        4,
			ConnectTimeout:  10 * time.Second,
			ApplicationName: a.config.AppName,
			ReadOnly:        true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.dbPool = pool
		adapter, err := postgres_adapter.NewRecordSourceAdapter(pool, cfg.Table)
		return adapter, nil, err

	case configs.SourceFile:
		fs, err := filesource.NewFileSource(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs, nil
	}
	return nil, nil, fmt.Errorf("unknown record source %q", cfg.Kind)
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		cancelApp()
		wg.Wait()
		a.close()
	}()

	a.logger.Info("Application is starting...", nil)

	// каталог начинает загружаться сразу, не дожидаясь первого запроса
	a.catalog.EnsureLoading()

	errorsCh := make(chan error, len(a.listeners)+1)

	startListener := func(name string, listener port.EventListenerPort) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.logger.Info("Starting listener", port.Fields{"listener": name})
			if err := listener.Start(appCtx); err != nil && !errors.Is(err, context.Canceled) {
				errorsCh <- fmt.Errorf("listener %s failed: %w", name, err)
			}
		}()
	}
	for _, listener := range a.listeners {
		startListener(fmt.Sprintf("%T", listener), listener)
	}

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or errors...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	case runErr = <-errorsCh:
		a.logger.Error("Component failed, shutting down", runErr, nil)
	}

	return runErr
}

// close освобождает ресурсы в обратном порядке создания
func (a *App) close() {
	for _, listener := range a.listeners {
		if err := listener.Close(); err != nil {
			a.logger.Error("Error closing listener", err, nil)
		}
	}
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.recordCache != nil {
		if err := a.recordCache.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	level, ok := logger_adapter.ParseLevel(levelStr)
	if !ok {
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
	}
	return level
}
