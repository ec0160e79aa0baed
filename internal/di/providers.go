package di

import (
	"context"
	"fmt"
	"time"

	"EuroLens/internal/domain/repository"
	"EuroLens/internal/handler/api"
	internalrepo "EuroLens/internal/repository"
	"EuroLens/internal/service/drawapi"
	"EuroLens/internal/service/ratelimit"
	"EuroLens/internal/services/fallback"
	"EuroLens/internal/services/generator"
	"EuroLens/internal/services/stats"
	"EuroLens/internal/usecase"
	"EuroLens/pkg/cache"
	pkgch "EuroLens/pkg/clickhouse"
	"EuroLens/pkg/config"
	xhttp "EuroLens/pkg/http"
	pkgkafka "EuroLens/pkg/kafka"
	applogger "EuroLens/pkg/logger"
	"EuroLens/pkg/metrics"
	"EuroLens/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New()
}

// ProvideCache creates the draw cache selected by cache.type.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Type {
	case config.CacheNone:
		return cache.NewNoopCache(), nil
	case config.CacheRedis, config.CacheLayered:
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Host:       cfg.Cache.Redis.Host,
			Port:       cfg.Cache.Redis.Port,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			PoolSize:   cfg.Cache.Redis.PoolSize,
			Prefix:     cfg.Cache.Redis.Prefix,
			DefaultTTL: cfg.Draws.CacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Type == config.CacheRedis {
			return rc, nil
		}
		return cache.NewLayeredCache(rc, cfg.Cache.L1TTL, cache.WithMemoryMaxSize(cfg.Cache.MaxSize)), nil
	default:
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxSize),
			cache.WithMemoryTTL(cfg.Draws.CacheTTL),
		), nil
	}
}

// ProvideClickHouseClient connects to ClickHouse when enabled; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(cfg.ClickHouse.MaxOpenConns, 2),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideDrawStore creates the draw table and returns the store, or nil
// without ClickHouse.
func ProvideDrawStore(client *pkgch.Client) (*internalrepo.ClickHouseDrawStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseDrawStore(client.DB(), client.Database())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a producer for the kafka backend; nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != config.BackendKafka {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, 0),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDrawPublisher wraps the producer for the draws topic.
func ProvideDrawPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.DrawPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDrawPublisher(producer, cfg.Kafka.Topic)
}

// ProvideDrawAPIClient creates the remote draw API client.
func ProvideDrawAPIClient(cfg *config.Config, l *applogger.Logger, m repository.Metrics) *drawapi.Client {
	return drawapi.New(drawapi.Config{
		BaseURL:    cfg.Draws.APIURL,
		StagingURL: cfg.Draws.StagingURL,
		Timeout:    cfg.Draws.Timeout,
		Attempts:   cfg.Draws.RetryAttempts,
		Delay:      cfg.Draws.RetryDelay,
	}, l.With(applogger.String("component", "drawapi")), m)
}

// ProvideDrawLoader chains remote API, stored history and static data.
func ProvideDrawLoader(
	cfg *config.Config,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	remote *drawapi.Client,
	store *internalrepo.ClickHouseDrawStore,
) *usecase.DrawLoader {
	var sources []repository.DrawSource
	if src := remoteSource(remote); src != nil {
		sources = append(sources, src)
	}
	if store != nil {
		sources = append(sources, store)
	}
	if cfg.Draws.StaticFallback {
		sources = append(sources, fallback.NewStaticSource(time.Now(), cfg.Draws.StaticYears))
	}
	return usecase.NewDrawLoader(c, cfg.Draws.CacheTTL, m, l, sources...)
}

func ProvideStatsUseCase(loader *usecase.DrawLoader, m repository.Metrics, l *applogger.Logger) *usecase.StatsUseCase {
	return usecase.NewStatsUseCase(loader, stats.NewAggregator(), m, l)
}

func ProvideTicketsUseCase(st *usecase.StatsUseCase, m repository.Metrics, l *applogger.Logger) *usecase.TicketsUseCase {
	return usecase.NewTicketsUseCase(st, generator.NewGenerator(), m, l)
}

// ProvideRateLimiter creates the per-client limiter for ticket generation.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Generator.RatePerSecond, cfg.Generator.Burst)
}

func ProvideLotteryHandler(
	l *applogger.Logger,
	st *usecase.StatsUseCase,
	tk *usecase.TicketsUseCase,
	rl *ratelimit.Limiter,
) *api.LotteryEchoHandler {
	return api.NewLotteryEchoHandler(l, st, tk, rl)
}

// ProvideHTTPServer creates the Echo server with the lottery routes.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.LotteryEchoHandler,
	store *internalrepo.ClickHouseDrawStore,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(len(cfg.Server.CORSOrigins) > 0, cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	}
	if store != nil {
		opts = append(opts, xhttp.WithHealthCheck("clickhouse", store.Health))
	}
	return xhttp.NewServer([]xhttp.Handler{h}, opts...)
}

// ProvideDrawSync creates the scheduled ingestion job; nil without a remote API.
func ProvideDrawSync(
	cfg *config.Config,
	remote *drawapi.Client,
	pub repository.DrawPublisher,
	store *internalrepo.ClickHouseDrawStore,
	loader *usecase.DrawLoader,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DrawSync {
	src := remoteSource(remote)
	if src == nil {
		return nil
	}
	var ds repository.DrawStore
	if store != nil {
		ds = store
	}
	return usecase.NewDrawSync(src, pub, ds, loader, c, cfg.Backend.Type, m, l)
}

// ProvideKafkaConsumer creates the ingestion consumer when enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook(),
		pkgkafka.LoggingHook(l.With(applogger.String("component", "kafka_consumer"))),
	))
	return consumer, nil
}

// ProvideKafkaDrawsHandler creates the topic handler; nil without a store.
func ProvideKafkaDrawsHandler(
	cfg *config.Config,
	store *internalrepo.ClickHouseDrawStore,
	loader *usecase.DrawLoader,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.KafkaDrawsHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaDrawsHandler(cfg.Kafka.Topic, store, loader, m, l)
}

// ProvideApp assembles the application runner.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	sync *usecase.DrawSync,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaDrawsHandler,
	c cache.Service,
	chClient *pkgch.Client,
	pub repository.DrawPublisher,
) *server.App {
	app := server.New(cfg, l, httpServer)
	if sync != nil {
		app.SetDrawSync(sync)
	}
	if consumer != nil && kh != nil {
		app.SetConsumer(consumer, kh)
	}
	if pub != nil {
		app.AddCloser("kafka_producer", pub)
	}
	if chClient != nil {
		app.AddCloser("clickhouse", chClient)
	}
	app.AddCloser("cache", c)
	return app
}

func remoteSource(remote *drawapi.Client) repository.DrawSource {
	if remote == nil || !remote.Configured() {
		return nil
	}
	return remote
}
