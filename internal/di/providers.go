package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"SignalForge/internal/domain/repository"
	domsvc "SignalForge/internal/domain/service"
	"SignalForge/internal/handler/api"
	mid "SignalForge/internal/middleware"
	internalrepo "SignalForge/internal/repository"
	"SignalForge/internal/service/binance"
	"SignalForge/internal/service/ratelimit"
	"SignalForge/internal/services/backtest"
	"SignalForge/internal/services/indicator"
	"SignalForge/internal/services/signal"
	"SignalForge/internal/usecase"
	"SignalForge/pkg/cache"
	pkgch "SignalForge/pkg/clickhouse"
	"SignalForge/pkg/config"
	pkgkafka "SignalForge/pkg/kafka"
	applogger "SignalForge/pkg/logger"
	"SignalForge/pkg/metrics"
	"SignalForge/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the ClickHouse candle store and initializes its
// schema.
func ProvideCandleStore(chClient *pkgch.Client, log *applogger.Logger) (repository.CandleStore, error) {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("candle store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandlePublisher creates the Kafka candle publisher.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.CandlePublisher {
	return internalrepo.NewKafkaCandlePublisher(producer, cfg.Kafka.Topic)
}

// ProvideSignalPublisher creates the Kafka signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.CandleStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideBinanceStream creates the Binance kline WebSocket stream.
func ProvideBinanceStream(cfg *config.Config) repository.CandleStream {
	return binance.NewStream(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		repository.NormalizeInterval(cfg.Binance.Interval),
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
}

// ProvideCandleProvider creates the Binance REST candle provider.
func ProvideCandleProvider(cfg *config.Config) repository.CandleProvider {
	return binance.NewClient(cfg.Binance.RESTBaseURL, cfg.Binance.RequestTimeout, ratelimit.New())
}

// ProvideCandleProcessor creates the candle processor use case.
func ProvideCandleProcessor(
	pub repository.CandlePublisher,
	store repository.CandleStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(pub, store, metrics, cfg.Backend.Type)
}

// ProvideCandleCollector creates the candle collector use case.
func ProvideCandleCollector(
	stream repository.CandleStream,
	processor *usecase.CandleProcessor,
	metrics repository.Metrics,
) *usecase.CandleCollector {
	pipe := mid.NewCandlePipeline(processor, metrics,
		mid.WithBufferSize(2000),
	)
	return usecase.NewCandleCollector(stream, processor, metrics, pipe)
}

// ProvideCache creates the result cache: Redis when enabled, in-process
// otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Engine.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Engine.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Engine.Redis.Password),
		cache.WithRedisDB(cfg.Engine.Redis.DB),
	)
}

// ProvideAnalyzer creates the indicator service.
func ProvideAnalyzer() domsvc.Analyzer {
	return indicator.NewService()
}

// ProvideSignalGenerator creates the signal generator.
func ProvideSignalGenerator() domsvc.SignalGenerator {
	return signal.NewGenerator()
}

// ProvideSimulator creates the backtest simulator.
func ProvideSimulator(analyzer domsvc.Analyzer, generator domsvc.SignalGenerator) *backtest.Simulator {
	return backtest.NewSimulator(analyzer, generator)
}

// ProvideEngineUseCase wires the analysis engine.
func ProvideEngineUseCase(
	analyzer domsvc.Analyzer,
	generator domsvc.SignalGenerator,
	simulator *backtest.Simulator,
	provider repository.CandleProvider,
	store repository.CandleStore,
	cacheSvc cache.Service,
	signalPub repository.SignalPublisher,
	metrics repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.EngineUseCase {
	return usecase.NewEngineUseCase(
		analyzer, generator, simulator,
		provider, store, cacheSvc, signalPub, metrics, log,
		usecase.CacheTTLs{
			Analysis: cfg.Engine.CacheTTL.Analysis,
			Signal:   cfg.Engine.CacheTTL.Signal,
			Candles:  cfg.Engine.CacheTTL.Candles,
		},
	)
}

// ProvideCandlesUseCase creates the candles query use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideEngineHandler creates the HTTP handler.
func ProvideEngineHandler(log *applogger.Logger, engine *usecase.EngineUseCase, candles *usecase.CandlesUseCase) *api.EngineHandler {
	return api.NewEngineHandler(log, engine, candles)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	store repository.CandleStore,
	producer *pkgkafka.Producer,
	handler *api.EngineHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	// ship aggregated warn/error logs to Kafka in production
	if cfg.Environment == "production" && producer != nil && len(cfg.Kafka.Brokers) > 0 {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "signalforge.logs",
			Publisher:      producer,
		})
	}
	app := server.New(cfg, log, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if collector != nil {
		handler.SetHealthDeps(store, collector.IsConnected)
	} else {
		handler.SetHealthDeps(store, nil)
	}
	if collector != nil {
		app.CandleProc = collector.Processor()
	}
	return app
}
