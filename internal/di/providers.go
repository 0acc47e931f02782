package di

import (
	"context"
	"fmt"
	"time"

	"CurvePull/internal/domain/repository"
	"CurvePull/internal/handler/api"
	internalrepo "CurvePull/internal/repository"
	"CurvePull/internal/service/ratelimit"
	"CurvePull/internal/service/source"
	"CurvePull/internal/usecase"
	"CurvePull/pkg/cache"
	pkgch "CurvePull/pkg/clickhouse"
	"CurvePull/pkg/config"
	xhttp "CurvePull/pkg/http"
	pkgkafka "CurvePull/pkg/kafka"
	applogger "CurvePull/pkg/logger"
	"CurvePull/pkg/metrics"
	"CurvePull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the outbound HTTP client shared by sources.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	timeout := cfg.Sources.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return xhttp.NewClient(xhttp.WithTimeout(timeout))
}

// ProvideSources builds the source registry keyed by the config source kind.
func ProvideSources(cfg *config.Config, client *xhttp.Client) map[string]repository.SeriesSource {
	limiter := ratelimit.New()
	rlCap := cfg.Sources.RateLimit.Capacity
	rlRate := cfg.Sources.RateLimit.RefillPerSec
	if rlCap <= 0 {
		rlCap = 5
	}
	if rlRate <= 0 {
		rlRate = 2
	}

	fredBase := cfg.Sources.FredBaseURL
	if fredBase == "" {
		fredBase = "https://fred.stlouisfed.org"
	}
	bocBase := cfg.Sources.BocBaseURL
	if bocBase == "" {
		bocBase = "https://www.bankofcanada.ca"
	}

	sources := map[string]repository.SeriesSource{
		"fred": source.NewFRED(fredBase, client, limiter, rlCap, rlRate),
		"boc":  source.NewBoC(bocBase, client, limiter, rlCap, rlRate),
	}
	if cfg.Sources.CSVDir != "" {
		sources["csv"] = source.NewCSVDir(cfg.Sources.CSVDir)
	}
	return sources
}

// ProvidePanelStore creates the file-backed panel store.
func ProvidePanelStore(cfg *config.Config, l *applogger.Logger) repository.PanelStore {
	store := internalrepo.NewFilePanelStore(cfg.Output.Dir, cfg.Output.ParquetFile, cfg.Output.CSVFile)
	store.SetLogger(l)
	return store
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// mirror is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "curvepull"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".panel_long (date Date, series String, value Float64) ENGINE=MergeTree ORDER BY (series, date)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvidePanelMirror creates the ClickHouse mirror, or nil when disabled.
func ProvidePanelMirror(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PanelMirror {
	if chClient == nil {
		return nil
	}
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "curvepull"
	}
	mirror := internalrepo.NewCHPanelMirror(chClient, db+".panel_long")
	mirror.SetLogger(l)
	return mirror
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRunEvents creates the run-event publisher, or nil when disabled.
func ProvideRunEvents(producer *pkgkafka.Producer, cfg *config.Config) repository.RunEvents {
	if producer == nil {
		return nil
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = "curvepull.panel.refreshed"
	}
	return internalrepo.NewKafkaRunEvents(producer, topic)
}

// ProvideCache creates the response cache: layered memory+Redis when Redis
// is configured, in-memory otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		// Redis being down should not keep the service from starting.
		l.Warn("redis unavailable, using in-memory cache", applogger.Error(err))
		return cache.NewMemoryCache(), nil
	}
	return cache.NewLayeredCache(redisCache), nil
}

// ProvidePipeline creates the refresh pipeline.
func ProvidePipeline(
	cfg *config.Config,
	sources map[string]repository.SeriesSource,
	store repository.PanelStore,
	mirror repository.PanelMirror,
	events repository.RunEvents,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(cfg, sources, store, mirror, events, m, l)
}

// ProvidePanelService creates the serving-side panel service.
func ProvidePanelService(
	cfg *config.Config,
	pipeline *usecase.Pipeline,
	store repository.PanelStore,
	cacheSvc cache.Service,
	l *applogger.Logger,
) *usecase.PanelService {
	return usecase.NewPanelService(cfg, pipeline, store, cacheSvc, l)
}

// ProvidePanelHandler creates the HTTP handler.
func ProvidePanelHandler(l *applogger.Logger, svc *usecase.PanelService) *api.PanelHandler {
	return api.NewPanelHandler(l, svc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	svc *usecase.PanelService,
	handler *api.PanelHandler,
	chClient *pkgch.Client,
	events repository.RunEvents,
	cacheSvc cache.Service,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, svc, handler, chClient, events, cacheSvc, l)
}
