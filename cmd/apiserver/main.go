// API server entry point for EcoExpand AI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/internal/domain/risk"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/memory"
	neo4jdriver "github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/neo4j"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/redis"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/rendering"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/storage/minio"
	"github.com/turtacn/EcoExpand-AI/internal/intelligence/chat"
	"github.com/turtacn/EcoExpand-AI/internal/intelligence/nlp"
	httpserver "github.com/turtacn/EcoExpand-AI/internal/interfaces/http"
	"github.com/turtacn/EcoExpand-AI/internal/interfaces/http/handlers"
	"github.com/turtacn/EcoExpand-AI/internal/interfaces/http/middleware"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

const (
	defaultConfigPath = "configs/config.yaml"
	startupTimeout    = 30 * time.Second
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: %s not loaded: %v\n", *envFile, err)
	}

	cfg, fromFile, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting EcoExpand AI API server",
		logging.String("version", config.Version),
		logging.Int("port", cfg.Server.Port),
		logging.String("dataset_source", cfg.Dataset.Source),
		logging.String("graph_backend", cfg.Graph.Backend),
	)

	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", logging.Err(err))
	}

	if fromFile {
		config.Watch(*configPath, func(next *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(next.Log.Level)
			}
			logger.Info("configuration reloaded", logging.String("log_level", next.Log.Level))
		}, func(err error) {
			logger.Warn("configuration reload rejected", logging.Err(err))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", logging.Err(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	app.close()
	logger.Info("server stopped")
}

// loadConfig reads path when it exists and falls back to environment
// variables otherwise. The bool reports whether a file was used.
func loadConfig(path string) (*config.Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := config.Load(path)
		return cfg, true, err
	}
	cfg, err := config.LoadFromEnv()
	return cfg, false, err
}

// application owns every long-lived dependency of the server.
type application struct {
	server  *httpserver.Server
	closers []namedCloser
	logger  logging.Logger
}

type namedCloser struct {
	name  string
	close func() error
}

func (a *application) onClose(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// close releases dependencies in reverse order of creation.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("close failed", logging.String("component", c.name), logging.Err(err))
		}
	}
}

func newApplication(cfg *config.Config, logger logging.Logger) (_ *application, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	app := &application{logger: logger}
	defer func() {
		if err != nil {
			app.close()
		}
	}()
	var checkers []handlers.HealthChecker

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		collector = c
		metrics = prometheus.NewAppMetrics(c)
	}

	// Object storage serves both the dataset and graph snapshots.
	var objects minio.ObjectRepository
	if cfg.MinIO.Enabled {
		mc, err := minio.NewMinIOClient(cfg.MinIO, logger)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		app.onClose("minio", mc.Close)
		if err := mc.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		objects = minio.NewMinIORepository(mc, logger)
		checkers = append(checkers, minioHealth{mc})
	}

	// Audit events.
	var events *kafka.Producer
	if cfg.Kafka.Enabled {
		if tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger); err != nil {
			logger.Warn("kafka topic manager unavailable", logging.Err(err))
		} else {
			if err := tm.EnsureTopic(ctx, cfg.Kafka.Topic); err != nil {
				logger.Warn("kafka topic not ensured", logging.String("topic", cfg.Kafka.Topic), logging.Err(err))
			}
			_ = tm.Close()
		}
		p, err := kafka.NewProducer(cfg.Kafka, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		events = p
		app.onClose("kafka", p.Close)
	}

	// Risk pipeline. A dataset that cannot be loaded or fitted is fatal.
	rows, err := loadDataset(ctx, cfg.Dataset, objects, logger)
	if err != nil {
		return nil, err
	}
	pipeline, err := risk.NewPipeline(rows, pipelineOptions(cfg.Dataset), logger)
	if err != nil {
		return nil, fmt.Errorf("risk pipeline: %w", err)
	}
	summary := pipeline.Summary()
	prometheus.RecordPipelineFit(metrics, summary.Rows, summary.Evaluation.RMSE, summary.FitDuration)

	riskOpts := []risk.ServiceOption{risk.WithMetrics(metrics)}
	if events != nil {
		riskOpts = append(riskOpts, risk.WithEvents(events))
	}
	riskSvc := risk.NewService(pipeline, logger, riskOpts...)
	checkers = append(checkers, handlers.NewChecker("pipeline", func(context.Context) error {
		if len(riskSvc.Countries()) == 0 {
			return errors.Unavailable("risk pipeline has no countries")
		}
		return nil
	}))

	// Chat, with an optional reply cache.
	chatOpts := []chat.Option{chat.WithLogger(logger), chat.WithMetrics(metrics)}
	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, chat replies will not be cached", logging.Err(err))
		} else {
			app.onClose("redis", rc.Close)
			cache := redis.NewRedisCache(rc, logger, redis.WithPrefix("ecoexpand:"))
			chatOpts = append(chatOpts, chat.WithCache(cache, cfg.Redis.ChatCacheTTL))
			checkers = append(checkers, handlers.NewChecker("redis", rc.Ping))
		}
	}
	chatSvc := chat.NewService(chat.NewOpenAIClient(cfg.LLM), cfg.LLM, chatOpts...)

	analyzer := nlp.NewAnalyzer(nlp.NewProseAnnotator(), cfg.NLP, logger, metrics)

	// Knowledge graph.
	store, err := newGraphStore(ctx, cfg, logger, app)
	if err != nil {
		return nil, err
	}
	graphOpts := []knowledge.ServiceOption{
		knowledge.WithRenderer(rendering.NewPNGRenderer(cfg.Graph.ImageWidth, cfg.Graph.ImageHeight)),
		knowledge.WithMetrics(metrics),
	}
	if objects != nil {
		graphOpts = append(graphOpts, knowledge.WithSnapshots(objects))
	}
	if events != nil {
		graphOpts = append(graphOpts, knowledge.WithEvents(events))
	}
	graphSvc := knowledge.NewService(store, logger, graphOpts...)
	checkers = append(checkers, handlers.NewChecker("graph", graphSvc.Ping))
	if cfg.Graph.SeedSample {
		if err := graphSvc.Seed(ctx); err != nil {
			logger.Warn("sample graph not seeded", logging.Err(err))
		}
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		RiskHandler:      handlers.NewRiskHandler(riskSvc, logger),
		ChatHandler:      handlers.NewChatHandler(chatSvc, logger),
		NLPHandler:       handlers.NewNLPHandler(analyzer, logger),
		GraphHandler:     handlers.NewGraphHandler(graphSvc, logger),
		HealthHandler:    handlers.NewHealthHandler(config.Version, metrics, checkers...),
		CORS:             cfg.CORS,
		Logging:          middleware.DefaultLoggingConfig(),
		MaxBodySize:      cfg.Server.MaxBodySize,
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
		MetricsPath:      cfg.Metrics.Path,
	})
	app.server = httpserver.NewServer(cfg.Server, router, logger)
	return app, nil
}

// loadDataset reads the indicator table from the configured source.
func loadDataset(ctx context.Context, cfg config.DatasetConfig, objects minio.ObjectRepository, logger logging.Logger) ([]risk.IndicatorRow, error) {
	var (
		rows  []risk.IndicatorRow
		stats risk.LoadStats
		err   error
	)
	switch cfg.Source {
	case "minio":
		if objects == nil {
			return nil, fmt.Errorf("dataset: source minio requires minio.enabled")
		}
		key := cfg.ObjectKey
		if key == "" {
			key = cfg.Path
		}
		var rc io.ReadCloser
		rc, err = objects.Open(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		defer rc.Close()
		rows, stats, err = risk.ReadTable(rc)
	default:
		rows, stats, err = risk.LoadTable(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	logger.Info("dataset loaded",
		logging.String("source", cfg.Source),
		logging.Int("rows", len(rows)),
		logging.Any("stats", stats),
	)
	return rows, nil
}

func pipelineOptions(cfg config.DatasetConfig) risk.Options {
	opts := risk.DefaultOptions()
	opts.Clusters = cfg.Clusters
	opts.Seed = cfg.Seed
	opts.MaxIterations = cfg.MaxIterations
	opts.Forest.NumTrees = cfg.Trees
	opts.Forest.TestRatio = cfg.TestRatio
	opts.Forest.MaxDepth = cfg.MaxDepth
	opts.Forest.MinSamplesLeaf = cfg.MinSamplesLeaf
	opts.Forest.MaxFeatures = cfg.MaxFeatures
	opts.Forest.Seed = cfg.Seed
	return opts
}

func newGraphStore(ctx context.Context, cfg *config.Config, logger logging.Logger, app *application) (knowledge.Store, error) {
	if cfg.Graph.Backend != "neo4j" {
		return memory.NewGraphStore(), nil
	}
	d, err := neo4jdriver.NewDriver(cfg.Neo4j, logger)
	if err != nil {
		return nil, fmt.Errorf("neo4j: %w", err)
	}
	app.onClose("neo4j", d.Close)
	if err := repositories.EnsureConstraints(ctx, d); err != nil {
		return nil, fmt.Errorf("neo4j: %w", err)
	}
	return repositories.NewNeo4jKnowledgeGraphRepo(d, logger), nil
}
