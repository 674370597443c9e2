// Package config defines the configuration structures for the EcoExpand AI
// service. No I/O or parsing lives in this file, only plain data types and
// validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CORSConfig lists the cross-origin rules applied to every route.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// LogConfig holds logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stdout" | "stderr" | file path
}

// DatasetConfig describes where the indicator table lives and how the risk
// models are fitted from it.
type DatasetConfig struct {
	Source         string  `mapstructure:"source"` // "file" | "minio"
	Path           string  `mapstructure:"path"`
	ObjectKey      string  `mapstructure:"object_key"`
	Clusters       int     `mapstructure:"clusters"`
	Seed           int64   `mapstructure:"seed"`
	MaxIterations  int     `mapstructure:"max_iterations"`
	Trees          int     `mapstructure:"trees"`
	TestRatio      float64 `mapstructure:"test_ratio"`
	MaxDepth       int     `mapstructure:"max_depth"`
	MinSamplesLeaf int     `mapstructure:"min_samples_leaf"`
	MaxFeatures    int     `mapstructure:"max_features"`
}

// LLMConfig configures the chat-completion collaborator.
type LLMConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SystemPrompt string        `mapstructure:"system_prompt"`
}

// NLPConfig tunes the text-analysis endpoints.
type NLPConfig struct {
	KeyPhraseTopN    int      `mapstructure:"key_phrase_top_n"`
	SummarySentences int      `mapstructure:"summary_sentences"`
	InsightLabels    []string `mapstructure:"insight_labels"`
}

// GraphConfig selects and tunes the knowledge-graph store.
type GraphConfig struct {
	Backend     string `mapstructure:"backend"` // "memory" | "neo4j"
	SeedSample  bool   `mapstructure:"seed_sample"`
	ImageWidth  int    `mapstructure:"image_width"`
	ImageHeight int    `mapstructure:"image_height"`
}

// Neo4jConfig holds Neo4j connection parameters.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// RedisConfig holds Redis connection parameters for the chat response cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ChatCacheTTL time.Duration `mapstructure:"chat_cache_ttl"`
}

// MinIOConfig holds object storage parameters for dataset fetches and graph
// snapshots.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// KafkaConfig holds audit event publishing parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	LLM     LLMConfig     `mapstructure:"llm"`
	NLP     NLPConfig     `mapstructure:"nlp"`
	Graph   GraphConfig   `mapstructure:"graph"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// NewDefaultConfig returns a Config populated entirely from defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	return cfg
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks invariants that defaults cannot repair. It returns the first
// violation found.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Dataset
	switch c.Dataset.Source {
	case "file":
		if strings.TrimSpace(c.Dataset.Path) == "" {
			return fmt.Errorf("config: dataset.path is required when dataset.source is file")
		}
	case "minio":
		if !c.MinIO.Enabled {
			return fmt.Errorf("config: dataset.source minio requires minio.enabled")
		}
		if c.Dataset.ObjectKey == "" {
			return fmt.Errorf("config: dataset.object_key is required when dataset.source is minio")
		}
	default:
		return fmt.Errorf("config: dataset.source %q is invalid; expected file|minio", c.Dataset.Source)
	}
	if c.Dataset.Clusters < 1 {
		return fmt.Errorf("config: dataset.clusters must be ≥ 1, got %d", c.Dataset.Clusters)
	}
	if c.Dataset.Trees < 1 {
		return fmt.Errorf("config: dataset.trees must be ≥ 1, got %d", c.Dataset.Trees)
	}
	if c.Dataset.TestRatio < 0 || c.Dataset.TestRatio >= 1 {
		return fmt.Errorf("config: dataset.test_ratio %.2f is out of range [0, 1)", c.Dataset.TestRatio)
	}
	if c.Dataset.MaxFeatures < 0 || c.Dataset.MaxFeatures > 4 {
		return fmt.Errorf("config: dataset.max_features %d is out of range [0, 4]", c.Dataset.MaxFeatures)
	}

	// LLM
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("config: llm.max_tokens must be ≥ 1, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config: llm.temperature %.2f is out of range [0, 2]", c.LLM.Temperature)
	}

	// Graph
	switch c.Graph.Backend {
	case "memory":
	case "neo4j":
		if c.Neo4j.URI == "" {
			return fmt.Errorf("config: neo4j.uri is required when graph.backend is neo4j")
		}
	default:
		return fmt.Errorf("config: graph.backend %q is invalid; expected memory|neo4j", c.Graph.Backend)
	}

	// Optional collaborators
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	return nil
}
