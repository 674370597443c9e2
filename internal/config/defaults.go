package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort            = 8000
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerShutdownTimeout = 30 * time.Second
	DefaultServerMaxBodySize     = 4 << 20

	DefaultCORSOrigin = "http://localhost:5173"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"

	DefaultDatasetSource  = "file"
	DefaultDatasetPath    = "market_data.csv"
	DefaultClusters       = 3
	DefaultSeed           = 42
	DefaultMaxIterations  = 300
	DefaultTrees          = 100
	DefaultTestRatio      = 0.2
	DefaultMinSamplesLeaf = 1

	DefaultLLMBaseURL     = "https://api.openai.com/v1"
	DefaultLLMModel       = "gpt-4"
	DefaultLLMMaxTokens   = 300
	DefaultLLMTemperature = 0.7
	DefaultLLMTimeout     = 60 * time.Second
	DefaultSystemPrompt   = "You are EcoExpand AI, a smart chatbot that helps users understand compliance regulations " +
		"and international export incentives. Provide detailed, accurate, and actionable guidance."

	DefaultKeyPhraseTopN    = 10
	DefaultSummarySentences = 3

	DefaultGraphBackend     = "memory"
	DefaultGraphImageWidth  = 1200
	DefaultGraphImageHeight = 800

	DefaultNeo4jDatabase = "neo4j"
	DefaultNeo4jPoolSize = 50
	DefaultNeo4jTimeout  = 10 * time.Second

	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPoolSize = 10
	DefaultRedisTimeout  = 3 * time.Second
	DefaultChatCacheTTL  = 10 * time.Minute

	DefaultMinIOBucket = "ecoexpand"

	DefaultKafkaTopic        = "ecoexpand.audit"
	DefaultKafkaBatchTimeout = 50 * time.Millisecond

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "ecoexpand"
)

// DefaultInsightLabels are the entity labels kept by the insights endpoint.
var DefaultInsightLabels = []string{"ORG", "GPE", "MONEY", "LAW", "DATE"}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicitly configured values are left untouched.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ───────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}

	// ── CORS ─────────────────────────────────────────────────────────────────
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{DefaultCORSOrigin}
		cfg.CORS.AllowCredentials = true
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 600
	}

	// ── Log ──────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Dataset ──────────────────────────────────────────────────────────────
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = DefaultDatasetSource
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = DefaultDatasetPath
	}
	if cfg.Dataset.Clusters == 0 {
		cfg.Dataset.Clusters = DefaultClusters
	}
	if cfg.Dataset.Seed == 0 {
		cfg.Dataset.Seed = DefaultSeed
	}
	if cfg.Dataset.MaxIterations == 0 {
		cfg.Dataset.MaxIterations = DefaultMaxIterations
	}
	if cfg.Dataset.Trees == 0 {
		cfg.Dataset.Trees = DefaultTrees
	}
	if cfg.Dataset.TestRatio == 0 {
		cfg.Dataset.TestRatio = DefaultTestRatio
	}
	if cfg.Dataset.MinSamplesLeaf == 0 {
		cfg.Dataset.MinSamplesLeaf = DefaultMinSamplesLeaf
	}

	// ── LLM ──────────────────────────────────────────────────────────────────
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = DefaultLLMMaxTokens
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = DefaultLLMTemperature
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.SystemPrompt == "" {
		cfg.LLM.SystemPrompt = DefaultSystemPrompt
	}

	// ── NLP ──────────────────────────────────────────────────────────────────
	if cfg.NLP.KeyPhraseTopN == 0 {
		cfg.NLP.KeyPhraseTopN = DefaultKeyPhraseTopN
	}
	if cfg.NLP.SummarySentences == 0 {
		cfg.NLP.SummarySentences = DefaultSummarySentences
	}
	if len(cfg.NLP.InsightLabels) == 0 {
		cfg.NLP.InsightLabels = append([]string(nil), DefaultInsightLabels...)
	}

	// ── Graph ────────────────────────────────────────────────────────────────
	if cfg.Graph.Backend == "" {
		cfg.Graph.Backend = DefaultGraphBackend
	}
	if cfg.Graph.ImageWidth == 0 {
		cfg.Graph.ImageWidth = DefaultGraphImageWidth
	}
	if cfg.Graph.ImageHeight == 0 {
		cfg.Graph.ImageHeight = DefaultGraphImageHeight
	}

	// ── Neo4j ────────────────────────────────────────────────────────────────
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = DefaultNeo4jPoolSize
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = DefaultNeo4jTimeout
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ChatCacheTTL == 0 {
		cfg.Redis.ChatCacheTTL = DefaultChatCacheTTL
	}

	// ── MinIO ────────────────────────────────────────────────────────────────
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Kafka ────────────────────────────────────────────────────────────────
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}

	// ── Metrics ──────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
