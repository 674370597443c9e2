package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, []string{DefaultCORSOrigin}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, DefaultDatasetPath, cfg.Dataset.Path)
	assert.Equal(t, int64(DefaultSeed), cfg.Dataset.Seed)
	assert.Equal(t, DefaultTrees, cfg.Dataset.Trees)
	assert.InDelta(t, DefaultTestRatio, cfg.Dataset.TestRatio, 1e-9)
	assert.Equal(t, DefaultLLMMaxTokens, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, float64(cfg.LLM.Temperature), 1e-6)
	assert.Contains(t, cfg.LLM.SystemPrompt, "EcoExpand AI")
	assert.Equal(t, DefaultInsightLabels, cfg.NLP.InsightLabels)
	assert.Equal(t, DefaultGraphBackend, cfg.Graph.Backend)
	assert.Equal(t, DefaultChatCacheTTL, cfg.Redis.ChatCacheTTL)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 9090, ReadTimeout: time.Second},
		Dataset: DatasetConfig{Clusters: 5, Seed: 7},
		CORS:    CORSConfig{AllowedOrigins: []string{"https://example.org"}},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5, cfg.Dataset.Clusters)
	assert.Equal(t, int64(7), cfg.Dataset.Seed)
	assert.Equal(t, []string{"https://example.org"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
}

func TestApplyDefaults_InsightLabelsNotAliased(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.NLP.InsightLabels[0] = "PERSON"
	assert.Equal(t, "ORG", DefaultInsightLabels[0])
}
