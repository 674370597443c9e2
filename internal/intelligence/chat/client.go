// Package chat answers free-form export and compliance questions through an
// OpenAI-compatible chat-completion API.
package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/database/redis"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// CompletionAPI is the subset of the OpenAI client the service uses.
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a go-openai client for cfg. An empty BaseURL keeps
// the library default.
func NewOpenAIClient(cfg config.LLMConfig) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(oc)
}

// Service builds the prompt, calls the completion API and optionally caches
// replies.
type Service struct {
	api     CompletionAPI
	cfg     config.LLMConfig
	cache   redis.Cache
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// Option customises a Service.
type Option func(*Service)

// WithCache stores replies in cache for ttl.
func WithCache(cache redis.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService returns a chat service backed by api.
func NewService(api CompletionAPI, cfg config.LLMConfig, opts ...Option) *Service {
	if cfg.Model == "" {
		cfg.Model = config.DefaultLLMModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.DefaultLLMMaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = config.DefaultSystemPrompt
	}
	s := &Service{api: api, cfg: cfg, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SystemMessage returns the system prompt with the optional caller context
// appended.
func (s *Service) SystemMessage(contextText string) string {
	if contextText == "" {
		return s.cfg.SystemPrompt
	}
	return s.cfg.SystemPrompt + "\nContext: " + contextText
}

type cachedReply struct {
	Response string `json:"response"`
}

// Reply returns the assistant's answer to query. Any failure of the
// completion API, including an empty choice list, is an UpstreamError.
func (s *Service) Reply(ctx context.Context, query, contextText string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New(errors.CodeValidation, "user_query must not be empty")
	}
	system := s.SystemMessage(contextText)

	if s.cache == nil {
		return s.complete(ctx, system, query)
	}

	var out cachedReply
	loaded := false
	err := s.cache.GetOrSet(ctx, CacheKey(s.cfg.Model, system, query), &out, s.ttl, func(ctx context.Context) (interface{}, error) {
		loaded = true
		reply, err := s.complete(ctx, system, query)
		if err != nil {
			return nil, err
		}
		return cachedReply{Response: reply}, nil
	})
	prometheus.RecordCacheAccess(s.metrics, "chat", !loaded)
	if err != nil {
		return "", err
	}
	return out.Response, nil
}

func (s *Service) complete(ctx context.Context, system, query string) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		prometheus.RecordLLMCall(s.metrics, s.cfg.Model, false, elapsed, 0, 0)
		s.logger.Error("chat completion failed",
			logging.String("model", s.cfg.Model),
			logging.Duration("elapsed", elapsed),
			logging.Err(err),
		)
		return "", errors.Upstream(err, "chat completion failed")
	}
	prometheus.RecordLLMCall(s.metrics, s.cfg.Model, true, elapsed, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		s.logger.Error("chat completion returned no choices", logging.String("model", s.cfg.Model))
		return "", errors.Upstream(nil, "chat completion returned no choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("chat completion",
		logging.String("model", s.cfg.Model),
		logging.Int("prompt_tokens", resp.Usage.PromptTokens),
		logging.Int("completion_tokens", resp.Usage.CompletionTokens),
		logging.Duration("elapsed", elapsed),
	)
	return reply, nil
}

// CacheKey derives the reply cache key from the model and both prompts.
func CacheKey(model, system, query string) string {
	h := sha256.New()
	for _, part := range []string{model, system, query} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "chat:" + hex.EncodeToString(h.Sum(nil))
}
