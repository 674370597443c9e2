// Package http wires the gin router, middleware chain and server lifecycle of
// the EcoExpand API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/internal/interfaces/http/handlers"
	"github.com/turtacn/EcoExpand-AI/internal/interfaces/http/middleware"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// RouterConfig holds all dependencies needed to build the router. A nil
// handler leaves its routes unmounted.
type RouterConfig struct {
	// Handlers
	RiskHandler   *handlers.RiskHandler
	ChatHandler   *handlers.ChatHandler
	NLPHandler    *handlers.NLPHandler
	GraphHandler  *handlers.GraphHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	CORS        config.CORSConfig
	Logging     middleware.LoggingConfig
	MaxBodySize int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Order matters: Recovery sits inside logging and metrics so a panic is
	// still logged and counted as a 500.
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.Recovery(cfg.Logger, cfg.Metrics))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.BodyLimit(cfg.MaxBodySize))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Code: string(errors.CodeNotFound), Detail: "Not Found"})
	})

	registerHealthRoutes(r, cfg.HealthHandler)
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerRiskRoutes(api, cfg.RiskHandler)
	registerChatRoutes(api, cfg.ChatHandler)
	registerNLPRoutes(api, cfg.NLPHandler)
	registerGraphRoutes(api, cfg.GraphHandler)

	registerLegacyRoutes(r, cfg)

	return r
}

func registerHealthRoutes(r gin.IRoutes, h *handlers.HealthHandler) {
	if h == nil {
		return
	}
	r.GET("/", h.Welcome)
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

func registerRiskRoutes(r gin.IRoutes, h *handlers.RiskHandler) {
	if h == nil {
		return
	}
	r.POST("/analyze", h.Analyze)
	r.GET("/countries", h.Countries)
	r.GET("/feature-importance", h.FeatureImportance)
	r.GET("/risk/summary", h.Summary)
}

func registerChatRoutes(r gin.IRoutes, h *handlers.ChatHandler) {
	if h == nil {
		return
	}
	r.POST("/chat", h.Chat)
}

func registerNLPRoutes(r gin.IRoutes, h *handlers.NLPHandler) {
	if h == nil {
		return
	}
	r.POST("/extract-key-phrases", h.KeyPhrases)
	r.POST("/summarize-text", h.Summarize)
	r.POST("/extract-insights", h.Insights)
}

func registerGraphRoutes(r gin.IRoutes, h *handlers.GraphHandler) {
	if h == nil {
		return
	}
	r.POST("/graph/entities", h.AddEntities)
	r.POST("/graph/relations", h.AddRelations)
	r.POST("/graph/bulk", h.BulkUpload)
	r.GET("/graph", h.Get)
	r.GET("/graph/image", h.Image)
	r.DELETE("/graph", h.Clear)
}

// registerLegacyRoutes mounts the un-prefixed paths the existing web client
// still calls. Their trailing-slash forms are served through gin's redirect.
func registerLegacyRoutes(r gin.IRoutes, cfg RouterConfig) {
	registerRiskRoutes(r, cfg.RiskHandler)
	registerChatRoutes(r, cfg.ChatHandler)
	registerNLPRoutes(r, cfg.NLPHandler)
	if h := cfg.GraphHandler; h != nil {
		r.POST("/add_entities", h.AddEntities)
		r.POST("/add_relations", h.AddRelations)
		r.GET("/get_graph", h.Get)
		r.GET("/visualize_graph", h.Image)
		r.POST("/bulk_upload", h.BulkUpload)
		r.DELETE("/clear_graph", h.Clear)
	}
}
