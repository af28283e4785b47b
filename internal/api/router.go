// Package api exposes the engine over HTTP.
package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/engine"
)

// Config wires the router.
type Config struct {
	Engine       *engine.Engine
	Logger       *zap.Logger
	ServiceName  string
	AllowOrigins []string

	// Health reports backing-store health for /healthz. Optional.
	Health func(ctx context.Context) error
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	service := cfg.ServiceName
	if service == "" {
		service = "blueninja"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(service))
	router.Use(requestLogger(logger))
	router.Use(cors.New(corsCfg))

	h := &handler{engine: cfg.Engine, logger: logger, health: cfg.Health}

	router.GET("/healthz", h.healthz)

	v1 := router.Group("/v1")
	{
		learners := v1.Group("/learners/:learner")
		learners.POST("/batches", h.generateBatch)
		learners.GET("/batches/:date", h.getBatch)
		learners.GET("/streak", h.getStreak)
		learners.GET("/progress", h.getProgress)
		learners.PUT("/profile", h.putProfile)

		learners.POST("/sessions/:subject", h.startSession)
		learners.PUT("/sessions/:subject/progress", h.updateSession)
		learners.POST("/sessions/:subject/answers", h.answerSession)
		learners.DELETE("/sessions/:subject", h.clearSession)

		v1.POST("/missions/:mission/answers", h.submitAnswer)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	})
	return router
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request failed", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}
