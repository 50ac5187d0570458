package router

import (
	"fmt"

	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	// Meter records HTTP server metrics; nil disables them
	Meter          metric.Meter
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	TrustedProxies []string
}

// NewEngine creates a gin engine with the global middleware chain:
// request id, tracing, metrics, request logging, recovery, CORS and body limit.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.HTTPMetrics(cfg.Meter, log),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)
	return engine, nil
}
