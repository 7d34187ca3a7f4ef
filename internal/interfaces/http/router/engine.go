package router

import (
	"net/http"

	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/logger"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/dto"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig selects the middleware installed on the gin engine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	// Meter records HTTP metrics; nil disables them
	Meter          metric.Meter
	CORS           middleware.CORSConfig
	BodyLimit      int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with the standard middleware chain:
// recovery, request id, tracing, request logging, metrics, CORS, security
// headers and the body limit. Unknown routes answer with the JSON envelope.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = middleware.DefaultTracingConfig().ServiceName
	}
	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = middleware.DefaultBodyLimit
	}

	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: serviceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{Meter: cfg.Meter, Logger: log}),
		middleware.CORS(cfg.CORS),
		middleware.Secure(),
		middleware.BodyLimit(bodyLimit),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotAllowed, "Method not allowed", middleware.GetRequestID(c)))
	})

	return engine, nil
}
