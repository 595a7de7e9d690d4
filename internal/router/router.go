package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge/backend/internal/handler"
	"github.com/bloodbridge/backend/internal/middleware"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
}

// NewRouter assembles the gin engine: core middleware first, then every
// feature handler under /api/v1, plus the operational endpoints.
func NewRouter(h *handler.Handler, cfg Config, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.RequestTimeout}),
		middleware.CORS(cfg.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	api := engine.Group("/api/v1")
	api.GET("/health", h.HealthCheck)
	for _, fh := range handlers {
		fh.RegisterRoutes(api)
	}

	engine.GET("/metrics", h.MetricsHandler)

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
