package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/optica-admin/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// SplitHandler registers routes on both the authenticated and the public group.
type SplitHandler interface {
	RegisterRoutes(protected, public *gin.RouterGroup)
}

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Health    Handler
	Auth      Handler
	Documents SplitHandler
	// Resources are the authenticated collection endpoints.
	Resources []Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
	Production     bool
	// Registerer receives the HTTP metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, logger zerolog.Logger, config RouterConfig) *Router {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.MetricsPrefix == "" {
		config.MetricsPrefix = "optica_api"
	}
	middleware.ConfigureBinding()

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  initRouterMetrics(config.Registerer, config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(logger),
		middleware.SecureHeaders(config.Production),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		r.metricsMiddleware(),
		middleware.Timeout(config.RequestTimeout),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}
	if r.handlers.Auth != nil {
		r.handlers.Auth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	if r.handlers.Documents != nil {
		r.handlers.Documents.RegisterRoutes(protected, api)
	}
	for _, h := range r.handlers.Resources {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(reg prometheus.Registerer, prefix string) *routerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &routerMetrics{
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case c.Writer.Status() >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case c.Writer.Status() >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
