package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/guiyumin/vlink/internal/core/resolver"
	"golang.org/x/time/rate"
)

// Response is the standard API response structure for non-resolve endpoints
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// failure mirrors the resolve endpoint's error shape
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Options configures the HTTP server
type Options struct {
	Port      int
	APIKey    string
	RateLimit float64 // resolve requests per second, 0 disables limiting
	Burst     int
	CORS      bool
	Logger    *log.Logger
}

// OptionsFromConfig maps the server section of the config file
func OptionsFromConfig(cfg config.ServerConfig) Options {
	return Options{
		Port:      cfg.Port,
		APIKey:    cfg.APIKey,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		CORS:      cfg.CORSEnabled(),
	}
}

// Server is the HTTP adapter in front of the resolver service
type Server struct {
	port    int
	apiKey  string
	cors    bool
	service *resolver.Service
	limiter *rate.Limiter
	logger  *log.Logger
	server  *http.Server
	engine  *gin.Engine
}

// NewServer creates a server; routes are ready before Start is called
func NewServer(service *resolver.Service, opts Options) *Server {
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		port:    opts.Port,
		apiKey:  opts.APIKey,
		cors:    opts.CORS,
		service: service,
		logger:  opts.Logger,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(math.Ceil(opts.RateLimit))
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.setupEngine()
	return s
}

func (s *Server) setupEngine() {
	gin.SetMode(gin.ReleaseMode)

	s.engine = gin.New()

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestIDMiddleware())
	s.engine.Use(s.loggingMiddleware())
	if s.cors {
		s.engine.Use(s.corsMiddleware())
	}

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/platforms", s.handlePlatforms)

	resolve := api.Group("/resolve")
	if s.apiKey != "" {
		resolve.Use(s.authMiddleware())
	}
	if s.limiter != nil {
		resolve.Use(s.rateLimitMiddleware())
	}
	resolve.GET("", s.handleResolve)
	resolve.POST("", s.handleResolve)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "not found",
		})
	})
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if !config.Exists() {
		s.logger.Printf("no config file found, using defaults (run 'vlink init' to create one)")
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // a resolution may walk several 30s upstream calls
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Printf("Starting vlink server on port %d", s.port)
	if s.apiKey != "" {
		s.logger.Printf("API key authentication enabled")
	}
	if s.limiter != nil {
		s.logger.Printf("Rate limit: %.2f req/s (burst %d)", float64(s.limiter.Limit()), s.limiter.Burst())
	}

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Middleware

const requestIDHeader = "X-Request-ID"

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Printf("%s %s %s %d %s", c.GetString("request_id"), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if subtle.ConstantTimeCompare([]byte(c.GetHeader("X-API-Key")), []byte(s.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure{
				Success: false,
				Error:   "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, failure{
				Success: false,
				Error:   "Too many requests",
			})
			return
		}
		c.Next()
	}
}
