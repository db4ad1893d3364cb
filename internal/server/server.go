package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messagely/config"
	"messagely/internal/handler"
	"messagely/internal/metrics"
	"messagely/internal/middleware"
	"messagely/internal/services"
	"messagely/internal/websocket"
	"messagely/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Message   *handler.MessageHandler
	WebSocket *websocket.Handler
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Auth    *services.AuthService
	Limiter middleware.RateLimiter
	Health  map[string]HealthCheck
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           corsHandler(cfg.CORSAllowedOrigins)(engine),
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Handler is the fully wrapped handler the server listens with.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func (s *Server) SetupRoutes(handlers *Handlers, deps Deps) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.MetricsMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	s.engine.Use(middleware.AuthenticateJWT(deps.Auth))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	s.engine.GET("/health", s.health(deps.Health))
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	authLimit := middleware.AuthRateLimitMiddleware(deps.Limiter)
	auth := s.engine.Group("/auth", authLimit)
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}
	s.engine.POST("/register", authLimit, handlers.Auth.Register)
	s.engine.POST("/login", authLimit, handlers.Auth.Login)

	var listGuard, ownerGuard gin.HandlerFunc = passThrough, passThrough
	if s.config.RequireUserAuth {
		listGuard = middleware.EnsureLoggedIn()
		ownerGuard = middleware.EnsureCorrectUser("username")
	}
	users := s.engine.Group("/users")
	{
		users.GET("", listGuard, handlers.User.List)
		users.GET("/:username", listGuard, handlers.User.Get)
		users.GET("/:username/to", ownerGuard, handlers.User.MessagesTo)
		users.GET("/:username/from", ownerGuard, handlers.User.MessagesFrom)
	}

	messages := s.engine.Group("/messages", middleware.EnsureLoggedIn())
	{
		messages.GET("/:id", handlers.Message.Get)
		messages.POST("", middleware.MessageRateLimitMiddleware(deps.Limiter), handlers.Message.Create)
		messages.POST("/:id/read", handlers.Message.MarkRead)
	}

	if handlers.WebSocket != nil {
		s.engine.GET("/ws", handlers.WebSocket.Connect)
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

func (s *Server) health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down within the
// configured timeout.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		s.logger.Errorf("Error in starting the server: %s", err)
		return err
	case <-quit:
	}

	timeout := s.config.ShutdownTimeout
	s.logger.Infof("Quitting signal received.. Shutting down within %s", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
