package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/htmlmanager/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/embed"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/loader"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/providers/jsmodule"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing widget rendering server",
		zap.String("addr", cfg.Addr()),
		zap.Bool("external_loader", cfg.Loader.Enabled()),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("htmlmanager", logger.Component("tracing"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(middleware.MaxBodySize(int64(cfg.Render.MaxPageBytes)))

	handlers := apihttp.NewHandlers(apihttp.Config{
		Loader: externalLoader(cfg.Loader, logger, metrics),
		Render: embed.Options{
			KeepScripts:  cfg.Render.KeepScripts,
			MaxPageBytes: cfg.Render.MaxPageBytes,
		},
		Logger:  logger.Component("api"),
		Metrics: metrics,
		Tracer:  tracer,
	})
	handlers.Register(router)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           gzhttp.GzipHandler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// externalLoader builds the JavaScript module loader from the configured
// sources, or returns nil when none is configured.
func externalLoader(cfg config.LoaderConfig, logger *logging.Logger, metrics *monitoring.Metrics) loader.Func {
	if !cfg.Enabled() {
		return nil
	}
	log := logger.Component("jsmodule")

	var sources jsmodule.MultiSource
	if cfg.ModulesDir != "" {
		sources = append(sources, jsmodule.NewFileSource(cfg.ModulesDir))
		log.Info("Serving widget modules from directory", zap.String("dir", cfg.ModulesDir))
	}
	if cfg.CDNEnabled {
		cdn := jsmodule.NewCDNSource(cfg.CDNURL, cfg.CDNTimeout, cfg.CDNRate).
			WithBreaker(resilience.Settings{
				OnStateChange: func(name string, from, to resilience.State) {
					log.Warn("Circuit breaker state change",
						zap.String("breaker", name),
						zap.Stringer("from", from),
						zap.Stringer("to", to))
				},
			})
		sources = append(sources, cdn)
		log.Info("Fetching widget modules from CDN", zap.String("url", cfg.CDNURL))
	}

	jsConfig := jsmodule.DefaultConfig()
	jsConfig.Timeout = cfg.ScriptTimeout
	return jsmodule.NewLoader(sources,
		jsmodule.WithConfig(jsConfig),
		jsmodule.WithLogger(log),
		jsmodule.WithMetrics(metrics),
	).Func()
}

// Handler returns the root HTTP handler, including compression.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	err := s.http.Shutdown(ctx)
	s.tracer.Close()
	if err != nil {
		s.logger.Error("Shutdown did not complete", zap.Error(err))
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close shuts down with a bounded grace period and flushes the logger.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if syncErr := s.logger.Close(); syncErr != nil && err == nil {
		err = syncErr
	}
	return err
}
