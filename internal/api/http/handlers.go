package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/embed"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/loader"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/manager"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/sanitize"
)

// Response headers set by Render.
const (
	HeaderRendered = "X-Widgets-Rendered"
	HeaderFailed   = "X-Widgets-Failed"
)

const (
	serviceName    = "htmlmanager"
	serviceVersion = "1.0.0"
)

// Config wires the handlers to the rest of the service.
type Config struct {
	// Loader is the external module loader shared by every request. It may
	// be nil, leaving only the built-in namespaces.
	Loader  loader.Func
	Render  embed.Options
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Tracer  *tracing.Tracer
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	loader  loader.Func
	classes *loader.ClassLoader
	render  embed.Options
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	started time.Time
}

// NewHandlers creates a new handler set.
func NewHandlers(cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracing.New(serviceName, logger)
	}
	render := cfg.Render
	render.Logger = logger
	render.Metrics = cfg.Metrics

	return &Handlers{
		loader:  cfg.Loader,
		classes: loader.New(cfg.Loader, loader.WithLogger(logger), loader.WithMetrics(cfg.Metrics)),
		render:  render,
		logger:  logger,
		metrics: cfg.Metrics,
		tracer:  tracer,
		started: time.Now(),
	}
}

// Register mounts every route on router.
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	api := router.Group("/api")
	api.POST("/render", h.Render)
	api.POST("/sanitize", h.Sanitize)
	api.POST("/classes/resolve", h.ResolveClass)
	api.GET("/modules", h.ListModules)
	api.GET("/stats", h.Stats)
}

// Root describes the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"uptime_seconds":  time.Since(h.started).Seconds(),
		"external_loader": h.classes.HasExternal(),
	})
}

// Stats returns the JSON metrics snapshot.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// Render renders every widget in the posted page. The page is the raw request
// body. With ?format=json the full result is returned instead of the HTML;
// ?keep_scripts overrides the configured script handling.
func (h *Handlers) Render(c *gin.Context) {
	page, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	opts := h.render
	if raw := c.Query("keep_scripts"); raw != "" {
		keep, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "keep_scripts must be a boolean"})
			return
		}
		opts.KeepScripts = keep
	}

	span, ctx := h.tracer.StartSpan(c.Request.Context(), "render_page")
	defer func() {
		span.Finish()
		h.tracer.Submit(span)
	}()

	m := manager.New(manager.Options{
		Loader:  h.loader,
		Logger:  h.logger,
		Metrics: h.metrics,
	})
	defer m.ClearState()

	result, err := embed.NewRenderer(m, opts).RenderPage(ctx, page)
	if err != nil {
		span.SetError(err)
		c.JSON(renderStatus(err), gin.H{"error": err.Error()})
		return
	}

	span.SetTag("rendered", strconv.Itoa(result.Rendered()))
	span.SetTag("failed", strconv.Itoa(result.Failed()))
	c.Header(HeaderRendered, strconv.Itoa(result.Rendered()))
	c.Header(HeaderFailed, strconv.Itoa(result.Failed()))

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, result)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
}

func renderStatus(err error) int {
	switch {
	case errors.Is(err, embed.ErrEmptyPage):
		return http.StatusBadRequest
	case errors.Is(err, embed.ErrPageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SanitizeRequest is the body of POST /api/sanitize.
type SanitizeRequest struct {
	HTML string `json:"html"`
	// Policy is "description" (default) or "untrusted".
	Policy string `json:"policy"`
}

// Sanitize filters HTML through a sanitizer policy.
func (h *Handlers) Sanitize(c *gin.Context) {
	var req SanitizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var policy *sanitize.Policy
	switch req.Policy {
	case "", "description":
		policy = sanitize.Description()
	case "untrusted":
		policy = sanitize.Untrusted()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown policy: " + req.Policy})
		return
	}

	h.metrics.RecordSanitize(policy.Name())
	c.JSON(http.StatusOK, gin.H{
		"html":   policy.Sanitize(req.HTML),
		"policy": policy.Name(),
	})
}

// ResolveRequest is the body of POST /api/classes/resolve.
type ResolveRequest struct {
	ModuleName    string `json:"module_name" binding:"required"`
	ModuleVersion string `json:"module_version"`
	ClassName     string `json:"class_name" binding:"required"`
}

// ResolveClass resolves a widget class through the class loader.
func (h *Handlers) ResolveClass(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cls, err := h.classes.Load(c.Request.Context(), req.ClassName, req.ModuleName, req.ModuleVersion)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, widget.ErrModuleNotFound) || errors.Is(err, widget.ErrClassNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"class_name":     cls.ClassName(),
		"kind":           cls.Kind(),
		"module_name":    req.ModuleName,
		"module_version": req.ModuleVersion,
		"builtin":        loader.IsReserved(req.ModuleName),
	})
}

// ModuleInfo describes a built-in namespace.
type ModuleInfo struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Exports []string `json:"exports"`
}

// ListModules lists the reserved widget namespaces.
func (h *Handlers) ListModules(c *gin.Context) {
	namespaces := loader.Namespaces()
	modules := make([]ModuleInfo, 0, len(namespaces))
	for _, ns := range namespaces {
		modules = append(modules, ModuleInfo{
			Name:    ns.Name(),
			Version: ns.Version(),
			Exports: ns.Exports(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}
