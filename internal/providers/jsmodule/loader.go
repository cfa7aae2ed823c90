package jsmodule

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/loader"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
)

// Loader resolves third-party widget modules by fetching their code from a
// Source and evaluating it in a fresh Runtime.
type Loader struct {
	source  Source
	config  Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfig overrides the evaluation limits.
func WithConfig(config Config) Option {
	return func(l *Loader) { l.config = config }
}

// WithLogger routes module console output and load logs.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records load timings.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(l *Loader) { l.metrics = metrics }
}

// NewLoader creates a loader over source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source: source,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and evaluates a module. It has the shape of loader.Func.
func (l *Loader) Load(ctx context.Context, name, version string) (widget.Module, error) {
	timer := monitoring.NewTimer(l.metrics, "js_module_load")

	script, err := l.source.Fetch(ctx, name, version)
	if err != nil {
		timer.Stop("fetch_error")
		return nil, err
	}
	if script.Name == "" {
		script.Name = name
	}
	if script.Version == "" {
		script.Version = version
	}

	rt := NewRuntime(l.config, l.logger, name)
	ns, err := Evaluate(ctx, rt, script)
	if err != nil {
		timer.Stop("eval_error")
		l.logger.Warn("Module evaluation failed",
			zap.String("module", name),
			zap.String("origin", script.Origin),
			zap.Error(err))
		return nil, fmt.Errorf("evaluate %s: %w", script.Origin, err)
	}

	elapsed := timer.Stop("success")
	l.logger.Debug("Module loaded",
		zap.String("module", name),
		zap.String("version", script.Version),
		zap.String("origin", script.Origin),
		zap.Strings("exports", ns.Exports()),
		zap.Duration("duration", elapsed))
	return ns, nil
}

// Func adapts the loader for loader.New.
func (l *Loader) Func() loader.Func {
	return l.Load
}
