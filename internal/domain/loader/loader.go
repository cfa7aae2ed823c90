package loader

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/base"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/controls"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/output"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
)

// Func loads a third-party widget module. It is called for every module
// name outside the reserved namespaces.
type Func func(ctx context.Context, moduleName, moduleVersion string) (widget.Module, error)

// Reserved namespace identifiers.
const (
	BaseNamespace     = base.ModuleName
	ControlsNamespace = controls.ModuleName
	OutputNamespace   = output.ModuleName
)

var builtins = map[string]widget.Module{
	BaseNamespace:     base.Module,
	ControlsNamespace: controls.Module,
	OutputNamespace:   output.Module,
}

const (
	sourceBuiltin  = "builtin"
	sourceExternal = "external"
)

// ClassLoader resolves (class, module, version) triples to widget classes.
// Resolutions are independent; nothing is cached.
type ClassLoader struct {
	external Func
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// Option configures a ClassLoader.
type Option func(*ClassLoader)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *ClassLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(l *ClassLoader) { l.metrics = metrics }
}

// New creates a class loader. external may be nil.
func New(external Func, opts ...Option) *ClassLoader {
	l := &ClassLoader{
		external: external,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HasExternal reports whether an external loader is configured.
func (l *ClassLoader) HasExternal() bool {
	return l.external != nil
}

// Load resolves className from the named module. The reserved namespaces
// always resolve to the linked built-ins whatever version is requested; a
// major version gap is logged, not enforced.
func (l *ClassLoader) Load(ctx context.Context, className, moduleName, moduleVersion string) (widget.Class, error) {
	module, source, err := l.module(ctx, moduleName, moduleVersion)
	if err != nil {
		l.metrics.RecordClassLoad(source, "module_not_found")
		l.logger.Debug("Module resolution failed",
			zap.String("module", moduleName),
			zap.String("version", moduleVersion),
			zap.Error(err))
		return nil, err
	}

	cls, ok := module.Export(className)
	if !ok {
		l.metrics.RecordClassLoad(source, "class_not_found")
		l.logger.Debug("Class not exported",
			zap.String("class", className),
			zap.String("module", moduleName),
			zap.String("version", moduleVersion))
		return nil, &widget.ClassNotFoundError{Class: className, Module: moduleName, Version: moduleVersion}
	}

	result := "ok"
	if source == sourceBuiltin && VersionGap(moduleVersion, module.Version()) {
		result = "version_mismatch"
		l.logger.Warn("Requested version differs from built-in module",
			zap.String("module", moduleName),
			zap.String("requested", moduleVersion),
			zap.String("linked", module.Version()),
			zap.String("class", className))
	}
	l.metrics.RecordClassLoad(source, result)
	return cls, nil
}

func (l *ClassLoader) module(ctx context.Context, moduleName, moduleVersion string) (widget.Module, string, error) {
	if m, ok := builtins[moduleName]; ok {
		return m, sourceBuiltin, nil
	}
	if l.external == nil {
		return nil, sourceExternal, &widget.ModuleNotFoundError{Module: moduleName, Version: moduleVersion}
	}

	m, err := l.external(ctx, moduleName, moduleVersion)
	if err != nil {
		var notFound *widget.ModuleNotFoundError
		if errors.As(err, &notFound) {
			return nil, sourceExternal, err
		}
		return nil, sourceExternal, &widget.ModuleNotFoundError{Module: moduleName, Version: moduleVersion, Cause: err}
	}
	if m == nil {
		return nil, sourceExternal, &widget.ModuleNotFoundError{Module: moduleName, Version: moduleVersion}
	}
	return m, sourceExternal, nil
}

// Namespaces returns the reserved built-in modules sorted by name.
func Namespaces() []widget.Module {
	out := make([]widget.Module, 0, len(builtins))
	for _, m := range builtins {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// IsReserved reports whether moduleName is one of the built-in namespaces.
func IsReserved(moduleName string) bool {
	_, ok := builtins[moduleName]
	return ok
}

// VersionGap reports whether a requested version range names a different
// major version than linked. Unparseable or wildcard requests never gap.
func VersionGap(requested, linked string) bool {
	want, ok := canonical(requested)
	if !ok {
		return false
	}
	have, ok := canonical(linked)
	if !ok {
		return false
	}
	return semver.Major(want) != semver.Major(have)
}

// canonical turns an npm-style version or range ("^2.0.0", "~1.1", "3.x")
// into a semver string with a leading v.
func canonical(v string) (string, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "^~=>< ")
	v = strings.TrimPrefix(v, "v")
	if v == "" || v == "*" {
		return "", false
	}
	if i := strings.IndexAny(v, " |"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	for i, p := range parts {
		if p == "x" || p == "X" || p == "*" {
			parts = parts[:i]
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	s := "v" + strings.Join(parts, ".")
	if !semver.IsValid(s) {
		return "", false
	}
	return s, true
}
