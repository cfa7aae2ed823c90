package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/comm"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/loader"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/rendermime"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/sanitize"
)

var (
	ErrNoTarget = errors.New("display target element is nil")
	ErrNilView  = errors.New("view promise resolved to nothing")
)

// Options configure a Manager. Every field is optional.
type Options struct {
	// Loader resolves modules outside the reserved namespaces.
	Loader loader.Func
	// DescriptionSanitizer replaces the default description policy.
	DescriptionSanitizer func(html string) string
	Logger               *zap.Logger
	Metrics              *monitoring.Metrics
}

// ModelOptions name the class of a new model.
type ModelOptions struct {
	ModelID            string
	ModelName          string
	ModelModule        string
	ModelModuleVersion string
}

// Manager connects the widget class loader, the model store and the
// rendering registry.
type Manager struct {
	loader     loader.Func
	classes    *loader.ClassLoader
	renderMime *rendermime.Registry
	sanitizer  func(html string) string
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	mu     sync.RWMutex
	models map[string]*widget.Model // Protected by mu
}

// New creates a manager and registers the widget renderer into a registry
// seeded with the standard factories.
func New(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		loader:    opts.Loader,
		sanitizer: opts.DescriptionSanitizer,
		logger:    logger,
		metrics:   opts.Metrics,
		models:    make(map[string]*widget.Model),
	}
	if m.sanitizer == nil {
		m.sanitizer = sanitize.DescriptionSanitize
	}
	m.classes = loader.New(opts.Loader, loader.WithLogger(logger), loader.WithMetrics(opts.Metrics))

	m.renderMime = rendermime.NewRegistry(rendermime.Options{
		InitialFactories: rendermime.StandardFactories(),
		Sanitizer:        untrustedSanitizer{metrics: opts.Metrics},
	})
	m.renderMime.AddFactory(&rendermime.Factory{
		Safe:      false,
		MimeTypes: []string{widget.ViewMimeType},
		CreateRenderer: func(ro rendermime.RendererOptions) rendermime.Renderer {
			return NewWidgetRenderer(ro, m)
		},
	}, 0)
	return m
}

// RenderMime returns the rendering registry.
func (m *Manager) RenderMime() *rendermime.Registry { return m.renderMime }

// LoadClass resolves a widget class.
func (m *Manager) LoadClass(ctx context.Context, className, moduleName, moduleVersion string) (widget.Class, error) {
	return m.classes.Load(ctx, className, moduleName, moduleVersion)
}

// DisplayView waits for the view and attaches its root element under el.
func (m *Manager) DisplayView(ctx context.Context, p widget.ViewPromise, el *dom.Element) error {
	if el == nil {
		return ErrNoTarget
	}
	if p == nil {
		return ErrNilView
	}
	view, err := p.Await(ctx)
	if err != nil {
		return err
	}
	if view == nil {
		return ErrNilView
	}
	if err := dom.Attach(view.El(), el); err != nil {
		return err
	}
	m.metrics.IncViewsDisplayed()
	return nil
}

// GetCommInfo lists open comms. There is no transport, so it is always empty.
func (m *Manager) GetCommInfo(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

// CreateComm returns an inert comm whatever the arguments.
func (m *Manager) CreateComm(ctx context.Context, targetName, modelID string, data, metadata map[string]interface{}, buffers [][]byte) (comm.Comm, error) {
	return comm.NewNop(targetName, modelID), nil
}

// DescriptionSanitize cleans HTML descriptions with the configured policy.
func (m *Manager) DescriptionSanitize(html string) string {
	m.metrics.RecordSanitize("description")
	return m.sanitizer(html)
}

// NewModel loads the model class, creates its comm and registers the model.
// A missing ModelID gets a random one.
func (m *Manager) NewModel(ctx context.Context, opts ModelOptions, state map[string]interface{}) (*widget.Model, error) {
	cls, err := m.LoadClass(ctx, opts.ModelName, opts.ModelModule, opts.ModelModuleVersion)
	if err != nil {
		return nil, err
	}
	modelClass, ok := cls.(*widget.ModelClass)
	if !ok {
		return nil, fmt.Errorf("%w: %s", widget.ErrNotModelClass, opts.ModelName)
	}

	id := opts.ModelID
	if id == "" {
		id = uuid.New().String()
	}
	c, err := m.CreateComm(ctx, comm.TargetName, id, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create comm: %w", err)
	}

	merged := modelClass.Defaults()
	for k, v := range state {
		merged[k] = v
	}
	merged[widget.KeyModelName] = opts.ModelName
	merged[widget.KeyModelModule] = opts.ModelModule
	merged[widget.KeyModelModuleVersion] = opts.ModelModuleVersion

	model := widget.NewModel(id, merged, c)
	m.mu.Lock()
	m.models[id] = model
	m.mu.Unlock()
	return model, nil
}

// GetModel returns a registered model.
func (m *Manager) GetModel(ctx context.Context, id string) (*widget.Model, error) {
	model := m.lookup(id)
	if model == nil {
		return nil, fmt.Errorf("%w: %s", widget.ErrModelNotFound, id)
	}
	return model, nil
}

func (m *Manager) lookup(id string) *widget.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.models[id]
}

// HasModel reports whether id is registered.
func (m *Manager) HasModel(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.models[id]
	return ok
}

// CreateView builds and renders the view named by the model's view keys.
func (m *Manager) CreateView(ctx context.Context, model *widget.Model) (widget.View, error) {
	ref := model.ViewReference()
	if ref.ClassName == "" {
		return nil, fmt.Errorf("%w: %s", widget.ErrNoView, model.ID())
	}
	cls, err := m.LoadClass(ctx, ref.ClassName, ref.ModuleName, ref.ModuleVersion)
	if err != nil {
		return nil, err
	}
	viewClass, ok := cls.(*widget.ViewClass)
	if !ok {
		return nil, fmt.Errorf("%w: %s", widget.ErrNotViewClass, ref.ClassName)
	}

	ctx, err = widget.EnterView(ctx, model.ID())
	if err != nil {
		return nil, err
	}
	view := viewClass.New(widget.ViewOptions{Model: model, Host: m})
	if err := view.Render(ctx); err != nil {
		return nil, fmt.Errorf("render %s: %w", ref, err)
	}
	return view, nil
}

// SetState creates a model for every entry of doc. An id already registered
// with the same model class is updated in place. Models that fail are
// skipped and their errors joined; the rest stay registered.
func (m *Manager) SetState(ctx context.Context, doc *widget.StateDocument) error {
	if doc == nil {
		return nil
	}
	if doc.VersionMajor != 0 && doc.VersionMajor != widget.StateVersionMajor {
		m.logger.Warn("Unexpected widget state version",
			zap.Int("version_major", doc.VersionMajor),
			zap.Int("version_minor", doc.VersionMinor))
	}

	ids := make([]string, 0, len(doc.State))
	for id := range doc.State {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		s := doc.State[id]
		if existing := m.lookup(id); existing != nil && existing.ModelReference() == s.Reference() {
			existing.SetState(s.State)
			continue
		}
		_, err := m.NewModel(ctx, ModelOptions{
			ModelID:            id,
			ModelName:          s.ModelName,
			ModelModule:        s.ModelModule,
			ModelModuleVersion: s.ModelModuleVersion,
		}, s.State)
		if err != nil {
			m.logger.Warn("Failed to restore model", zap.String("model_id", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("model %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// GetState serializes every registered model.
func (m *Manager) GetState() *widget.StateDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := &widget.StateDocument{
		VersionMajor: widget.StateVersionMajor,
		VersionMinor: widget.StateVersionMinor,
		State:        make(map[string]widget.ModelState, len(m.models)),
	}
	for id, model := range m.models {
		ref := model.ModelReference()
		doc.State[id] = widget.ModelState{
			ModelName:          ref.ClassName,
			ModelModule:        ref.ModuleName,
			ModelModuleVersion: ref.ModuleVersion,
			State:              model.State(),
		}
	}
	return doc
}

// ClearState closes every comm and forgets all models.
func (m *Manager) ClearState() {
	m.mu.Lock()
	models := m.models
	m.models = make(map[string]*widget.Model)
	m.mu.Unlock()

	for _, model := range models {
		if err := model.Comm().Close(); err != nil {
			m.logger.Debug("Comm close failed", zap.String("model_id", model.ID()), zap.Error(err))
		}
	}
}

// untrustedSanitizer counts untrusted HTML outputs passing the UGC policy.
type untrustedSanitizer struct {
	metrics *monitoring.Metrics
}

func (s untrustedSanitizer) Sanitize(html string) string {
	s.metrics.RecordSanitize(sanitize.Untrusted().Name())
	return sanitize.Untrusted().Sanitize(html)
}

var _ widget.Host = (*Manager)(nil)
