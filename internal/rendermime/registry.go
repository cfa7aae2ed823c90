package rendermime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
)

// ErrNoRenderer is returned when no factory can render a mime type or bundle.
var ErrNoRenderer = errors.New("no renderer")

// DefaultRank is used when neither the caller nor the factory gives a rank.
const DefaultRank = 100

// SafeMode controls how PreferredMimeType treats unsafe factories.
type SafeMode int

const (
	// SafeAny picks the highest priority mime type regardless of safety.
	SafeAny SafeMode = iota
	// SafePrefer picks the best safe mime type, falling back to any.
	SafePrefer
	// SafeEnsure only picks safe mime types.
	SafeEnsure
)

// MimeModel is one output bundle to render.
type MimeModel struct {
	Data     map[string]interface{}
	Metadata map[string]interface{}
	Trusted  bool
}

// Renderer renders a mime model into its node.
type Renderer interface {
	RenderModel(ctx context.Context, model *MimeModel) error
	Node() *dom.Element
}

// RendererOptions are passed to a factory when creating a renderer.
type RendererOptions struct {
	MimeType  string
	Sanitizer Sanitizer
}

// Sanitizer cleans untrusted HTML.
type Sanitizer interface {
	Sanitize(html string) string
}

// Factory creates renderers for a set of mime types.
type Factory struct {
	Safe           bool
	MimeTypes      []string
	DefaultRank    int
	CreateRenderer func(opts RendererOptions) Renderer
}

type rankPair struct {
	rank int
	id   int
}

// Registry maps mime types to renderer factories by priority.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Factory
	ranks     map[string]rankPair
	nextID    int
	sanitizer Sanitizer
	types     []string
}

// Options configure a new Registry.
type Options struct {
	InitialFactories []*Factory
	Sanitizer        Sanitizer
}

// NewRegistry creates a registry seeded with the initial factories.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		factories: make(map[string]*Factory),
		ranks:     make(map[string]rankPair),
		sanitizer: opts.Sanitizer,
	}
	for _, f := range opts.InitialFactories {
		r.AddFactory(f, -1)
	}
	return r
}

// AddFactory registers f for its mime types. A lower rank wins; a negative
// rank falls back to the factory default. Equal ranks keep insertion order.
func (r *Registry) AddFactory(f *Factory, rank int) {
	if rank < 0 {
		rank = f.DefaultRank
		if rank <= 0 {
			rank = DefaultRank
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range f.MimeTypes {
		r.factories[mt] = f
		r.ranks[mt] = rankPair{rank: rank, id: r.nextID}
		r.nextID++
	}
	r.types = nil
}

// RemoveMimeType unregisters a mime type.
func (r *Registry) RemoveMimeType(mimeType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.factories, mimeType)
	delete(r.ranks, mimeType)
	r.types = nil
}

// GetFactory returns the factory registered for mimeType.
func (r *Registry) GetFactory(mimeType string) (*Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[mimeType]
	return f, ok
}

// MimeTypes returns the registered mime types ordered by priority.
func (r *Registry) MimeTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.types == nil {
		types := make([]string, 0, len(r.ranks))
		for mt := range r.ranks {
			types = append(types, mt)
		}
		sort.Slice(types, func(i, j int) bool {
			a, b := r.ranks[types[i]], r.ranks[types[j]]
			if a.rank != b.rank {
				return a.rank < b.rank
			}
			return a.id < b.id
		})
		r.types = types
	}
	return append([]string(nil), r.types...)
}

// PreferredMimeType picks the mime type of bundle to render.
// It returns "" when nothing in the bundle can be rendered.
func (r *Registry) PreferredMimeType(bundle map[string]interface{}, mode SafeMode) string {
	var fallback string
	for _, mt := range r.MimeTypes() {
		if _, ok := bundle[mt]; !ok {
			continue
		}
		if mode == SafeAny {
			return mt
		}
		f, _ := r.GetFactory(mt)
		if f != nil && f.Safe {
			return mt
		}
		if mode == SafePrefer && fallback == "" {
			fallback = mt
		}
	}
	return fallback
}

// CreateRenderer creates a renderer for mimeType.
func (r *Registry) CreateRenderer(mimeType string) (Renderer, error) {
	f, ok := r.GetFactory(mimeType)
	if !ok {
		return nil, fmt.Errorf("%w for mime type: %s", ErrNoRenderer, mimeType)
	}
	return f.CreateRenderer(RendererOptions{
		MimeType:  mimeType,
		Sanitizer: r.sanitizer,
	}), nil
}

// Render picks the preferred mime type of model, renders it and returns the
// renderer node together with the chosen mime type.
func (r *Registry) Render(ctx context.Context, model *MimeModel, mode SafeMode) (*dom.Element, string, error) {
	mt := r.PreferredMimeType(model.Data, mode)
	if mt == "" {
		return nil, "", fmt.Errorf("%w for mime bundle", ErrNoRenderer)
	}
	renderer, err := r.CreateRenderer(mt)
	if err != nil {
		return nil, mt, err
	}
	if err := renderer.RenderModel(ctx, model); err != nil {
		return renderer.Node(), mt, fmt.Errorf("render %s: %w", mt, err)
	}
	return renderer.Node(), mt, nil
}
