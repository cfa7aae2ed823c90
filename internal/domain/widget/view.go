package widget

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/rendermime"
)

// View is the renderable half of a widget.
type View interface {
	Model() *Model
	// Render builds the view's element tree from the model state.
	Render(ctx context.Context) error
	// El returns the root element attached into the host document.
	El() *dom.Element
	// Remove detaches the root element.
	Remove()
}

// Host is the manager surface views use to reach other models.
type Host interface {
	GetModel(ctx context.Context, id string) (*Model, error)
	CreateView(ctx context.Context, model *Model) (View, error)
	RenderMime() *rendermime.Registry
	DescriptionSanitize(html string) string
}

// BaseView carries the model, host and root element shared by all views.
// Its Render is a no-op.
type BaseView struct {
	model *Model
	host  Host
	el    *dom.Element
}

// NewBaseView creates a base view with a root element of the given tag.
func NewBaseView(opts ViewOptions, tag string) *BaseView {
	return &BaseView{
		model: opts.Model,
		host:  opts.Host,
		el:    dom.NewElement(tag),
	}
}

func (v *BaseView) Model() *Model                { return v.model }
func (v *BaseView) Host() Host                   { return v.host }
func (v *BaseView) El() *dom.Element             { return v.el }
func (v *BaseView) Render(context.Context) error { return nil }
func (v *BaseView) Remove()                      { v.el.Remove() }

var _ View = (*BaseView)(nil)
