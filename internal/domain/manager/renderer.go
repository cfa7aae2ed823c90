package manager

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/rendermime"
)

// Messages shown in place of a widget that could not be displayed.
const (
	MsgModelNotFound = "Error creating widget: could not find model"
	MsgDisplayFailed = "Error displaying widget"
)

// WidgetRenderer renders widget-view+json payloads by displaying the view of
// the referenced model.
type WidgetRenderer struct {
	manager  *Manager
	mimeType string
	node     *dom.Element
	view     widget.View
}

// NewWidgetRenderer creates a renderer bound to m.
func NewWidgetRenderer(opts rendermime.RendererOptions, m *Manager) *WidgetRenderer {
	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = widget.ViewMimeType
	}
	node := dom.NewElement("div")
	node.AddClass("jupyter-widgets-view")
	return &WidgetRenderer{manager: m, mimeType: mimeType, node: node}
}

// Node returns the element the view is attached under.
func (r *WidgetRenderer) Node() *dom.Element { return r.node }

// View returns the displayed view after a successful render.
func (r *WidgetRenderer) View() widget.View { return r.view }

// RenderModel displays the referenced model's view. On failure the node shows
// an error message and the error is returned.
func (r *WidgetRenderer) RenderModel(ctx context.Context, model *rendermime.MimeModel) error {
	payload, err := widget.ParseViewPayload(model.Data[r.mimeType])
	if err != nil {
		r.fail(MsgModelNotFound, "invalid_payload")
		return err
	}

	wm, err := r.manager.GetModel(ctx, payload.ModelID)
	if err != nil {
		r.fail(MsgModelNotFound, "model_not_found")
		return err
	}

	view, err := r.manager.CreateView(ctx, wm)
	if err != nil {
		r.fail(MsgDisplayFailed, "display_failed")
		return fmt.Errorf("display model %s: %w", payload.ModelID, err)
	}

	r.node.Clear()
	if err := r.manager.DisplayView(ctx, widget.Resolved(view), r.node); err != nil {
		r.fail(MsgDisplayFailed, "display_failed")
		return fmt.Errorf("display model %s: %w", payload.ModelID, err)
	}
	r.view = view
	r.manager.metrics.RecordRender(r.mimeType, "ok")
	return nil
}

func (r *WidgetRenderer) fail(msg, result string) {
	r.node.SetText(msg)
	r.node.AddClass("jupyter-widgets")
	r.manager.metrics.RecordRender(r.mimeType, result)
}

var _ rendermime.Renderer = (*WidgetRenderer)(nil)
