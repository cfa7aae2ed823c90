// Package base provides the @jupyter-widgets/base module: the root model and
// view classes every other widget builds on, plus the layout and style models.
package base

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
)

const (
	ModuleName    = "@jupyter-widgets/base"
	ModuleVersion = "2.0.0"
)

// Layout model attributes. Each maps to the CSS property of the same name
// with underscores replaced by dashes.
var layoutProperties = []string{
	"align_content", "align_items", "align_self",
	"border_top", "border_right", "border_bottom", "border_left",
	"bottom", "display", "flex", "flex_flow",
	"grid_area", "grid_auto_columns", "grid_auto_flow", "grid_auto_rows",
	"grid_column", "grid_gap", "grid_row",
	"grid_template_areas", "grid_template_columns", "grid_template_rows",
	"height", "justify_content", "justify_items", "left",
	"margin", "max_height", "max_width", "min_height", "min_width",
	"object_fit", "object_position", "order", "overflow", "padding",
	"right", "top", "visibility", "width",
}

// Model classes.
var (
	WidgetModel = widget.NewModelClass("WidgetModel", map[string]interface{}{
		widget.KeyModelName:          "WidgetModel",
		widget.KeyModelModule:        ModuleName,
		widget.KeyModelModuleVersion: ModuleVersion,
		widget.KeyViewName:           nil,
		widget.KeyViewModule:         ModuleName,
		widget.KeyViewModuleVersion:  ModuleVersion,
	})

	DOMWidgetModel = WidgetModel.Extend("DOMWidgetModel", map[string]interface{}{
		widget.KeyModelName: "DOMWidgetModel",
		"_dom_classes":      []interface{}{},
		"layout":            nil,
		"tabbable":          nil,
		"tooltip":           nil,
	})

	LayoutModel = WidgetModel.Extend("LayoutModel", layoutDefaults())

	StyleModel = WidgetModel.Extend("StyleModel", map[string]interface{}{
		widget.KeyModelName: "StyleModel",
		widget.KeyViewName:  "StyleView",
	})
)

func layoutDefaults() map[string]interface{} {
	defaults := map[string]interface{}{
		widget.KeyModelName: "LayoutModel",
		widget.KeyViewName:  "LayoutView",
	}
	for _, p := range layoutProperties {
		defaults[p] = nil
	}
	return defaults
}

// Module is the @jupyter-widgets/base namespace.
var Module = widget.NewNamespace(ModuleName, ModuleVersion,
	WidgetModel,
	DOMWidgetModel,
	LayoutModel,
	StyleModel,
	widget.NewViewClass("WidgetView", func(opts widget.ViewOptions) widget.View {
		return widget.NewBaseView(opts, "div")
	}),
	widget.NewViewClass("DOMWidgetView", func(opts widget.ViewOptions) widget.View {
		return NewDOMWidgetView(opts, "div")
	}),
	widget.NewViewClass("LayoutView", func(opts widget.ViewOptions) widget.View {
		return &LayoutView{BaseView: widget.NewBaseView(opts, "div")}
	}),
	widget.NewViewClass("StyleView", func(opts widget.ViewOptions) widget.View {
		return &StyleView{BaseView: widget.NewBaseView(opts, "div")}
	}),
)

// DOMWidgetView is the base of every view that owns a DOM element.
// Embedders call Setup from their Render.
type DOMWidgetView struct {
	*widget.BaseView
}

// NewDOMWidgetView creates a view whose root element has the given tag.
func NewDOMWidgetView(opts widget.ViewOptions, tag string) *DOMWidgetView {
	return &DOMWidgetView{BaseView: widget.NewBaseView(opts, tag)}
}

// Render applies the common DOM state.
func (v *DOMWidgetView) Render(ctx context.Context) error {
	return v.Setup(ctx)
}

// Setup applies _dom_classes, the tooltip and the referenced layout.
func (v *DOMWidgetView) Setup(ctx context.Context) error {
	el := v.El()
	el.AddClass("jupyter-widgets")
	el.AddClass(v.Model().GetStrings("_dom_classes")...)
	if tip := v.Model().GetString("tooltip"); tip != "" {
		el.SetAttribute("title", tip)
	}

	layout, err := v.ReferencedModel(ctx, "layout")
	if err != nil {
		return err
	}
	if layout != nil {
		ApplyLayout(layout, el)
	}
	return nil
}

// ReferencedModel resolves an IPY_MODEL_ reference stored under key.
// It returns nil without error when the key holds no reference.
func (v *DOMWidgetView) ReferencedModel(ctx context.Context, key string) (*widget.Model, error) {
	raw, _ := v.Model().Get(key)
	id, ok := widget.ParseModelRef(raw)
	if !ok {
		return nil, nil
	}
	if v.Host() == nil {
		return nil, fmt.Errorf("resolve %s: view has no host", key)
	}
	m, err := v.Host().GetModel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", key, err)
	}
	return m, nil
}

// ApplyLayout copies the layout model's CSS properties onto el.
func ApplyLayout(layout *widget.Model, el *dom.Element) {
	for _, p := range layoutProperties {
		if value := layout.GetString(p); value != "" {
			el.SetStyle(cssName(p), value)
		}
	}
	// Older layouts carry a single border shorthand.
	if border := layout.GetString("border"); border != "" {
		el.SetStyle("border", border)
	}
}

// ApplyStyle copies style model attributes onto el. props maps attribute
// names to CSS properties.
func ApplyStyle(style *widget.Model, el *dom.Element, props map[string]string) {
	for attr, css := range props {
		if value := style.GetString(attr); value != "" {
			el.SetStyle(css, value)
		}
	}
}

// LayoutView renders a layout model's properties onto its own element.
type LayoutView struct {
	*widget.BaseView
}

func (v *LayoutView) Render(context.Context) error {
	ApplyLayout(v.Model(), v.El())
	return nil
}

// StyleView renders every public string attribute of a style model as CSS.
type StyleView struct {
	*widget.BaseView
}

func (v *StyleView) Render(context.Context) error {
	for key, value := range v.Model().State() {
		s, ok := value.(string)
		if !ok || s == "" || strings.HasPrefix(key, "_") {
			continue
		}
		v.El().SetStyle(cssName(key), s)
	}
	return nil
}

func cssName(attr string) string {
	return strings.ReplaceAll(attr, "_", "-")
}
