package controls

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/base"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/sanitize"
)

var buttonStyleProperties = map[string]string{
	"button_color":    "background-color",
	"font_family":     "font-family",
	"font_size":       "font-size",
	"font_style":      "font-style",
	"font_variant":    "font-variant",
	"font_weight":     "font-weight",
	"text_color":      "color",
	"text_decoration": "text-decoration",
}

// descriptionView renders the description label shared by most controls.
type descriptionView struct {
	*base.DOMWidgetView
	label *dom.Element
}

func newDescriptionView(opts widget.ViewOptions) *descriptionView {
	return &descriptionView{DOMWidgetView: base.NewDOMWidgetView(opts, "div")}
}

// setup applies the common DOM state and builds the label.
func (v *descriptionView) setup(ctx context.Context) error {
	if err := v.Setup(ctx); err != nil {
		return err
	}

	v.label = dom.NewElement("label")
	v.label.AddClass("widget-label")
	desc := v.Model().GetString("description")
	if desc == "" {
		v.label.SetStyle("display", "none")
	} else {
		v.label.SetAttribute("title", desc)
		if err := v.setDescription(v.label, desc); err != nil {
			return err
		}
	}

	style, err := v.ReferencedModel(ctx, "style")
	if err != nil {
		return err
	}
	if style != nil {
		base.ApplyStyle(style, v.label, map[string]string{"description_width": "width"})
	}
	v.El().AddElement(v.label)
	return nil
}

// setDescription writes desc into el, as sanitized markup when allowed.
func (v *descriptionView) setDescription(el *dom.Element, desc string) error {
	if !v.Model().GetBool("description_allow_html") {
		el.SetText(desc)
		return nil
	}
	if v.Host() != nil {
		return el.SetInnerHTML(v.Host().DescriptionSanitize(desc))
	}
	return el.SetInnerHTML(sanitize.DescriptionSanitize(desc))
}

func (v *descriptionView) disable(el *dom.Element) {
	if v.Model().GetBool("disabled") {
		el.SetAttribute("disabled", "")
	}
}

type sliderView struct {
	*descriptionView
}

func newSliderView(opts widget.ViewOptions) widget.View {
	return &sliderView{descriptionView: newDescriptionView(opts)}
}

func (v *sliderView) Render(ctx context.Context) error {
	if err := v.setup(ctx); err != nil {
		return err
	}
	m := v.Model()
	el := v.El()

	if m.GetString("orientation") == "vertical" {
		el.AddClass("widget-inline-vbox", "widget-slider", "widget-vslider")
	} else {
		el.AddClass("widget-inline-hbox", "widget-slider", "widget-hslider")
	}

	value, _ := m.GetFloat("value")
	format := m.GetString("readout_format")

	input := dom.NewElement("input")
	input.SetAttribute("type", "range")
	for _, key := range []string{"min", "max", "step"} {
		if n, ok := m.GetFloat(key); ok {
			input.SetAttribute(key, strconv.FormatFloat(n, 'f', -1, 64))
		}
	}
	input.SetAttribute("value", strconv.FormatFloat(value, 'f', -1, 64))
	v.disable(input)

	container := dom.NewElement("div")
	container.AddClass("slider-container")
	container.AddElement(input)
	el.AddElement(container)

	style, err := v.ReferencedModel(ctx, "style")
	if err != nil {
		return err
	}
	if style != nil {
		base.ApplyStyle(style, input, map[string]string{"handle_color": "accent-color"})
	}

	if m.GetBool("readout") {
		readout := dom.NewElement("div")
		readout.AddClass("widget-readout")
		readout.SetText(formatNumber(value, format))
		el.AddElement(readout)
	}
	return nil
}

type buttonView struct {
	*base.DOMWidgetView
}

func newButtonView(opts widget.ViewOptions) widget.View {
	return &buttonView{DOMWidgetView: base.NewDOMWidgetView(opts, "button")}
}

func (v *buttonView) Render(ctx context.Context) error {
	if err := v.Setup(ctx); err != nil {
		return err
	}
	m := v.Model()
	el := v.El()
	el.AddClass("jupyter-button", "widget-button")
	if s := m.GetString("button_style"); s != "" {
		el.AddClass("mod-" + s)
	}
	if m.GetBool("disabled") {
		el.SetAttribute("disabled", "")
	}

	desc := m.GetString("description")
	if el.GetAttribute("title") == "" && desc != "" {
		el.SetAttribute("title", desc)
	}
	if icon := m.GetString("icon"); icon != "" {
		i := dom.NewElement("i")
		i.AddClass("fa", "fa-"+icon)
		el.AddElement(i)
		if desc != "" {
			i.AddClass("center")
		}
	}
	if desc != "" {
		el.AddElement(dom.NewText(desc))
	}

	style, err := v.ReferencedModel(ctx, "style")
	if err != nil {
		return err
	}
	if style != nil {
		base.ApplyStyle(style, el, buttonStyleProperties)
	}
	return nil
}

type checkboxView struct {
	*descriptionView
}

func newCheckboxView(opts widget.ViewOptions) widget.View {
	return &checkboxView{descriptionView: newDescriptionView(opts)}
}

func (v *checkboxView) Render(ctx context.Context) error {
	if err := v.setup(ctx); err != nil {
		return err
	}
	m := v.Model()
	el := v.El()
	el.AddClass("widget-inline-hbox", "widget-checkbox")

	// The description sits next to the box; the outer label only reserves
	// the indent.
	v.label.Clear()
	v.label.RemoveAttribute("title")
	if m.GetBool("indent") {
		v.label.SetStyle("display", "")
	} else {
		v.label.SetStyle("display", "none")
	}

	wrapper := dom.NewElement("label")
	wrapper.AddClass("widget-label-basic")
	input := dom.NewElement("input")
	input.SetAttribute("type", "checkbox")
	if m.GetBool("value") {
		input.SetAttribute("checked", "")
	}
	v.disable(input)
	wrapper.AddElement(input)

	span := dom.NewElement("span")
	if desc := m.GetString("description"); desc != "" {
		span.SetAttribute("title", desc)
		if err := v.setDescription(span, desc); err != nil {
			return err
		}
	}
	wrapper.AddElement(span)
	el.AddElement(wrapper)
	return nil
}

type labelView struct {
	*descriptionView
}

func newLabelView(opts widget.ViewOptions) widget.View {
	return &labelView{descriptionView: newDescriptionView(opts)}
}

func (v *labelView) Render(ctx context.Context) error {
	if err := v.setup(ctx); err != nil {
		return err
	}
	el := v.El()
	el.AddClass("widget-inline-hbox", "widget-label")

	content := dom.NewElement("div")
	content.AddClass("widget-label-content")
	content.SetText(valueOrPlaceholder(v.Model()))
	el.AddElement(content)
	return nil
}

type htmlView struct {
	*descriptionView
}

func newHTMLView(opts widget.ViewOptions) widget.View {
	return &htmlView{descriptionView: newDescriptionView(opts)}
}

func (v *htmlView) Render(ctx context.Context) error {
	if err := v.setup(ctx); err != nil {
		return err
	}
	el := v.El()
	el.AddClass("widget-inline-hbox", "widget-html")

	content := dom.NewElement("div")
	content.AddClass("widget-html-content")
	if err := content.SetInnerHTML(sanitize.Untrusted().Sanitize(valueOrPlaceholder(v.Model()))); err != nil {
		return fmt.Errorf("html value: %w", err)
	}
	el.AddElement(content)
	return nil
}

type textView struct {
	*descriptionView
}

func newTextView(opts widget.ViewOptions) widget.View {
	return &textView{descriptionView: newDescriptionView(opts)}
}

func (v *textView) Render(ctx context.Context) error {
	if err := v.setup(ctx); err != nil {
		return err
	}
	m := v.Model()
	el := v.El()
	el.AddClass("widget-inline-hbox", "widget-text")

	input := dom.NewElement("input")
	input.SetAttribute("type", "text")
	input.AddClass("widget-input")
	input.SetAttribute("value", m.GetString("value"))
	if p := m.GetString("placeholder"); p != "" {
		input.SetAttribute("placeholder", p)
	}
	v.disable(input)
	el.AddElement(input)
	return nil
}

type boxView struct {
	*base.DOMWidgetView
	class    string
	children []widget.View
}

func newBoxView(class string) func(opts widget.ViewOptions) widget.View {
	return func(opts widget.ViewOptions) widget.View {
		return &boxView{DOMWidgetView: base.NewDOMWidgetView(opts, "div"), class: class}
	}
}

func (v *boxView) Render(ctx context.Context) error {
	if err := v.Setup(ctx); err != nil {
		return err
	}
	el := v.El()
	el.AddClass("widget-container", "widget-box")
	if v.class != "" {
		el.AddClass(v.class)
	}
	if s := v.Model().GetString("box_style"); s != "" {
		el.AddClass("alert", "alert-"+s)
	}

	raw, _ := v.Model().Get("children")
	refs, _ := raw.([]interface{})
	for i, ref := range refs {
		id, ok := widget.ParseModelRef(ref)
		if !ok {
			return fmt.Errorf("child %d: invalid model reference %v", i, ref)
		}
		if v.Host() == nil {
			return fmt.Errorf("child %d: view has no host", i)
		}
		child, err := v.Host().GetModel(ctx, id)
		if err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
		view, err := v.Host().CreateView(ctx, child)
		if err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
		v.children = append(v.children, view)
		el.AddElement(view.El())
	}
	return nil
}

// Remove detaches the box and its children.
func (v *boxView) Remove() {
	for _, child := range v.children {
		child.Remove()
	}
	v.DOMWidgetView.Remove()
}

func valueOrPlaceholder(m *widget.Model) string {
	if s := m.GetString("value"); s != "" {
		return s
	}
	return m.GetString("placeholder")
}

// formatNumber renders a slider readout using a d3-style format subset:
// "d", ".Nf", ".Ne", ".Ng" and ".N%".
func formatNumber(v float64, format string) string {
	spec := strings.TrimPrefix(format, ".")
	if spec == "" {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	verb := spec[len(spec)-1]
	prec := -1
	if digits := spec[:len(spec)-1]; digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		prec = n
	}

	switch verb {
	case 'f', 'e', '%':
		prec = clamp(prec, 0, 20)
	case 'g':
		prec = clamp(prec, 1, 21)
	}

	switch verb {
	case 'f', 'e', 'g':
		return strconv.FormatFloat(v, verb, prec, 64)
	case '%':
		return strconv.FormatFloat(v*100, 'f', prec, 64) + "%"
	case 'd':
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

// clamp limits a precision to d3's range for the verb. -1 keeps the shortest
// exact form.
func clamp(prec, lo, hi int) int {
	if prec < 0 {
		return prec
	}
	if prec < lo {
		return lo
	}
	if prec > hi {
		return hi
	}
	return prec
}
