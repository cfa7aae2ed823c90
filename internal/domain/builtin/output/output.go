// Package output provides the @jupyter-widgets/output module. An output
// widget captures notebook outputs and displays them through the host's
// rendering registry, so nested widget payloads render as widgets again.
package output

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/base"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/rendermime"
)

const (
	ModuleName    = "@jupyter-widgets/output"
	ModuleVersion = "1.0.0"
)

// OutputModel holds a list of nbformat outputs.
var OutputModel = base.DOMWidgetModel.Extend("OutputModel", map[string]interface{}{
	widget.KeyModelName:          "OutputModel",
	widget.KeyModelModule:        ModuleName,
	widget.KeyModelModuleVersion: ModuleVersion,
	widget.KeyViewName:           "OutputView",
	widget.KeyViewModule:         ModuleName,
	widget.KeyViewModuleVersion:  ModuleVersion,
	"msg_id":                     "",
	"outputs":                    []interface{}{},
})

// Module is the @jupyter-widgets/output namespace.
var Module = widget.NewNamespace(ModuleName, ModuleVersion,
	OutputModel,
	widget.NewViewClass("OutputView", func(opts widget.ViewOptions) widget.View {
		return &View{DOMWidgetView: base.NewDOMWidgetView(opts, "div")}
	}),
)

// View renders each output in its own output area.
type View struct {
	*base.DOMWidgetView
}

func (v *View) Render(ctx context.Context) error {
	if err := v.Setup(ctx); err != nil {
		return err
	}
	el := v.El()
	el.AddClass("widget-output")

	area := dom.NewElement("div")
	area.AddClass("jp-OutputArea")
	el.AddElement(area)

	raw, _ := v.Model().Get("outputs")
	outputs, _ := raw.([]interface{})
	for _, item := range outputs {
		out, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		area.AddElement(v.renderOutput(ctx, out))
	}
	return nil
}

// renderOutput never fails: a broken output renders as an error message in
// place, leaving its siblings intact.
func (v *View) renderOutput(ctx context.Context, out map[string]interface{}) *dom.Element {
	child := dom.NewElement("div")
	child.AddClass("jp-OutputArea-child")
	wrapper := dom.NewElement("div")
	wrapper.AddClass("jp-OutputArea-output")
	child.AddElement(wrapper)

	model := toMimeModel(out)
	if model == nil {
		return child
	}
	if v.Host() == nil || v.Host().RenderMime() == nil {
		wrapper.SetText("No renderer available")
		return child
	}

	node, _, err := v.Host().RenderMime().Render(ctx, model, rendermime.SafeAny)
	if node != nil {
		wrapper.AddElement(node)
	}
	if err != nil && node == nil {
		pre := dom.NewElement("pre")
		pre.SetText(err.Error())
		wrapper.AddClass("jp-OutputArea-error")
		wrapper.AddElement(pre)
	}
	return child
}

// toMimeModel converts one nbformat output to a mime bundle.
func toMimeModel(out map[string]interface{}) *rendermime.MimeModel {
	outputType, _ := out["output_type"].(string)
	switch outputType {
	case "stream":
		name, _ := out["name"].(string)
		mt := "application/vnd.jupyter.stdout"
		if name == "stderr" {
			mt = "application/vnd.jupyter.stderr"
		}
		return &rendermime.MimeModel{Data: map[string]interface{}{mt: out["text"]}}
	case "display_data", "execute_result", "update_display_data":
		data, _ := out["data"].(map[string]interface{})
		metadata, _ := out["metadata"].(map[string]interface{})
		return &rendermime.MimeModel{Data: data, Metadata: metadata}
	case "error":
		ename, _ := out["ename"].(string)
		evalue, _ := out["evalue"].(string)
		lines := []string{ename + ": " + evalue}
		if tb, ok := out["traceback"].([]interface{}); ok && len(tb) > 0 {
			lines = lines[:0]
			for _, l := range tb {
				if s, ok := l.(string); ok {
					lines = append(lines, s)
				}
			}
		}
		return &rendermime.MimeModel{Data: map[string]interface{}{
			"application/vnd.jupyter.stderr": strings.Join(lines, "\n"),
		}}
	default:
		return nil
	}
}
