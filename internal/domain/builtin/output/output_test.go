package output

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/rendermime"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/sanitize"
)

type registryHost struct {
	registry *rendermime.Registry
}

func (h *registryHost) GetModel(context.Context, string) (*widget.Model, error) {
	return nil, widget.ErrModelNotFound
}

func (h *registryHost) CreateView(context.Context, *widget.Model) (widget.View, error) {
	return nil, widget.ErrNoView
}

func (h *registryHost) RenderMime() *rendermime.Registry { return h.registry }

func (h *registryHost) DescriptionSanitize(s string) string { return sanitize.DescriptionSanitize(s) }

func renderOutputs(t *testing.T, host widget.Host, outputs []interface{}) *View {
	t.Helper()
	state := OutputModel.Defaults()
	state["outputs"] = outputs
	m := widget.NewModel("out", state, nil)

	cls, ok := Module.Export("OutputView")
	require.True(t, ok)
	view := cls.(*widget.ViewClass).New(widget.ViewOptions{Model: m, Host: host})
	require.NoError(t, view.Render(context.Background()))
	return view.(*View)
}

func TestOutputViewRendersOutputs(t *testing.T) {
	host := &registryHost{registry: rendermime.NewRegistry(rendermime.Options{
		InitialFactories: rendermime.StandardFactories(),
	})}

	view := renderOutputs(t, host, []interface{}{
		map[string]interface{}{"output_type": "stream", "name": "stdout", "text": "hello\n"},
		map[string]interface{}{"output_type": "stream", "name": "stderr", "text": "oops"},
		map[string]interface{}{
			"output_type": "display_data",
			"data":        map[string]interface{}{"text/html": "<b>bold</b>", "text/plain": "bold"},
		},
		map[string]interface{}{
			"output_type": "error",
			"ename":       "ValueError",
			"evalue":      "bad",
			"traceback":   []interface{}{"Traceback", "ValueError: bad"},
		},
		map[string]interface{}{"output_type": "unknown"},
		"not an output",
	})

	el := view.El()
	assert.True(t, el.HasClass("widget-output"))
	area := el.Children[0]
	require.Len(t, area.Children, 5)

	html := el.OuterHTML()
	assert.Contains(t, html, "<pre>hello\n</pre>")
	assert.Contains(t, html, "jp-OutputArea-stderr")
	assert.Contains(t, html, "<b>bold</b>")
	assert.Contains(t, html, "Traceback\nValueError: bad")
}

func TestOutputViewUnrenderable(t *testing.T) {
	host := &registryHost{registry: rendermime.NewRegistry(rendermime.Options{})}
	view := renderOutputs(t, host, []interface{}{
		map[string]interface{}{"output_type": "display_data", "data": map[string]interface{}{"text/plain": "x"}},
	})

	html := view.El().OuterHTML()
	assert.Contains(t, html, "jp-OutputArea-error")
	assert.Contains(t, html, "no renderer")
}

func TestOutputViewWithoutHost(t *testing.T) {
	view := renderOutputs(t, nil, []interface{}{
		map[string]interface{}{"output_type": "stream", "name": "stdout", "text": "x"},
	})
	assert.Contains(t, view.El().Text(), "No renderer available")
}
