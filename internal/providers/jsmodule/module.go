package jsmodule

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/dom"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/base"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/sanitize"
)

const (
	kindKey   = "__widgetKind"
	kindModel = "model"
	kindView  = "view"

	maxNodeDepth = 64
)

// Tag and attribute names a node description may use. Everything else about
// the markup is left to the module view sanitizer.
var nodeName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// Evaluate runs module code and collects its exports into a namespace.
//
// Module code assigns classes onto exports:
//
//	exports.CounterModel = widgets.model({value: 0, _view_name: "CounterView"});
//	exports.CounterView = widgets.view(function (model) {
//	    return {tag: "span", className: "counter", text: "count " + model.get("value")};
//	});
//
// Exports that are not produced by widgets.model or widgets.view are ignored.
func Evaluate(ctx context.Context, rt *Runtime, script *Script) (*widget.Namespace, error) {
	vm := rt.VM()
	exports := vm.NewObject()
	_ = vm.Set("exports", exports)
	_ = vm.Set("widgets", widgetsObject(vm))

	if _, err := rt.Run(ctx, script.Origin, script.Code); err != nil {
		return nil, err
	}

	keys := exports.Keys()
	sort.Strings(keys)
	classes := make([]widget.Class, 0, len(keys))
	for _, key := range keys {
		obj, ok := exports.Get(key).(*goja.Object)
		if !ok {
			continue
		}
		kind := obj.Get(kindKey)
		if kind == nil {
			continue
		}
		switch kind.String() {
		case kindModel:
			defaults, _ := exportValue(obj.Get("defaults")).(map[string]interface{})
			classes = append(classes, modelClass(key, script, defaults))
		case kindView:
			render, ok := goja.AssertFunction(obj.Get("render"))
			if !ok {
				return nil, fmt.Errorf("%s: view %s has no render function", script.Name, key)
			}
			classes = append(classes, viewClass(key, rt, render))
		}
	}
	return widget.NewNamespace(script.Name, script.Version, classes...), nil
}

func widgetsObject(vm *goja.Runtime) *goja.Object {
	w := vm.NewObject()
	_ = w.Set("model", func(call goja.FunctionCall) goja.Value {
		obj := vm.NewObject()
		_ = obj.Set(kindKey, kindModel)
		defaults := call.Argument(0)
		if goja.IsUndefined(defaults) || goja.IsNull(defaults) {
			defaults = vm.NewObject()
		}
		_ = obj.Set("defaults", defaults)
		return obj
	})
	_ = w.Set("view", func(call goja.FunctionCall) goja.Value {
		obj := vm.NewObject()
		_ = obj.Set(kindKey, kindView)
		_ = obj.Set("render", call.Argument(0))
		return obj
	})
	return w
}

// modelClass derives from DOMWidgetModel so module widgets get layout and
// DOM class handling for free.
func modelClass(name string, script *Script, defaults map[string]interface{}) *widget.ModelClass {
	merged := make(map[string]interface{}, len(defaults)+5)
	for k, v := range defaults {
		merged[k] = v
	}
	merged[widget.KeyModelName] = name
	merged[widget.KeyModelModule] = script.Name
	merged[widget.KeyModelModuleVersion] = script.Version
	if _, ok := defaults[widget.KeyViewModule]; !ok {
		merged[widget.KeyViewModule] = script.Name
	}
	if _, ok := defaults[widget.KeyViewModuleVersion]; !ok {
		merged[widget.KeyViewModuleVersion] = script.Version
	}
	return base.DOMWidgetModel.Extend(name, merged)
}

func viewClass(name string, rt *Runtime, render goja.Callable) *widget.ViewClass {
	return widget.NewViewClass(name, func(opts widget.ViewOptions) widget.View {
		return &scriptView{
			DOMWidgetView: base.NewDOMWidgetView(opts, "div"),
			rt:            rt,
			render:        render,
		}
	})
}

// scriptView renders by calling a module's render function with a read-only
// model proxy and converting the returned node description to elements.
type scriptView struct {
	*base.DOMWidgetView
	rt     *Runtime
	render goja.Callable
}

func (v *scriptView) Render(ctx context.Context) error {
	if err := v.Setup(ctx); err != nil {
		return err
	}
	m := v.Model()
	proxy := map[string]interface{}{
		"id": m.ID(),
		"get": func(key string) interface{} {
			value, _ := m.Get(key)
			return value
		},
		"state": m.State(),
	}

	out, err := v.rt.Call(ctx, v.render, proxy)
	if err != nil {
		return fmt.Errorf("render %s: %w", m.ViewReference(), err)
	}
	if out == nil {
		return nil
	}
	clean := sanitize.DescriptionSanitize
	if v.Host() != nil {
		clean = v.Host().DescriptionSanitize
	}
	node, err := buildNode(out, clean, 0)
	if err != nil {
		return fmt.Errorf("render %s: %w", m.ViewReference(), err)
	}

	markup := sanitize.ModuleView().Sanitize(node.OuterHTML())
	children, err := dom.ParseFragment(markup)
	if err != nil {
		return fmt.Errorf("render %s: %w", m.ViewReference(), err)
	}
	for _, child := range children {
		v.El().AddElement(child)
	}
	return nil
}

// buildNode converts a node description into an element. A description is
// either a string (a text node) or an object with tag, attrs, className,
// style, text, html and children. html is passed through clean.
func buildNode(desc interface{}, clean func(string) string, depth int) (*dom.Element, error) {
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node tree deeper than %d", maxNodeDepth)
	}

	switch d := desc.(type) {
	case string:
		return dom.NewText(d), nil
	case map[string]interface{}:
		tag, _ := d["tag"].(string)
		tag = strings.TrimSpace(tag)
		if tag == "" {
			tag = "div"
		}
		if !nodeName.MatchString(tag) {
			return nil, fmt.Errorf("invalid tag name %q", tag)
		}
		el := dom.NewElement(tag)

		if attrs, ok := d["attrs"].(map[string]interface{}); ok {
			for name, value := range attrs {
				if nodeName.MatchString(name) {
					el.SetAttribute(strings.ToLower(name), fmt.Sprint(value))
				}
			}
		}
		if class, ok := d["className"].(string); ok {
			el.AddClass(strings.Fields(class)...)
		}
		if style, ok := d["style"].(map[string]interface{}); ok {
			for prop, value := range style {
				el.SetStyle(prop, fmt.Sprint(value))
			}
		}
		if text, ok := d["text"].(string); ok {
			el.SetText(text)
		}
		if markup, ok := d["html"].(string); ok {
			if err := el.SetInnerHTML(clean(markup)); err != nil {
				return nil, err
			}
		}
		if children, ok := d["children"].([]interface{}); ok {
			for _, c := range children {
				child, err := buildNode(c, clean, depth+1)
				if err != nil {
					return nil, err
				}
				el.AddElement(child)
			}
		}
		return el, nil
	default:
		return nil, fmt.Errorf("unexpected node %T", desc)
	}
}
