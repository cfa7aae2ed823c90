// Package controls provides the @jupyter-widgets/controls module. Views render
// a static snapshot of their model's state.
package controls

import (
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/builtin/base"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/widget"
)

const (
	ModuleName    = "@jupyter-widgets/controls"
	ModuleVersion = "2.0.0"
)

func controlDefaults(model, view string, extra map[string]interface{}) map[string]interface{} {
	d := map[string]interface{}{
		widget.KeyModelName:          model,
		widget.KeyModelModule:        ModuleName,
		widget.KeyModelModuleVersion: ModuleVersion,
		widget.KeyViewName:           view,
		widget.KeyViewModule:         ModuleName,
		widget.KeyViewModuleVersion:  ModuleVersion,
	}
	for k, v := range extra {
		d[k] = v
	}
	return d
}

// Style models. Their views live in the base module.
var (
	DescriptionStyleModel = base.StyleModel.Extend("DescriptionStyleModel", map[string]interface{}{
		widget.KeyModelName:          "DescriptionStyleModel",
		widget.KeyModelModule:        ModuleName,
		widget.KeyModelModuleVersion: ModuleVersion,
		"description_width":          "",
	})

	SliderStyleModel = DescriptionStyleModel.Extend("SliderStyleModel", map[string]interface{}{
		widget.KeyModelName: "SliderStyleModel",
		"handle_color":      nil,
	})

	ButtonStyleModel = base.StyleModel.Extend("ButtonStyleModel", map[string]interface{}{
		widget.KeyModelName:          "ButtonStyleModel",
		widget.KeyModelModule:        ModuleName,
		widget.KeyModelModuleVersion: ModuleVersion,
		"button_color":               nil,
		"font_family":                nil,
		"font_size":                  nil,
		"font_style":                 nil,
		"font_variant":               nil,
		"font_weight":                "",
		"text_color":                 nil,
		"text_decoration":            nil,
	})
)

// DescriptionModel is the base of every control with a description label.
var DescriptionModel = base.DOMWidgetModel.Extend("DescriptionModel", controlDefaults("DescriptionModel", "", map[string]interface{}{
	widget.KeyViewName:       nil,
	"description":            "",
	"description_allow_html": false,
	"style":                  nil,
}))

// Control model classes.
var (
	IntSliderModel = DescriptionModel.Extend("IntSliderModel", controlDefaults("IntSliderModel", "IntSliderView", map[string]interface{}{
		"value":             0.0,
		"min":               0.0,
		"max":               100.0,
		"step":              1.0,
		"orientation":       "horizontal",
		"readout":           true,
		"readout_format":    "d",
		"continuous_update": true,
		"disabled":          false,
		"behavior":          "drag-tap",
	}))

	FloatSliderModel = IntSliderModel.Extend("FloatSliderModel", controlDefaults("FloatSliderModel", "FloatSliderView", map[string]interface{}{
		"step":           0.1,
		"readout_format": ".2f",
	}))

	ButtonModel = DescriptionModel.Extend("ButtonModel", controlDefaults("ButtonModel", "ButtonView", map[string]interface{}{
		"disabled":     false,
		"icon":         "",
		"button_style": "",
	}))

	CheckboxModel = DescriptionModel.Extend("CheckboxModel", controlDefaults("CheckboxModel", "CheckboxView", map[string]interface{}{
		"value":    false,
		"indent":   true,
		"disabled": false,
	}))

	LabelModel = DescriptionModel.Extend("LabelModel", controlDefaults("LabelModel", "LabelView", map[string]interface{}{
		"value":       "",
		"placeholder": "\u200b",
	}))

	HTMLModel = DescriptionModel.Extend("HTMLModel", controlDefaults("HTMLModel", "HTMLView", map[string]interface{}{
		"value":       "",
		"placeholder": "\u200b",
	}))

	TextModel = DescriptionModel.Extend("TextModel", controlDefaults("TextModel", "TextView", map[string]interface{}{
		"value":             "",
		"placeholder":       "\u200b",
		"disabled":          false,
		"continuous_update": true,
	}))

	BoxModel = base.DOMWidgetModel.Extend("BoxModel", controlDefaults("BoxModel", "BoxView", map[string]interface{}{
		"children":  []interface{}{},
		"box_style": "",
	}))

	HBoxModel = BoxModel.Extend("HBoxModel", controlDefaults("HBoxModel", "HBoxView", nil))
	VBoxModel = BoxModel.Extend("VBoxModel", controlDefaults("VBoxModel", "VBoxView", nil))
)

// Module is the @jupyter-widgets/controls namespace.
var Module = widget.NewNamespace(ModuleName, ModuleVersion,
	DescriptionStyleModel,
	SliderStyleModel,
	ButtonStyleModel,
	DescriptionModel,
	IntSliderModel,
	FloatSliderModel,
	ButtonModel,
	CheckboxModel,
	LabelModel,
	HTMLModel,
	TextModel,
	BoxModel,
	HBoxModel,
	VBoxModel,
	widget.NewViewClass("SliderView", newSliderView),
	widget.NewViewClass("IntSliderView", newSliderView),
	widget.NewViewClass("FloatSliderView", newSliderView),
	widget.NewViewClass("ButtonView", newButtonView),
	widget.NewViewClass("CheckboxView", newCheckboxView),
	widget.NewViewClass("LabelView", newLabelView),
	widget.NewViewClass("HTMLView", newHTMLView),
	widget.NewViewClass("TextView", newTextView),
	widget.NewViewClass("BoxView", newBoxView("")),
	widget.NewViewClass("HBoxView", newBoxView("widget-hbox")),
	widget.NewViewClass("VBoxView", newBoxView("widget-vbox")),
)
