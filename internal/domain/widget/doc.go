// Package widget defines the core widget types: module references, model and
// view classes, models with synchronized state, views, and the widget state
// document format.
//
// Classes are grouped into modules. A module is looked up by name and version
// and exports classes by name:
//
//	ns := widget.NewNamespace("my-widgets", "1.0.0",
//		widget.NewModelClass("CounterModel", map[string]interface{}{"value": 0}),
//		widget.NewViewClass("CounterView", newCounterView),
//	)
//	cls, ok := ns.Export("CounterModel")
//
// Views are produced asynchronously through a ViewPromise so callers can hand
// over either a finished view (Resolved) or one still being built (Go).
package widget
