// Package loader resolves widget classes from module references.
//
// Resolution order:
//   - the reserved namespaces (@jupyter-widgets/base, /controls, /output)
//     resolve to the linked built-in modules
//   - any other module goes to the external Func, when one is configured
//   - otherwise the load fails with a *widget.ModuleNotFoundError
//
// Once a module is found the class is looked up by export name; a missing
// export fails with a *widget.ClassNotFoundError.
//
// Example Usage:
//
//	l := loader.New(jsLoader.Load, loader.WithLogger(logger))
//	cls, err := l.Load(ctx, "SliderView", "@jupyter-widgets/controls", "2.0.0")
//	if errors.Is(err, widget.ErrModuleNotFound) {
//		// no namespace and no loader could provide the module
//	}
package loader
