// Package manager is the composition root of the widget pipeline.
//
// A Manager owns a class loader (built-in namespaces plus an optional external
// loader), a model store and a rendering registry. The registry carries a
// WidgetRenderer at rank 0 so widget-view+json payloads in any output bundle
// display the referenced model's view.
//
// Example Usage:
//
//	m := manager.New(manager.Options{Loader: jsLoader.Load, Logger: logger})
//	if err := m.SetState(ctx, stateDoc); err != nil {
//		logger.Warn("some models failed", zap.Error(err))
//	}
//	node, _, err := m.RenderMime().Render(ctx, &rendermime.MimeModel{
//		Data: map[string]interface{}{widget.ViewMimeType: payload},
//	}, rendermime.SafeAny)
//
// Displaying a view directly:
//
//	err := m.DisplayView(ctx, widget.Go(ctx, buildView), target)
package manager
