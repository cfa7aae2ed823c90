/*
Package embed renders the widgets of an exported notebook page on the server.

A page carries one or more application/vnd.jupyter.widget-state+json scripts
holding serialized models and one application/vnd.jupyter.widget-view+json
script per displayed widget. RenderPage loads all state into a Manager and
replaces each view script's position with a widget-subarea containing the
rendered view, or the error message when rendering fails.

	r := embed.NewRenderer(manager.New(opts), embed.Options{KeepScripts: true})
	result, err := r.RenderPage(ctx, page)
*/
package embed
