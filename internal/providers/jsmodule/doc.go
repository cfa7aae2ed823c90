/*
Package jsmodule loads third-party widget modules written in JavaScript.

# Overview

Widget state can name classes from npm packages other than the built-in
@jupyter-widgets namespaces. The Loader fetches such a package's bundle
from a Source and evaluates it in an isolated goja runtime. The bundle
registers its classes on exports through a small widgets API:

	exports.CounterModel = widgets.model({value: 0, _view_name: "CounterView"});
	exports.CounterView = widgets.view(function (model) {
	    return {tag: "span", text: "count " + model.get("value")};
	});

Model classes extend DOMWidgetModel. View render functions receive a
read-only model proxy (id, get, state) and return a node description that
is converted to elements. Event handler attributes, script-capable tags and
javascript: URLs are dropped; html content goes through the host's
description sanitizer.

# Sources

  - FileSource: npm-style package directories found with a ** glob
  - CDNSource: {base}{name}@{version} over HTTP with retries
  - MultiSource: ordered fallback across sources

# Limits

Each module gets its own runtime. Node globals (require, process, module)
are removed, timers are no-ops, and every evaluation or render call is
interrupted after Config.Timeout or when its context ends. Console output
goes to the configured zap logger.
*/
package jsmodule
