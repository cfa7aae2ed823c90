// Package http exposes the widget rendering service over HTTP.
//
// Routes:
//   - GET  /health               liveness and loader status
//   - GET  /metrics              Prometheus exposition
//   - POST /api/render           page HTML in, rendered HTML out
//   - POST /api/sanitize         {html, policy} to sanitized {html}
//   - POST /api/classes/resolve  class lookup through the class loader
//   - GET  /api/modules          built-in widget namespaces
//   - GET  /api/stats            JSON metrics snapshot
//
// Every render request gets its own Manager, so model stores never leak
// between pages; the external module loader is shared.
package http
