// Package main is the entry point for the widget rendering server.
//
// The server takes HTML pages exported from notebooks, restores the embedded
// widget state and replaces every widget view script with rendered markup.
//
// The server provides:
//   - POST /api/render for whole pages
//   - POST /api/sanitize and /api/classes/resolve for single lookups
//   - Prometheus metrics and a JSON stats snapshot
//   - Optional third-party widget modules from a directory or a CDN
//
// Configuration:
//   - Environment variables (12-factor)
//   - A YAML file via -config (overrides env vars)
//   - CLI flags (override both)
//
// Usage:
//
//	./server -port 8000 -modules-dir ./widgets
//	./server -config htmlmanager.yaml -log-level debug
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
