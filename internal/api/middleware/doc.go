// Package middleware provides the HTTP middleware of the rendering API:
// CORS, per-IP rate limiting and request body limits.
package middleware
