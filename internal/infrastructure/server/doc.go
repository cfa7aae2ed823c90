// Package server assembles the HTTP service: middleware, handlers, the
// external module loader and graceful shutdown.
package server
