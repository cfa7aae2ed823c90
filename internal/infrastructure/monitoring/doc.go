/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the widget
HTML manager, tracking HTTP requests, class resolution, mime rendering and
sanitization. Metrics live on a private registry so several collectors can
coexist in one process (tests create one per case).

# Features

- HTTP request metrics (latency, throughput, size)
- Class loads by source (builtin, external) and result
- Renders by mime type and result
- Views displayed and fragments sanitized
- Operation timers for page renders and module loads
- Uptime

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record pipeline events
	metrics.RecordClassLoad("builtin", "ok")
	metrics.IncViewsDisplayed()

	// Time operations
	timer := monitoring.NewTimer(metrics, "render_page")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
