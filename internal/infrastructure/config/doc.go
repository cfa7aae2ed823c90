// Package config provides 12-factor configuration for the widget rendering
// service.
//
// Configuration is loaded from environment variables with defaults. An
// optional YAML file (LoadFile) overlays the environment, and CLI flags
// override both.
//
// Configuration Sections:
//   - Server: HTTP listen address and CORS origins
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting
//   - Loader: External widget module sources and script limits
//   - Render: Page rendering options
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - LOADER_MODULES_DIR, LOADER_CDN_ENABLED, LOADER_CDN_URL,
//     LOADER_CDN_TIMEOUT, LOADER_CDN_RPS, LOADER_SCRIPT_TIMEOUT
//   - RENDER_KEEP_SCRIPTS, RENDER_MAX_PAGE_BYTES
package config
