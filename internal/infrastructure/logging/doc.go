// Package logging builds the service's zap loggers from configuration.
package logging
