package jsmodule

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a Source that does not carry the module.
	ErrNotFound = errors.New("module source not found")
	// ErrTimeout is returned when module code exceeds its time budget.
	ErrTimeout = errors.New("script execution timed out")
	// ErrModuleTooLarge is returned when a fetched bundle exceeds the body limit.
	ErrModuleTooLarge = errors.New("module bundle too large")
)

// Config bounds module evaluation.
type Config struct {
	Timeout          time.Duration
	MaxCallStackSize int
	EnableConsole    bool
}

// DefaultConfig returns the default evaluation limits.
func DefaultConfig() Config {
	return Config{
		Timeout:          2 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}

// Script is module source fetched from a Source.
type Script struct {
	Name    string
	Version string
	// Origin names where the code came from, for logs.
	Origin string
	Code   string
}

// packageJSON is the subset of an npm manifest used to locate entry points.
type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main"`
}
