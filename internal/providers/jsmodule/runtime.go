package jsmodule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Runtime wraps one goja VM. Every module gets its own runtime, and calls
// into it are serialized because goja is not safe for concurrent use.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	logger *zap.Logger
	module string
	mu     sync.Mutex
}

// NewRuntime creates a runtime with Node globals removed.
func NewRuntime(config Config, logger *zap.Logger, module string) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	vm := goja.New()
	if config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	r := &Runtime{
		vm:     vm,
		config: config,
		logger: logger.With(zap.String("module", module)),
		module: module,
	}
	r.setupGlobals()
	return r
}

// VM exposes the underlying runtime. Callers must hold no expectations
// about concurrent access.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Run evaluates a script under the configured timeout.
func (r *Runtime) Run(ctx context.Context, name, code string) (goja.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stop := r.guard(ctx)
	v, err := r.vm.RunScript(name, code)
	stop()
	if err != nil {
		return nil, r.wrap(err)
	}
	return v, nil
}

// Call invokes fn with the configured timeout. args are converted with
// the VM's ToValue rules.
func (r *Runtime) Call(ctx context.Context, fn goja.Callable, args ...interface{}) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]goja.Value, len(args))
	for i, arg := range args {
		if v, ok := arg.(goja.Value); ok {
			values[i] = v
			continue
		}
		values[i] = r.vm.ToValue(arg)
	}

	stop := r.guard(ctx)
	v, err := fn(goja.Undefined(), values...)
	stop()
	if err != nil {
		return nil, r.wrap(err)
	}
	return exportValue(v), nil
}

// guard interrupts the VM when the timeout fires or ctx ends. The returned
// func stops the watcher and clears an interrupt that arrived after the call
// returned. A call that was cut short reports the cause through its own
// InterruptedError, so a call that completed keeps its result.
func (r *Runtime) guard(ctx context.Context) func() {
	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	done := make(chan struct{})
	result := make(chan error, 1)

	go func() {
		var cause error
		select {
		case <-timer.C:
			cause = ErrTimeout
		case <-ctx.Done():
			cause = ctx.Err()
		case <-done:
		}
		if cause != nil {
			r.vm.Interrupt(cause)
		}
		result <- cause
	}()

	return func() {
		timer.Stop()
		close(done)
		if err := <-result; err != nil {
			r.vm.ClearInterrupt()
		}
	}
}

func (r *Runtime) wrap(err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		if cause, ok := ie.Value().(error); ok {
			return cause
		}
		return ErrTimeout
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fmt.Errorf("%s: %s", r.module, ex.Error())
	}
	return fmt.Errorf("%s: %w", r.module, err)
}

func (r *Runtime) setupGlobals() {
	for _, name := range []string{"require", "process", "module", "global"} {
		_ = r.vm.Set(name, goja.Undefined())
	}

	console := r.vm.NewObject()
	_ = console.Set("log", r.makeConsoleFunc(zap.DebugLevel))
	_ = console.Set("info", r.makeConsoleFunc(zap.InfoLevel))
	_ = console.Set("warn", r.makeConsoleFunc(zap.WarnLevel))
	_ = console.Set("error", r.makeConsoleFunc(zap.ErrorLevel))
	_ = r.vm.Set("console", console)

	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	_ = r.vm.Set("setTimeout", noop)
	_ = r.vm.Set("setInterval", noop)
}

func (r *Runtime) makeConsoleFunc(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !r.config.EnableConsole {
			return goja.Undefined()
		}
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		if ce := r.logger.Check(level, "module console"); ce != nil {
			ce.Write(zap.String("message", strings.Join(parts, " ")))
		}
		return goja.Undefined()
	}
}

// exportValue converts a goja value to plain Go values.
func exportValue(v goja.Value) interface{} {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}
