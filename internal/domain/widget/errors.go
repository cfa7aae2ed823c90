package widget

import (
	"errors"
	"fmt"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrClassNotFound  = errors.New("class not found")
	ErrModelNotFound  = errors.New("model not found")
	ErrNotModelClass  = errors.New("not a model class")
	ErrNotViewClass   = errors.New("not a view class")
	ErrNoView         = errors.New("model has no view")

	ErrCyclicReference = errors.New("cyclic widget reference")
	ErrViewTooDeep     = errors.New("widget views nested too deeply")
)

// ModuleNotFoundError reports a module that neither the built-in namespaces
// nor the external loader could provide.
type ModuleNotFoundError struct {
	Module  string
	Version string
	Cause   error
}

func (e *ModuleNotFoundError) Error() string {
	msg := fmt.Sprintf("could not load module %s@%s", e.Module, e.Version)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ModuleNotFoundError) Unwrap() error { return e.Cause }

// Is matches ErrModuleNotFound.
func (e *ModuleNotFoundError) Is(target error) bool {
	return target == ErrModuleNotFound
}

// ClassNotFoundError reports a module that lacks the requested export.
type ClassNotFoundError struct {
	Class   string
	Module  string
	Version string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("class %s not found in module %s@%s", e.Class, e.Module, e.Version)
}

// Is matches ErrClassNotFound.
func (e *ClassNotFoundError) Is(target error) bool {
	return target == ErrClassNotFound
}
