// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package handler

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrInvalidRef indicates a handler reference that is neither a function
	// nor a well-formed class-method pair.
	ErrInvalidRef = errors.New("invalid handler reference")

	// ErrClassNotFound indicates that the referenced class is not registered.
	ErrClassNotFound = errors.New("handler class not found")

	// ErrMethodNotFound indicates that the class does not declare the method.
	ErrMethodNotFound = errors.New("handler method not found")

	// ErrMethodNotAccessible indicates that the method exists but is not public.
	ErrMethodNotAccessible = errors.New("handler method not accessible")

	// ErrExecutionFailed indicates that the handler failed while running.
	ErrExecutionFailed = errors.New("handler execution failed")

	// ErrArgumentBinding indicates that the captured route arguments do not
	// fit the handler signature. It wraps [ErrArgumentCount] or
	// [ErrArgumentType] and is a resolution failure, not an execution one.
	ErrArgumentBinding = errors.New("handler arguments do not fit the route")

	// ErrArgumentCount indicates that fewer arguments were captured than the
	// handler requires.
	ErrArgumentCount = errors.New("not enough handler arguments")

	// ErrArgumentType indicates that a captured argument could not be
	// converted to the parameter type.
	ErrArgumentType = errors.New("handler argument type mismatch")

	// ErrPanic marks a recovered handler panic.
	ErrPanic = errors.New("handler panicked")

	// ErrEmptyClassPath is returned when registering a class without a path.
	ErrEmptyClassPath = errors.New("empty class path")

	// ErrConflictingRegistration indicates an attempt to register a different
	// type under an existing class path.
	ErrConflictingRegistration = errors.New("conflicting class registration")

	// ErrInvalidRegistration indicates a malformed registration, such as a
	// static member that is not a function.
	ErrInvalidRegistration = errors.New("invalid class registration")
)

// Error describes a failed resolution or invocation.
//
// Kind is one of the package sentinels. Err, when set, is the underlying
// cause (for execution failures, the error returned or panic raised by the
// handler). Both are reachable through errors.Is and errors.As.
type Error struct {
	Kind   error
	Class  string
	Method string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if target := e.target(); target != "" {
		b.WriteString(": ")
		b.WriteString(target)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// HTTPStatus returns 500 unless an execution failure wraps a cause that
// declares its own status.
func (e *Error) HTTPStatus() int {
	if e.Kind == ErrExecutionFailed {
		var st interface{ HTTPStatus() int }
		if errors.As(e.Err, &st) {
			return st.HTTPStatus()
		}
	}
	return http.StatusInternalServerError
}

// Code returns a machine-readable error code.
func (e *Error) Code() string {
	switch e.Kind {
	case ErrInvalidRef:
		return "handler_invalid_reference"
	case ErrClassNotFound:
		return "handler_class_not_found"
	case ErrMethodNotFound:
		return "handler_method_not_found"
	case ErrMethodNotAccessible:
		return "handler_method_not_accessible"
	case ErrArgumentBinding:
		return "handler_argument_binding"
	case ErrExecutionFailed:
		return "handler_execution_failed"
	default:
		return "handler_error"
	}
}

func (e *Error) target() string {
	switch {
	case e.Class != "" && e.Method != "":
		return e.Class + "@" + e.Method
	case e.Class != "":
		return e.Class
	default:
		return e.Method
	}
}

// IsResolution reports whether err is a resolution failure: an invalid
// reference, a missing class or method, an inaccessible method or route
// arguments that cannot be bound to the handler.
func IsResolution(err error) bool {
	return errors.Is(err, ErrInvalidRef) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrMethodNotFound) ||
		errors.Is(err, ErrMethodNotAccessible) ||
		errors.Is(err, ErrArgumentBinding)
}

// IsExecution reports whether err is a failure raised by a running handler.
func IsExecution(err error) bool {
	return errors.Is(err, ErrExecutionFailed)
}
