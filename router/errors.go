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

package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

var (
	// ErrInvalidRequestData indicates that the request path or method could not
	// be obtained from the caller or the request source.
	ErrInvalidRequestData = errors.New("invalid request data")

	// ErrInvalidMethod indicates a request verb outside the fixed verb table.
	ErrInvalidMethod = errors.New("invalid request method")

	// ErrInvalidMethodMask indicates a route mask that selects no known verb.
	ErrInvalidMethodMask = errors.New("invalid method mask")

	// ErrInvalidCriteriaMode indicates a criterion mode selecting neither
	// literal nor regex evaluation.
	ErrInvalidCriteriaMode = criteria.ErrInvalidMode

	// ErrInvalidCriteriaPattern indicates a regex criterion that does not compile.
	ErrInvalidCriteriaPattern = criteria.ErrInvalidPattern

	// ErrInvalidHandlerRef indicates a malformed handler reference.
	ErrInvalidHandlerRef = handler.ErrInvalidRef

	// ErrHandlerClassNotFound indicates that the handler class is not registered.
	ErrHandlerClassNotFound = handler.ErrClassNotFound

	// ErrHandlerMethodNotFound indicates that the handler class lacks the method.
	ErrHandlerMethodNotFound = handler.ErrMethodNotFound

	// ErrHandlerMethodNotAccessible indicates that the handler method is not public.
	ErrHandlerMethodNotAccessible = handler.ErrMethodNotAccessible

	// ErrHandlerArgumentBinding indicates captured route arguments that do not
	// fit the handler signature.
	ErrHandlerArgumentBinding = handler.ErrArgumentBinding

	// ErrHandlerExecutionFailed indicates that the handler failed while running.
	ErrHandlerExecutionFailed = handler.ErrExecutionFailed

	// ErrInvalidDefaultMode indicates a router default mode that is not a valid
	// criteria mode.
	ErrInvalidDefaultMode = errors.New("invalid default criteria mode")

	// ErrInvalidCacheSize indicates a negative pattern cache size.
	ErrInvalidCacheSize = errors.New("pattern cache size must not be negative")
)

// RequestError reports a request context that could not be established.
type RequestError struct {
	// Kind is ErrInvalidRequestData or ErrInvalidMethod.
	Kind error
	// Field names the missing or invalid input ("path", "method").
	Field string
	// Value is the rejected value, if any.
	Value string
	// Err is the underlying cause, such as a request source failure.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Value != "" {
		b.WriteString(" ")
		b.WriteString(`"` + e.Value + `"`)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind and the cause.
func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// HTTPStatus returns 405 for unknown verbs and 400 otherwise.
func (e *RequestError) HTTPStatus() int {
	if e.Kind == ErrInvalidMethod {
		return http.StatusMethodNotAllowed
	}
	return http.StatusBadRequest
}

// Code returns a machine-readable error code.
func (e *RequestError) Code() string {
	if e.Kind == ErrInvalidMethod {
		return "invalid_method"
	}
	return "invalid_request_data"
}

// IsRequestError reports whether err means the request context could not be
// established.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrInvalidRequestData) || errors.Is(err, ErrInvalidMethod)
}

// IsConfigurationError reports whether err is a route registration mistake:
// an invalid method mask, criteria mode or criteria pattern.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidMethodMask) ||
		errors.Is(err, ErrInvalidCriteriaMode) ||
		errors.Is(err, ErrInvalidCriteriaPattern)
}

// IsResolutionError reports whether a matched route's handler could not be
// resolved or could not be bound to the captured arguments.
func IsResolutionError(err error) bool {
	return handler.IsResolution(err)
}

// IsExecutionError reports whether a resolved handler failed while running.
func IsExecutionError(err error) bool {
	return handler.IsExecution(err)
}
