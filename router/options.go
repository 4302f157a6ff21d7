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
	"log/slog"

	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

// WithRegistry sets the registry used to resolve class-method handlers.
//
// Example:
//
//	reg := handler.NewRegistry()
//	reg.MustRegister(`App\Handlers\Users`, (*Users)(nil))
//	r := router.MustNew(router.WithRegistry(reg))
func WithRegistry(reg handler.Registry) Option {
	return func(r *Router) {
		r.registry = reg
	}
}

// WithLogger sets the logger for dispatch events. Every dispatcher derives a
// child logger carrying its dispatch_id.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithSource sets where request values come from when a dispatcher is used
// without an explicit Init. The default reads the CGI environment.
func WithSource(src Source) Option {
	return func(r *Router) {
		r.source = src
	}
}

// WithCriteriaPrefix sets the criteria prefix every dispatcher starts with.
func WithCriteriaPrefix(prefix string) Option {
	return func(r *Router) {
		r.criteriaPrefix = prefix
	}
}

// WithHandlerPrefix sets the handler namespace prefix every dispatcher starts with.
func WithHandlerPrefix(prefix string) Option {
	return func(r *Router) {
		r.handlerPrefix = prefix
	}
}

// WithDefaultMode sets the criteria mode applied to declarative routes that
// leave Mode unset. Default: [criteria.ModeLiteralFold].
func WithDefaultMode(mode criteria.Mode) Option {
	return func(r *Router) {
		r.defaultMode = mode
	}
}

// WithPatternCacheSize bounds the number of compiled regex criteria kept.
// Zero selects [criteria.DefaultCacheSize]; negative values fail validation.
func WithPatternCacheSize(size int) Option {
	return func(r *Router) {
		r.cacheSize = size
	}
}

// WithObserver sets the observer notified around every dispatch.
// Use [Observers] to combine several.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		r.observer = o
	}
}

// WithDiagnostics sets a diagnostic handler for the router.
//
// Example with logging:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := router.MustNew(router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = handler
	}
}
