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
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Option defines functional options for router configuration.
type Option func(*Router)

// Router holds the process-wide, read-only routing configuration: the
// handler registry, the criteria matcher and the default prefixes. Per-request
// state lives in the Dispatcher returned by [Router.Dispatcher].
//
// Thread-safety: a Router is safe for concurrent use once New returns.
type Router struct {
	registry    handler.Registry
	resolver    *handler.Resolver
	matcher     *criteria.Matcher
	logger      *slog.Logger
	source      Source
	observer    Observer
	diagnostics DiagnosticHandler

	criteriaPrefix string
	handlerPrefix  string
	defaultMode    criteria.Mode
	cacheSize      int
}

// New creates a Router with the given options.
//
// Defaults: an empty [handler.TypeRegistry], the CGI environment as request
// source, no prefixes, [criteria.DefaultMode] for declarative routes and a
// pattern cache of [criteria.DefaultCacheSize].
func New(opts ...Option) (*Router, error) {
	r := &Router{
		logger:      noopLogger,
		defaultMode: criteria.DefaultMode,
		cacheSize:   criteria.DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	if r.registry == nil {
		r.registry = handler.NewRegistry()
	}
	if r.source == nil {
		r.source = EnvSource(nil)
	}
	if r.logger == nil {
		r.logger = noopLogger
	}
	r.resolver = handler.NewResolver(r.registry)
	r.matcher = criteria.NewMatcher(criteria.WithCacheSize(r.cacheSize))

	return r, nil
}

// MustNew creates a new Router and panics if the configuration is invalid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

func (r *Router) validate() error {
	if !r.defaultMode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDefaultMode, uint8(r.defaultMode))
	}
	if r.cacheSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, r.cacheSize)
	}
	return nil
}

// Dispatcher returns a dispatcher for one request. Its RequestContext starts
// with the router's default prefixes and is initialized lazily from the
// router's Source unless [Dispatcher.Init] is called first.
func (r *Router) Dispatcher(ctx context.Context) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	d := &Dispatcher{
		router: r,
		ctx:    ctx,
		id:     uuid.NewString(),
		req:    &RequestContext{},
	}
	d.req.SetCriteriaPrefix(r.criteriaPrefix)
	d.req.SetHandlerPrefix(r.handlerPrefix)
	d.logger = r.logger.With("dispatch_id", d.id)
	return d
}

// Registry returns the handler registry used for resolution.
func (r *Router) Registry() handler.Registry { return r.registry }

// Resolver returns the handler resolver.
func (r *Router) Resolver() *handler.Resolver { return r.resolver }

// Matcher returns the criteria matcher.
func (r *Router) Matcher() *criteria.Matcher { return r.matcher }

// DefaultMode returns the mode applied to declarative routes without one.
func (r *Router) DefaultMode() criteria.Mode { return r.defaultMode }

func (r *Router) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if r.diagnostics != nil {
		r.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
	}
}
