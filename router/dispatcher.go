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
	"log/slog"

	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

// Result is the outcome of evaluating one route.
type Result struct {
	// Matched reports whether the verb and the criterion matched. It stays
	// true when the matched handler then failed to resolve or run.
	Matched bool
	// Value is the handler's return value.
	Value any
	// Groups are the captured pattern groups passed to the handler.
	Groups []string
	// Target names the resolved handler, "Class@Method" or a function name.
	Target string
	// Stop reports that the run has ended and no further route must be
	// evaluated.
	Stop bool
}

// Dispatcher evaluates routes against one request. It owns the request's
// RequestContext, so prefixes changed on one dispatcher never leak into
// another.
//
// The first error returned by a dispatch is sticky: later calls do nothing
// and return it again, and [Dispatcher.Err] reports it. A terminating
// dispatch stops the run the same way, with later calls returning a Result
// whose Stop is set.
//
// Thread-safety: a Dispatcher belongs to one request and must not be shared
// between goroutines.
type Dispatcher struct {
	router *Router
	ctx    context.Context
	logger *slog.Logger
	id     string
	req    *RequestContext

	stopped bool
	err     error
}

// ID returns the dispatcher's unique id.
func (d *Dispatcher) ID() string { return d.id }

// Context returns the context handlers receive.
func (d *Dispatcher) Context() context.Context { return d.ctx }

// Stopped reports whether a terminating dispatch has ended the run.
func (d *Dispatcher) Stopped() bool { return d.stopped }

// Err returns the first dispatch error, if any.
func (d *Dispatcher) Err() error { return d.err }

// Init explicitly (re)initializes the request context. Fields left empty in
// data are taken from the router's Source.
func (d *Dispatcher) Init(data RequestData) error {
	if err := d.req.Init(d.ctx, data, d.router.source); err != nil {
		return err
	}
	if d.req.RawPath() != d.req.Path() {
		d.router.emit(DiagPathCanonicalized, "request path canonicalized", map[string]any{
			"raw":  d.req.RawPath(),
			"path": d.req.Path(),
		})
	}
	return nil
}

// Request returns the request context, initializing it from the router's
// Source on first use.
func (d *Dispatcher) Request() (*RequestContext, error) {
	if !d.req.Initialized() {
		if err := d.Init(RequestData{}); err != nil {
			return nil, err
		}
	}
	return d.req, nil
}

// CriteriaPrefix returns the request's criteria prefix.
func (d *Dispatcher) CriteriaPrefix() string { return d.req.CriteriaPrefix() }

// SetCriteriaPrefix sets the request's criteria prefix.
func (d *Dispatcher) SetCriteriaPrefix(prefix string) { d.req.SetCriteriaPrefix(prefix) }

// HandlerPrefix returns the request's handler namespace prefix.
func (d *Dispatcher) HandlerPrefix() string { return d.req.HandlerPrefix() }

// SetHandlerPrefix sets the request's handler namespace prefix.
func (d *Dispatcher) SetHandlerPrefix(prefix string) { d.req.SetHandlerPrefix(prefix) }

// Match runs h when the request verb is in mask and c matches the request
// path, passing the captured groups as arguments.
//
// A non-matching route returns a zero Result and a nil error so routes can
// be tried in sequence. An invalid mask or criterion fails immediately, even
// when the verb would not have matched. Resolution and execution failures
// are returned with Matched set.
//
// When terminate is true a successful dispatch ends the run: the Result has
// Stop set and every later call is a no-op.
func (d *Dispatcher) Match(mask MethodMask, c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.match(mask, c, h, terminate, false)
}

// GET is Match restricted to GET requests.
func (d *Dispatcher) GET(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodGet, c, h, terminate)
}

// POST is Match restricted to POST requests.
func (d *Dispatcher) POST(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodPost, c, h, terminate)
}

// PUT is Match restricted to PUT requests.
func (d *Dispatcher) PUT(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodPut, c, h, terminate)
}

// PATCH is Match restricted to PATCH requests.
func (d *Dispatcher) PATCH(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodPatch, c, h, terminate)
}

// DELETE is Match restricted to DELETE requests.
func (d *Dispatcher) DELETE(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodDelete, c, h, terminate)
}

// HEAD is Match restricted to HEAD requests.
func (d *Dispatcher) HEAD(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodHead, c, h, terminate)
}

// OPTIONS is Match restricted to OPTIONS requests.
func (d *Dispatcher) OPTIONS(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodOptions, c, h, terminate)
}

// ANY is Match for every verb.
func (d *Dispatcher) ANY(c criteria.Criterion, h handler.Ref, terminate bool) (Result, error) {
	return d.Match(MethodAny, c, h, terminate)
}

// Route is a declarative route for [Dispatcher.Run].
type Route struct {
	// Methods selects the verbs. Zero means MethodAny.
	Methods MethodMask
	// Pattern is the criterion pattern, or the mount point when Namespace is set.
	Pattern string
	// Mode is the criterion mode. Zero selects the router's default mode.
	Mode criteria.Mode
	// Handler is the handler to run. Ignored for mounts.
	Handler handler.Ref
	// Terminate ends the run after a successful dispatch.
	Terminate bool
	// Namespace, when set, makes the route a namespace mount rooted there.
	Namespace string
}

// Route evaluates one declarative route.
func (d *Dispatcher) Route(rt Route) (Result, error) {
	methods := rt.Methods
	if methods == 0 {
		methods = MethodAny
	}
	if rt.Namespace != "" {
		return d.MountNamespace(rt.Namespace, rt.Pattern, methods, rt.Terminate)
	}
	mode := rt.Mode
	if mode == 0 {
		mode = d.router.defaultMode
	}
	return d.Match(methods, criteria.New(rt.Pattern, mode), rt.Handler, rt.Terminate)
}

// Run evaluates routes in order until one terminates the run or fails.
// It returns the Result of the last route that matched, with Stop set when
// the run ended.
func (d *Dispatcher) Run(routes ...Route) (Result, error) {
	var last Result
	for _, rt := range routes {
		res, err := d.Route(rt)
		if err != nil {
			return res, err
		}
		if res.Matched {
			last = res
		}
		if res.Stop {
			last.Stop = true
			return last, nil
		}
	}
	return last, nil
}

// halted returns the Result and error a call must return when the run is
// already over.
func (d *Dispatcher) halted() (Result, bool, error) {
	if d.err != nil {
		return Result{}, true, d.err
	}
	if d.stopped {
		d.router.emit(DiagDispatchAfterStop, "route evaluated after the run stopped", map[string]any{
			"dispatch_id": d.id,
		})
		return Result{Stop: true}, true, nil
	}
	return Result{}, false, nil
}

func (d *Dispatcher) match(mask MethodMask, c criteria.Criterion, h handler.Ref, terminate, mount bool) (Result, error) {
	if res, done, err := d.halted(); done {
		return res, err
	}

	if !mask.Valid() {
		return Result{}, d.fail(fmt.Errorf("%w: %s", ErrInvalidMethodMask, mask))
	}

	req, err := d.Request()
	if err != nil {
		return Result{}, d.fail(err)
	}

	if err := d.router.matcher.Validate(c, req.criteriaPrefix); err != nil {
		return Result{}, d.fail(err)
	}

	if !mask.Has(req.mask) {
		return Result{}, nil
	}

	m, err := d.router.matcher.Evaluate(c, req.criteriaPrefix, req.path)
	if err != nil {
		return Result{}, d.fail(err)
	}
	if !m.Matched {
		d.logger.DebugContext(d.ctx, "route not matched",
			"criterion", c.String(),
			"path", req.path,
		)
		return Result{}, nil
	}

	return d.dispatch(req, c, h, m.Groups, terminate, mount)
}

func (d *Dispatcher) dispatch(req *RequestContext, c criteria.Criterion, h handler.Ref, groups []string, terminate, mount bool) (Result, error) {
	info := DispatchInfo{
		ID:        d.id,
		Method:    req.method,
		Path:      req.path,
		Route:     c.Pattern,
		Handler:   h.String(),
		Mount:     mount,
		Terminate: terminate,
	}

	ctx := d.ctx
	var state any
	obs := d.router.observer
	if obs != nil {
		ctx, state = obs.OnDispatchStart(ctx, info)
	}

	res := Result{Matched: true, Groups: groups}
	var err error
	res.Value, res.Target, err = d.invoke(ctx, h, req.handlerPrefix, groups)

	if obs != nil {
		obs.OnDispatchEnd(ctx, state, info, err)
	}

	if err != nil {
		res.Value = nil
		d.logger.ErrorContext(ctx, "dispatch failed",
			"route", info.Route,
			"handler", info.Handler,
			"error", err,
		)
		return res, d.fail(err)
	}

	d.logger.InfoContext(ctx, "dispatched",
		"method", info.Method,
		"path", info.Path,
		"route", info.Route,
		"target", res.Target,
		"mount", mount,
	)

	if terminate {
		d.stopped = true
		res.Stop = true
	}
	return res, nil
}

func (d *Dispatcher) invoke(ctx context.Context, h handler.Ref, prefix string, args []string) (any, string, error) {
	target, err := d.router.resolver.Resolve(h, prefix)
	if err != nil {
		return nil, "", err
	}
	v, err := target.Invoke(ctx, args)
	return v, target.String(), err
}

func (d *Dispatcher) fail(err error) error {
	if d.err == nil {
		d.err = err
	}
	return err
}
