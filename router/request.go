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
	"path"
	"strings"
)

// RequestContext is the routing view of one request: the normalized path,
// the verb and its mask bit, plus the request-scoped criteria and handler
// prefixes.
//
// Path, method and mask are fixed once Init succeeds and only change through
// another Init. The prefixes may be changed at any time.
//
// Thread-safety: a RequestContext belongs to one request and must not be
// shared between goroutines.
type RequestContext struct {
	raw    string
	path   string
	method string
	mask   MethodMask
	host   string
	port   int

	criteriaPrefix string
	handlerPrefix  string

	initialized bool
}

// NewRequestContext returns an initialized context for data. Missing fields
// are taken from src when src is non-nil.
func NewRequestContext(ctx context.Context, data RequestData, src Source) (*RequestContext, error) {
	rc := &RequestContext{}
	if err := rc.Init(ctx, data, src); err != nil {
		return nil, err
	}
	return rc, nil
}

// Init (re)initializes path, method, mask, host and port.
//
// Fields missing from data, host and port included, are requested from src.
// A failing src is only fatal when the path or the method is missing. If
// either is still missing after the merge the call fails with
// [ErrInvalidRequestData]; a verb outside the fixed table fails with
// [ErrInvalidMethod]. On failure the context is left exactly as it was. The prefixes are never touched.
//
// Calling Init twice with the same inputs yields the same state.
func (rc *RequestContext) Init(ctx context.Context, data RequestData, src Source) error {
	if !data.complete() && src != nil {
		ambient, err := src.RequestData(ctx)
		switch {
		case err == nil:
			data = data.merge(ambient)
		case !data.routable():
			return &RequestError{Kind: ErrInvalidRequestData, Err: err}
		}
	}

	if data.Path == "" {
		return &RequestError{Kind: ErrInvalidRequestData, Field: "path"}
	}
	if strings.TrimSpace(data.Method) == "" {
		return &RequestError{Kind: ErrInvalidRequestData, Field: "method"}
	}

	method := strings.ToUpper(strings.TrimSpace(data.Method))
	mask, ok := MethodMaskFor(method)
	if !ok {
		return &RequestError{Kind: ErrInvalidMethod, Field: "method", Value: data.Method}
	}

	rc.raw = data.Path
	rc.path = NormalizePath(data.Path)
	rc.method = method
	rc.mask = mask
	rc.host = data.Host
	rc.port = data.Port
	rc.initialized = true
	return nil
}

// Initialized reports whether Init has succeeded at least once.
func (rc *RequestContext) Initialized() bool { return rc.initialized }

// Path returns the normalized request path.
func (rc *RequestContext) Path() string { return rc.path }

// RawPath returns the path as received, before normalization.
func (rc *RequestContext) RawPath() string { return rc.raw }

// Method returns the upper-cased request verb.
func (rc *RequestContext) Method() string { return rc.method }

// Mask returns the single verb bit of the request.
func (rc *RequestContext) Mask() MethodMask { return rc.mask }

// Host returns the request host without port, or "" when unknown.
func (rc *RequestContext) Host() string { return rc.host }

// Port returns the request port, or 0 when unknown.
func (rc *RequestContext) Port() int { return rc.port }

// CriteriaPrefix returns the prefix prepended to every criterion.
func (rc *RequestContext) CriteriaPrefix() string { return rc.criteriaPrefix }

// SetCriteriaPrefix sets the prefix prepended to every criterion.
func (rc *RequestContext) SetCriteriaPrefix(prefix string) { rc.criteriaPrefix = prefix }

// HandlerPrefix returns the namespace prepended to handler class paths.
func (rc *RequestContext) HandlerPrefix() string { return rc.handlerPrefix }

// SetHandlerPrefix sets the namespace prepended to handler class paths.
func (rc *RequestContext) SetHandlerPrefix(prefix string) { rc.handlerPrefix = prefix }

// NormalizePath canonicalizes a request path: it ensures a leading "/",
// collapses repeated slashes and resolves "." and ".." segments without
// escaping the root. A trailing slash is kept.
//
//	NormalizePath("//a/./b/../c/") // "/a/c/"
//	NormalizePath("../../etc")     // "/etc"
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	trailing := strings.HasSuffix(p, "/")
	cleaned := path.Clean("/" + p)
	if trailing && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}
