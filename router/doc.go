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

// Package router matches a request against a caller-defined sequence of
// routes and dispatches the first matching ones to their handlers.
//
// A route is a verb mask, a criterion and a handler reference. A request
// matches when its verb bit is in the mask and the criterion (literal or
// regex, optionally case-insensitive) matches its normalized path. The
// handler is then resolved and invoked with the captured regex groups as
// arguments.
//
// # Key Features
//
//   - Fixed verb bits combined into masks (MethodGet|MethodPost, MethodAny)
//   - Literal and regex criteria, each optionally case-insensitive
//   - Request-scoped criteria and handler prefixes
//   - Handlers as Go functions or "Class@method" references resolved through
//     a registry with existence and visibility checks
//   - Convention-based namespace mounts (path segment to class, verb to method)
//   - Explicit stop signal instead of ending the process
//   - Observer hooks for metrics and tracing, diagnostic events
//
// # Quick Start
//
//	reg := handler.NewRegistry()
//	reg.MustRegister(`App\Handlers\Users`, (*Users)(nil))
//
//	r := router.MustNew(
//	    router.WithRegistry(reg),
//	    router.WithHandlerPrefix(`App\Handlers`),
//	)
//
//	d := r.Dispatcher(ctx)
//	if err := d.Init(router.RequestData{Path: "/users/42", Method: "GET"}); err != nil {
//	    return err
//	}
//	res, err := d.GET(criteria.Pattern(`^/users/(\d+)$`), handler.MustParse("Users@show"), true)
//
// # Request Context
//
// Each Dispatcher owns one RequestContext. It is initialized lazily from the
// router's Source (the CGI environment by default) unless Init is called
// explicitly. Paths are canonicalized: repeated slashes are collapsed and
// "." and ".." segments resolved. Unknown verbs fail with ErrInvalidMethod;
// a missing path or verb fails with ErrInvalidRequestData.
//
// # Errors
//
// Not matching is not an error. Errors fall in four categories, tested with
// IsRequestError, IsConfigurationError, IsResolutionError and
// IsExecutionError. The first error of a dispatcher is sticky.
//
// # Concurrency
//
// A Router is safe for concurrent use. A Dispatcher and its RequestContext
// belong to a single request.
package router
