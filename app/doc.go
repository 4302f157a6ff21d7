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

// Package app is the composition root of a dispatch service. It loads
// [Settings] from a file and DISPATCH_ environment variables, builds the
// logger, the optional metrics and tracing observers and the
// [router.Router], and serves the configured route table over HTTP or CGI.
//
// # Settings
//
//	router:
//	  handler_prefix: App\Handlers
//	  default_mode: literal_i
//	server:
//	  addr: ":8080"
//	  mode: http
//	metrics:
//	  enabled: true
//	routes:
//	  - methods: GET
//	    criteria: ^/users/([0-9]+)$
//	    mode: regex
//	    handler: Users@show
//	mounts:
//	  - namespace: App\Admin
//	    point: /admin
//
// Routes are evaluated in order: configured routes, routes added with
// [WithRoutes], then mounts. The value of the last matched route is
// rendered: strings as text/plain unless the client is an API client (see
// [IsAPI]) or prefers JSON, anything else as JSON, nil as 204.
//
// # Running
//
//	s, err := app.LoadSettings(ctx, "dispatchd.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	a, err := app.New(s, app.WithRegistry(registry))
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = a.Run(ctx)
//
// Handlers taking a context.Context receive the HTTP request through
// [RequestFromContext].
package app
