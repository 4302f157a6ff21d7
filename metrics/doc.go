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

// Package metrics records dispatch metrics with OpenTelemetry and exports
// them to Prometheus, an OTLP collector or stdout.
//
// A [Recorder] is a router.Observer:
//
//	recorder := metrics.MustNew(metrics.WithServiceName("dispatchd"))
//	defer recorder.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithObserver(recorder))
//	h, _ := recorder.Handler()
//	mux.Handle("/metrics", h)
//
// Instruments:
//   - router_dispatches_total: counter by method, route, mount and outcome
//   - router_dispatch_duration_seconds: histogram with the same attributes
//   - router_dispatch_errors_total: counter by method, route and error code
//   - router_dispatches_active: handlers currently running, by method
//
// Routes are labeled with their criterion pattern, never the request path.
package metrics
