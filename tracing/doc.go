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

// Package tracing creates OpenTelemetry spans for dispatches.
//
// A [Tracer] is a router.Observer. Each matched route gets a span named
// "dispatch METHOD PATTERN" and the handler receives a context carrying it,
// so spans the handler starts become children:
//
//	tracer := tracing.MustNew(tracing.WithStdout(), tracing.WithServiceName("dispatchd"))
//	defer tracer.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithObserver(tracer))
//
// [Tracer.Extract] joins a trace started by the caller using the W3C
// traceparent header.
package tracing
