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

// Package logging builds the structured logger shared by the dispatcher and
// the application around it.
//
// The logger is a thin layer over log/slog with three output formats: JSON
// (the default), key=value text, and a compact console format that is
// colored when writing to a terminal. Service name, version and environment
// are attached to every record, and values under sensitive keys such as
// "password" or "token" are redacted.
//
//	logger := logging.MustNew(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("dispatchd"),
//	    logging.WithDebugLevel(),
//	)
//	r := router.MustNew(
//	    router.WithLogger(logger.Logger()),
//	    router.WithDiagnostics(logging.Diagnostics(logger.Logger())),
//	)
//
// # Trace correlation
//
// Records logged through the *Context methods of the returned *slog.Logger
// carry trace_id and span_id when the context holds an active
// OpenTelemetry span. The dispatcher logs with the context its observers
// returned, so records of a traced dispatch are correlated automatically.
// FromContext does the same for code that logs without a context.
package logging
