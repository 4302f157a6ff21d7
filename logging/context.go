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

package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// FromContext returns l's *slog.Logger with trace_id and span_id attached
// when ctx carries a valid OpenTelemetry span. A nil l yields slog.Default.
func FromContext(ctx context.Context, l *Logger) *slog.Logger {
	sl := slog.Default()
	if l != nil {
		sl = l.Logger()
	}
	if ctx == nil {
		return sl
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return sl
	}
	return sl.With(fieldTraceID, sc.TraceID().String(), fieldSpanID, sc.SpanID().String())
}

// traceHandler adds trace_id and span_id to records logged with a context
// that carries a valid span, such as the router's "dispatched" records
// written inside a traced dispatch.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			r = r.Clone()
			r.AddAttrs(
				slog.String(fieldTraceID, sc.TraceID().String()),
				slog.String(fieldSpanID, sc.SpanID().String()),
			)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{Handler: h.Handler.WithGroup(name)}
}
