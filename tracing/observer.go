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

package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Perritu/Router/errors"
	"github.com/Perritu/Router/router"
)

var _ router.Observer = (*Tracer)(nil)

// OnDispatchStart implements router.Observer. The span is named after the
// method and the criterion pattern and becomes the handler's parent span.
func (t *Tracer) OnDispatchStart(ctx context.Context, info router.DispatchInfo) (context.Context, any) {
	ctx, span := t.tracer.Start(ctx, "dispatch "+info.Method+" "+info.Route,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dispatch.id", info.ID),
			attribute.String("dispatch.method", info.Method),
			attribute.String("dispatch.path", info.Path),
			attribute.String("dispatch.route", info.Route),
			attribute.String("dispatch.handler", info.Handler),
			attribute.Bool("dispatch.mount", info.Mount),
			attribute.Bool("dispatch.terminate", info.Terminate),
		),
	)
	return ctx, span
}

// OnDispatchEnd implements router.Observer.
func (t *Tracer) OnDispatchEnd(_ context.Context, state any, _ router.DispatchInfo, err error) {
	span, ok := state.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		attribute.String("error.code", apperrors.CodeOf(err)),
		attribute.Int("error.status", apperrors.StatusOf(err)),
	)
}
