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

package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/Perritu/Router/errors"
	"github.com/Perritu/Router/router"
)

// Outcome values recorded on the dispatch.outcome attribute.
const (
	OutcomeOK              = "ok"
	OutcomeResolutionError = "resolution_error"
	OutcomeExecutionError  = "execution_error"
	OutcomeError           = "error"
)

var _ router.Observer = (*Recorder)(nil)

func (r *Recorder) initializeInstruments() error {
	var err error

	r.dispatches, err = r.meter.Int64Counter(
		"router_dispatches_total",
		metric.WithDescription("Dispatches of matched routes"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatch counter: %w", err)
	}

	r.failures, err = r.meter.Int64Counter(
		"router_dispatch_errors_total",
		metric.WithDescription("Dispatches that failed to resolve or execute their handler"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error counter: %w", err)
	}

	r.duration, err = r.meter.Float64Histogram(
		"router_dispatch_duration_seconds",
		metric.WithDescription("Time spent resolving and running handlers"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}

	r.active, err = r.meter.Int64UpDownCounter(
		"router_dispatches_active",
		metric.WithDescription("Handlers currently running"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active gauge: %w", err)
	}
	return nil
}

// Outcome classifies a dispatch error for the dispatch.outcome attribute.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case router.IsResolutionError(err):
		return OutcomeResolutionError
	case router.IsExecutionError(err):
		return OutcomeExecutionError
	default:
		return OutcomeError
	}
}

// OnDispatchStart implements router.Observer.
func (r *Recorder) OnDispatchStart(ctx context.Context, info router.DispatchInfo) (context.Context, any) {
	r.active.Add(ctx, 1, metric.WithAttributes(attribute.String("dispatch.method", info.Method)))
	return ctx, time.Now()
}

// OnDispatchEnd implements router.Observer.
func (r *Recorder) OnDispatchEnd(ctx context.Context, state any, info router.DispatchInfo, err error) {
	r.active.Add(ctx, -1, metric.WithAttributes(attribute.String("dispatch.method", info.Method)))

	attrs := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("dispatch.method", info.Method),
		attribute.String("dispatch.route", info.Route),
		attribute.Bool("dispatch.mount", info.Mount),
		attribute.String("dispatch.outcome", Outcome(err)),
	))
	r.dispatches.Add(ctx, 1, attrs)
	if start, ok := state.(time.Time); ok {
		r.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}

	if err != nil {
		r.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("dispatch.method", info.Method),
			attribute.String("dispatch.route", info.Route),
			attribute.String("error.code", apperrors.CodeOf(err)),
		))
	}
}
