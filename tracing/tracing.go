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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/Perritu/Router/tracing"

// Provider selects the span exporter.
type Provider string

const (
	// NoopProvider records nothing (default).
	NoopProvider Provider = "noop"
	// StdoutProvider prints spans as JSON. Intended for development.
	StdoutProvider Provider = "stdout"
	// OTLPProvider exports spans over OTLP/gRPC.
	OTLPProvider Provider = "otlp"
	// OTLPHTTPProvider exports spans over OTLP/HTTP.
	OTLPHTTPProvider Provider = "otlp-http"
)

// ParseProvider maps a configuration string to a Provider. "none" and ""
// select [NoopProvider].
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case NoopProvider, StdoutProvider, OTLPProvider, OTLPHTTPProvider:
		return p, nil
	case "", "none":
		return NoopProvider, nil
	default:
		return "", fmt.Errorf("unsupported tracing provider: %q", s)
	}
}

// Tracer creates one span per dispatch. It implements router.Observer.
//
// The global tracer provider is left alone unless [WithGlobalTracerProvider]
// is given.
type Tracer struct {
	provider             Provider
	tracerProvider       trace.TracerProvider
	sdkProvider          *sdktrace.TracerProvider
	customTracerProvider bool
	registerGlobal       bool
	propagator           propagation.TextMapPropagator

	otlpEndpoint string
	otlpInsecure bool
	sampleRate   float64

	serviceName    string
	serviceVersion string
	logger         *slog.Logger

	tracer   trace.Tracer
	shutdown atomic.Bool
}

// New returns a Tracer. OTLP exporters connect lazily, so New does not
// block on the collector.
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:    NoopProvider,
		sampleRate:  1.0,
		serviceName: "dispatchd",
		propagator:  propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	if err := t.initializeProvider(context.Background()); err != nil {
		return nil, err
	}
	if t.registerGlobal {
		otel.SetTracerProvider(t.tracerProvider)
		otel.SetTextMapPropagator(t.propagator)
	}
	t.tracer = t.tracerProvider.Tracer(instrumentationName)
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing: failed to create tracer: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	var errs []error
	if t.serviceName == "" {
		errs = append(errs, errors.New("service name must not be empty"))
	}
	if t.customTracerProvider && t.tracerProvider == nil {
		errs = append(errs, errors.New("custom tracer provider is nil"))
	}
	if t.propagator == nil {
		errs = append(errs, errors.New("propagator is nil"))
	}
	return errors.Join(errs...)
}

// Provider returns the configured exporter.
func (t *Tracer) Provider() Provider { return t.provider }

// ServiceName returns the service.name resource attribute.
func (t *Tracer) ServiceName() string { return t.serviceName }

// Tracer returns the underlying OpenTelemetry tracer.
func (t *Tracer) Tracer() trace.Tracer { return t.tracer }

// Extract returns ctx carrying the remote span context found in header, if
// any, so dispatch spans join the caller's trace.
func (t *Tracer) Extract(ctx context.Context, header http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(header))
}

// Inject writes the span context of ctx into header.
func (t *Tracer) Inject(ctx context.Context, header http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(header))
}

// Start starts a span outside of a dispatch, for example around a whole
// HTTP request.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes and stops the provider this Tracer created. Custom
// providers are left to their owner. Calling Shutdown twice is safe.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.shutdown.CompareAndSwap(false, true) || t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		t.logger.Error("tracing shutdown failed", "error", err)
		return fmt.Errorf("tracing shutdown: %w", err)
	}
	return nil
}
