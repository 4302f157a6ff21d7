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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "github.com/Perritu/Router/metrics"

// DefaultDurationBuckets are histogram boundaries for dispatch duration in
// seconds. Handlers run in-process, so the range starts well below a
// millisecond.
var DefaultDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// ErrNoHandler is returned by [Recorder.Handler] for providers that do not
// expose a scrape endpoint.
var ErrNoHandler = errors.New("metrics handler is only available with the prometheus provider")

// Provider selects the metrics exporter.
type Provider string

const (
	// PrometheusProvider exposes metrics through [Recorder.Handler] (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider pushes metrics to an OTLP/HTTP collector.
	OTLPProvider Provider = "otlp"
	// StdoutProvider prints metrics periodically. Intended for development.
	StdoutProvider Provider = "stdout"
)

// ParseProvider maps a configuration string to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case PrometheusProvider, OTLPProvider, StdoutProvider:
		return p, nil
	case "":
		return PrometheusProvider, nil
	default:
		return "", fmt.Errorf("unsupported metrics provider: %q", s)
	}
}

// Recorder records dispatch metrics. It implements router.Observer.
//
// The global OpenTelemetry meter provider is left alone unless
// [WithGlobalMeterProvider] is given, so several recorders can coexist.
//
// All methods are safe for concurrent use.
type Recorder struct {
	provider            Provider
	meterProvider       metric.MeterProvider
	sdkProvider         *sdkmetric.MeterProvider
	customMeterProvider bool
	registerGlobal      bool

	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler
	otlpEndpoint       string
	exportInterval     time.Duration
	durationBuckets    []float64

	serviceName    string
	serviceVersion string
	logger         *slog.Logger

	meter      metric.Meter
	dispatches metric.Int64Counter
	failures   metric.Int64Counter
	duration   metric.Float64Histogram
	active     metric.Int64UpDownCounter

	shutdown atomic.Bool
}

// New returns a Recorder with its provider and instruments initialized.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		provider:        PrometheusProvider,
		exportInterval:  30 * time.Second,
		durationBuckets: DefaultDurationBuckets,
		serviceName:     "dispatchd",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.initializeProvider(); err != nil {
		return nil, err
	}
	if err := r.initializeInstruments(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics: failed to create recorder: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	var errs []error
	if r.serviceName == "" {
		errs = append(errs, errors.New("service name must not be empty"))
	}
	if r.exportInterval <= 0 {
		errs = append(errs, fmt.Errorf("export interval must be positive, got %v", r.exportInterval))
	}
	for i := 1; i < len(r.durationBuckets); i++ {
		if r.durationBuckets[i] <= r.durationBuckets[i-1] {
			errs = append(errs, errors.New("duration buckets must be strictly increasing"))
			break
		}
	}
	if r.customMeterProvider && r.meterProvider == nil {
		errs = append(errs, errors.New("custom meter provider is nil"))
	}
	return errors.Join(errs...)
}

// Handler returns the Prometheus scrape handler.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, ErrNoHandler
	}
	return r.prometheusHandler, nil
}

// Provider returns the configured exporter.
func (r *Recorder) Provider() Provider { return r.provider }

// ServiceName returns the service name recorded on the resource.
func (r *Recorder) ServiceName() string { return r.serviceName }

// ServiceVersion returns the service version recorded on the resource.
func (r *Recorder) ServiceVersion() string { return r.serviceVersion }

// ForceFlush exports pending metrics. It is a no-op for custom providers.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.sdkProvider == nil {
		return nil
	}
	return r.sdkProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider this Recorder created. Custom
// providers are owned by the caller and left running. Calling Shutdown
// more than once is safe.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	if r.sdkProvider == nil {
		return nil
	}
	if err := r.sdkProvider.Shutdown(ctx); err != nil {
		r.logger.Error("metrics shutdown failed", "error", err)
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	return nil
}
