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

package app

import (
	"io"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Perritu/Router/errors"
	"github.com/Perritu/Router/logging"
	"github.com/Perritu/Router/router"
	"github.com/Perritu/Router/router/handler"
)

// Option configures an App.
type Option func(*options)

type options struct {
	registry       handler.Registry
	logger         *logging.Logger
	logOutput      io.Writer
	routes         []router.Route
	formatter      errors.Formatter
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	bannerOutput   io.Writer
}

// WithRegistry sets the handler registry class-method references resolve
// against.
func WithRegistry(reg handler.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithLogger replaces the logger built from the log settings.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogOutput sets where the logger built from the log settings writes.
// Default: os.Stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithRoutes adds routes evaluated after the configured routes and before
// the configured mounts. Routes holding handler.Func references can only be
// declared this way.
func WithRoutes(routes ...router.Route) Option {
	return func(o *options) {
		o.routes = append(o.routes, routes...)
	}
}

// WithFormatter replaces the error formatter selected by server.error_format.
func WithFormatter(f errors.Formatter) Option {
	return func(o *options) {
		o.formatter = f
	}
}

// WithMeterProvider makes dispatch metrics use provider instead of the
// exporter named in the settings. Metrics must still be enabled.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = provider
	}
}

// WithTracerProvider makes dispatch spans use provider instead of the
// exporter named in the settings. Tracing must still be enabled.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = provider
	}
}

// WithBannerOutput sets where [App.Run] prints the startup banner. Default:
// os.Stdout. Pass io.Discard to disable it.
func WithBannerOutput(w io.Writer) Option {
	return func(o *options) {
		o.bannerOutput = w
	}
}
