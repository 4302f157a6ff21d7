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
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Perritu/Router/errors"
	"github.com/Perritu/Router/logging"
	"github.com/Perritu/Router/metrics"
	"github.com/Perritu/Router/router"
	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/tracing"
)

// App serves the configured route table over HTTP or CGI. Every request
// gets its own [router.Dispatcher]; the App itself is safe for concurrent
// use.
type App struct {
	settings  *Settings
	logger    *logging.Logger
	router    *router.Router
	routes    []router.Route
	metrics   *metrics.Recorder
	tracing   *tracing.Tracer
	formatter errors.Formatter
	banner    io.Writer
}

// New builds an App from s. A nil s selects [DefaultSettings].
func New(s *Settings, opts ...Option) (*App, error) {
	if s == nil {
		s = DefaultSettings()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	a := &App{settings: s, formatter: o.formatter, banner: o.bannerOutput}
	if a.banner == nil {
		a.banner = os.Stdout
	}

	var err error
	if a.logger = o.logger; a.logger == nil {
		if a.logger, err = newLogger(s, o.logOutput); err != nil {
			return nil, err
		}
	}
	sl := a.logger.Logger()

	if s.Metrics.Enabled {
		if a.metrics, err = newRecorder(s, o, sl); err != nil {
			return nil, err
		}
	}
	if s.Tracing.Enabled {
		if a.tracing, err = newTracer(s, o, sl); err != nil {
			a.shutdownObservability(context.Background())
			return nil, err
		}
	}

	mode, _ := criteria.ParseMode(s.Router.DefaultMode)
	ropts := []router.Option{
		router.WithLogger(sl),
		router.WithCriteriaPrefix(s.Router.CriteriaPrefix),
		router.WithHandlerPrefix(s.Router.HandlerPrefix),
		router.WithDefaultMode(mode),
		router.WithPatternCacheSize(s.Router.CacheSize),
		router.WithDiagnostics(logging.Diagnostics(sl)),
	}
	if o.registry != nil {
		ropts = append(ropts, router.WithRegistry(o.registry))
	}
	if obs := a.observers(); len(obs) > 0 {
		ropts = append(ropts, router.WithObserver(router.Observers(obs...)))
	}
	if a.router, err = router.New(ropts...); err != nil {
		a.shutdownObservability(context.Background())
		return nil, err
	}

	if a.routes, err = s.RouteTable(mode, o.routes...); err != nil {
		a.shutdownObservability(context.Background())
		return nil, err
	}

	if a.formatter == nil {
		a.formatter = newFormatter(s)
	}
	return a, nil
}

// MustNew is New that panics on error.
func MustNew(s *Settings, opts ...Option) *App {
	a, err := New(s, opts...)
	if err != nil {
		panic(fmt.Sprintf("app.MustNew: %v", err))
	}
	return a
}

func newLogger(s *Settings, out io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(s.Log.Level)
	if err != nil {
		return nil, err
	}
	ht, err := logging.ParseHandlerType(s.Log.Format)
	if err != nil {
		return nil, err
	}
	lopts := []logging.Option{
		logging.WithHandlerType(ht),
		logging.WithLevel(level),
		logging.WithServiceName(s.Service.Name),
		logging.WithServiceVersion(s.Service.Version),
		logging.WithEnvironment(s.Service.Environment),
	}
	if out != nil {
		lopts = append(lopts, logging.WithOutput(out))
	}
	return logging.New(lopts...)
}

func newRecorder(s *Settings, o *options, sl *slog.Logger) (*metrics.Recorder, error) {
	mopts := []metrics.Option{
		metrics.WithServiceName(s.Service.Name),
		metrics.WithServiceVersion(s.Service.Version),
		metrics.WithLogger(sl),
	}
	switch {
	case o.meterProvider != nil:
		mopts = append(mopts, metrics.WithMeterProvider(o.meterProvider))
	default:
		p, err := metrics.ParseProvider(s.Metrics.Provider)
		if err != nil {
			return nil, err
		}
		if p == metrics.OTLPProvider {
			mopts = append(mopts, metrics.WithOTLP(s.Metrics.Endpoint))
		} else {
			mopts = append(mopts, metrics.WithProvider(p))
		}
	}
	return metrics.New(mopts...)
}

func newTracer(s *Settings, o *options, sl *slog.Logger) (*tracing.Tracer, error) {
	topts := []tracing.Option{
		tracing.WithServiceName(s.Service.Name),
		tracing.WithServiceVersion(s.Service.Version),
		tracing.WithSampleRate(s.Tracing.SampleRate),
		tracing.WithLogger(sl),
	}
	if o.tracerProvider != nil {
		return tracing.New(append(topts, tracing.WithTracerProvider(o.tracerProvider))...)
	}

	p, err := tracing.ParseProvider(s.Tracing.Exporter)
	if err != nil {
		return nil, err
	}
	switch p {
	case tracing.OTLPProvider:
		topts = append(topts, tracing.WithOTLP(s.Tracing.Endpoint, s.Tracing.Insecure))
	case tracing.OTLPHTTPProvider:
		topts = append(topts, tracing.WithOTLPHTTP(s.Tracing.Endpoint))
	default:
		topts = append(topts, tracing.WithProvider(p))
	}
	return tracing.New(topts...)
}

func newFormatter(s *Settings) errors.Formatter {
	if s.Server.ErrorFormat == FormatSimple {
		return errors.NewSimple()
	}
	return errors.NewRFC9457(s.Server.ProblemBaseURL)
}

func (a *App) observers() []router.Observer {
	var obs []router.Observer
	if a.metrics != nil {
		obs = append(obs, a.metrics)
	}
	if a.tracing != nil {
		obs = append(obs, a.tracing)
	}
	return obs
}

// Settings returns the settings the App was built from.
func (a *App) Settings() *Settings { return a.settings }

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger { return a.logger }

// Router returns the dispatch engine.
func (a *App) Router() *router.Router { return a.router }

// Routes returns the route table in evaluation order.
func (a *App) Routes() []router.Route { return a.routes }

// Metrics returns the metrics recorder, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

// Tracing returns the tracer, or nil when tracing is disabled.
func (a *App) Tracing() *tracing.Tracer { return a.tracing }

// ServeHTTP dispatches req through the route table and renders the result of
// the last matched route. A request no route matched gets a 404 through the
// error formatter, as do resolution and execution failures with their own
// status.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()

	ctx := req.Context()
	if a.tracing != nil {
		ctx = a.tracing.Extract(ctx, req.Header)
	}
	ctx = withRequest(ctx, req)
	d := a.router.Dispatcher(ctx)

	sw := &statusWriter{ResponseWriter: w}
	sw.Header().Set("X-Dispatch-ID", d.ID())

	res, err := a.dispatch(d, req)
	switch {
	case err != nil:
		a.writeError(sw, req, err)
	case !res.Matched:
		a.writeError(sw, req, &notFoundError{method: req.Method, path: req.URL.Path})
	default:
		if rerr := render(sw, req, res.Value); rerr != nil {
			logging.FromContext(ctx, a.logger).ErrorContext(ctx, "render failed", "error", rerr)
			if !sw.wroteHeader {
				a.writeError(sw, req, rerr)
			}
		}
	}

	logging.FromContext(ctx, a.logger).InfoContext(ctx, "request completed",
		"dispatch_id", d.ID(),
		"method", req.Method,
		"path", req.URL.Path,
		"status", sw.status(),
		"bytes", sw.written,
		"target", res.Target,
		"duration", time.Since(start),
	)
}

func (a *App) dispatch(d *router.Dispatcher, req *http.Request) (router.Result, error) {
	data, err := router.HTTPSource(req).RequestData(d.Context())
	if err != nil {
		return router.Result{}, err
	}
	if err = d.Init(data); err != nil {
		return router.Result{}, err
	}
	return d.Run(a.routes...)
}

func (a *App) writeError(w http.ResponseWriter, req *http.Request, err error) {
	resp := a.formatter.Format(req, err)
	if resp.Status >= http.StatusInternalServerError {
		logging.FromContext(req.Context(), a.logger).ErrorContext(req.Context(), "dispatch error",
			"error", err,
			"code", errors.CodeOf(err),
		)
	}
	if werr := errors.Write(w, resp); werr != nil {
		a.logger.Error("failed to write error response", "error", werr)
	}
}

// Shutdown flushes and stops the metrics and tracing exporters.
func (a *App) Shutdown(ctx context.Context) error {
	return a.shutdownObservability(ctx)
}

func (a *App) shutdownObservability(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}
	return stderrors.Join(errs...)
}

// statusWriter records the status and size of a response for the access log.
type statusWriter struct {
	http.ResponseWriter
	code        int
	written     int64
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.code = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.code
}
