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
	"log/slog"
	"net"
	"net/http"

	"github.com/Perritu/Router/metrics"
)

// Handler returns the HTTP handler served by [App.Run]: the App itself,
// with the Prometheus scrape endpoint mounted at metrics.path when metrics
// are enabled with the prometheus exporter.
func (a *App) Handler() http.Handler {
	if a.metrics == nil {
		return a
	}
	mh, err := a.metrics.Handler()
	if err != nil {
		if !stderrors.Is(err, metrics.ErrNoHandler) {
			a.logger.Warn("metrics handler unavailable", "error", err)
		}
		return a
	}

	// http.ServeMux would clean and redirect paths the router canonicalizes
	// itself.
	path := a.settings.Metrics.Path
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == path && (req.Method == http.MethodGet || req.Method == http.MethodHead) {
			mh.ServeHTTP(w, req)
			return
		}
		a.ServeHTTP(w, req)
	})
}

// Run serves until ctx is canceled, then shuts the server down gracefully
// within server.shutdown_timeout. In CGI mode it handles the one request of
// the current process instead.
//
// Signal handling is left to the caller:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	err := a.Run(ctx)
func (a *App) Run(ctx context.Context) error {
	if a.settings.Server.Mode == ModeCGI {
		return a.ServeCGI(ctx)
	}

	ln, err := net.Listen("tcp", a.settings.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.settings.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      a.Handler(),
		ReadTimeout:  a.settings.Server.ReadTimeout,
		WriteTimeout: a.settings.Server.WriteTimeout,
		IdleTimeout:  a.settings.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.logger.Logger().Handler(), slog.LevelError),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serverErr := make(chan error, 1)
	go func() {
		a.PrintBanner(a.banner, ln.Addr().String())
		a.logger.Info("server starting",
			"addr", ln.Addr().String(),
			"routes", len(a.routes),
			"metrics", a.metrics != nil,
			"tracing", a.tracing != nil,
		)
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = a.shutdownObservability(context.WithoutCancel(ctx))
		return err
	case <-ctx.Done():
		a.logger.Info("server shutting down", "reason", context.Cause(ctx))
	}

	// ctx is already canceled; the shutdown deadline starts now.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.settings.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server forced to shutdown: %w", err)
	}
	if err := a.shutdownObservability(shutdownCtx); err != nil {
		a.logger.Warn("observability shutdown failed", "error", err)
	}

	a.logger.Info("server exited")
	return nil
}
