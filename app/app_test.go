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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/Perritu/Router/errors"
	"github.com/Perritu/Router/logging"
	"github.com/Perritu/Router/router"
	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

type users struct{}

func (users) Show(id int) map[string]any { return map[string]any{"id": id} }

func (users) Greet(name string) string { return "hello " + name }

func (users) Fail() error { return errors.New("boom") }

func (users) Missing() error {
	return apperrors.WithStatus(errors.New("user not found"), http.StatusNotFound)
}

func (users) Nothing() {}

func (users) Whoami(ctx context.Context) string {
	return RequestFromContext(ctx).Header.Get("X-User")
}

type reports struct{}

func (reports) Get(path string) string { return "report " + path }

func testRegistry(t *testing.T) *handler.TypeRegistry {
	t.Helper()
	reg := handler.NewRegistry()
	require.NoError(t, reg.Register(`App\Handlers\Users`, users{}))
	require.NoError(t, reg.Register(`App\Admin\Reports`, reports{}))
	return reg
}

func testSettings() *Settings {
	s := DefaultSettings()
	s.Router.HandlerPrefix = `App\Handlers`
	s.Routes = []RouteSpec{
		{Methods: "GET", Criteria: `^/users/([0-9]+)$`, Mode: "regex", Handler: "Users@show"},
		{Methods: "GET", Criteria: `^/greet/(\w+)$`, Mode: "regex", Handler: "Users@greet"},
		{Methods: "POST", Criteria: "/fail", Handler: "Users@fail"},
		{Methods: "GET", Criteria: "/missing", Handler: "Users@missing"},
		{Methods: "DELETE", Criteria: "/nothing", Handler: "Users@nothing"},
		{Criteria: "/whoami", Handler: "Users@whoami"},
		{Methods: "GET", Criteria: "/ghost", Handler: "Ghosts@haunt"},
	}
	s.Mounts = []MountSpec{{Namespace: `App\Admin`, Point: "/admin"}}
	return s
}

func newTestApp(t *testing.T, s *Settings, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	logger, buf := logging.NewTestLogger()
	opts = append([]Option{WithRegistry(testRegistry(t)), WithLogger(logger), WithBannerOutput(io.Discard)}, opts...)
	a, err := New(s, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a, buf
}

func serve(a http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return rec
}

func TestApp_ServeHTTP(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, testSettings())

	tests := []struct {
		name       string
		method     string
		target     string
		header     http.Header
		wantStatus int
		wantType   string
		wantBody   string
		wantCode   string
	}{
		{
			name:       "regex route renders map as JSON",
			method:     http.MethodGet,
			target:     "/users/42",
			wantStatus: http.StatusOK,
			wantType:   "application/json; charset=utf-8",
			wantBody:   "{\"id\":42}\n",
		},
		{
			name:       "string result renders as text",
			method:     http.MethodGet,
			target:     "/greet/ana",
			wantStatus: http.StatusOK,
			wantType:   "text/plain; charset=utf-8",
			wantBody:   "hello ana",
		},
		{
			name:       "string result renders as JSON for API clients",
			method:     http.MethodGet,
			target:     "/greet/ana",
			header:     http.Header{"Content-Type": {"Application/JSON"}},
			wantStatus: http.StatusOK,
			wantType:   "application/json; charset=utf-8",
			wantBody:   "\"hello ana\"\n",
		},
		{
			name:       "string result follows Accept preference",
			method:     http.MethodGet,
			target:     "/greet/ana",
			header:     http.Header{"Accept": {"text/plain;q=0.5, application/json"}},
			wantStatus: http.StatusOK,
			wantType:   "application/json; charset=utf-8",
			wantBody:   "\"hello ana\"\n",
		},
		{
			name:       "nil result is no content",
			method:     http.MethodDelete,
			target:     "/nothing",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "literal route is case-insensitive by default",
			method:     http.MethodDelete,
			target:     "/NOTHING",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "mount resolves class from path and method from verb",
			method:     http.MethodGet,
			target:     "/admin/reports",
			wantStatus: http.StatusOK,
			wantBody:   "report /admin/reports",
		},
		{
			name:       "handler error is an execution failure",
			method:     http.MethodPost,
			target:     "/fail",
			wantStatus: http.StatusInternalServerError,
			wantType:   "application/problem+json; charset=utf-8",
			wantCode:   "handler_execution_failed",
		},
		{
			name:       "handler error keeps its declared status",
			method:     http.MethodGet,
			target:     "/missing",
			wantStatus: http.StatusNotFound,
			wantCode:   "handler_execution_failed",
		},
		{
			name:       "unknown class is a resolution failure",
			method:     http.MethodGet,
			target:     "/ghost",
			wantStatus: http.StatusInternalServerError,
			wantCode:   "handler_class_not_found",
		},
		{
			name:       "wrong verb is not found",
			method:     http.MethodPut,
			target:     "/users/42",
			wantStatus: http.StatusNotFound,
			wantCode:   "route_not_found",
		},
		{
			name:       "mount miss is not found",
			method:     http.MethodGet,
			target:     "/admin/unknown",
			wantStatus: http.StatusNotFound,
			wantCode:   "route_not_found",
		},
		{
			name:       "unsupported verb is a request error",
			method:     "TRACE",
			target:     "/users/42",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(a, tt.method, tt.target, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Dispatch-ID"))
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCode != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
			}
		})
	}
}

func TestApp_HandlerSeesRequest(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, testSettings())
	rec := serve(a, http.MethodGet, "/whoami", http.Header{"X-User": {"ana"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", rec.Body.String())
}

func TestApp_HeadOmitsBody(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.Routes = append(s.Routes, RouteSpec{Methods: "HEAD", Criteria: `^/greet/(\w+)$`, Mode: "regex", Handler: "Users@greet"})
	a, _ := newTestApp(t, s)

	rec := serve(a, http.MethodHead, "/greet/ana", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}

func TestApp_WithRoutesFuncHandlers(t *testing.T) {
	t.Parallel()

	s := testSettings()
	var calls []string
	a, _ := newTestApp(t, s, WithRoutes(
		router.Route{
			Methods: router.MethodGet,
			Pattern: "/chain",
			Handler: handler.Func(func() string { calls = append(calls, "first"); return "first" }),
		},
		router.Route{
			Methods:   router.MethodGet,
			Pattern:   `^/chain$`,
			Mode:      criteria.ModeRegex,
			Handler:   handler.Func(func() string { calls = append(calls, "second"); return "second" }),
			Terminate: true,
		},
	))

	rec := serve(a, http.MethodGet, "/chain", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second", rec.Body.String())
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestApp_SimpleErrorFormat(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.Server.ErrorFormat = FormatSimple
	a, _ := newTestApp(t, s)

	rec := serve(a, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "route_not_found", body["code"])
	assert.Contains(t, body["error"], "GET /nowhere")
}

func TestApp_CriteriaPrefix(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.Router.CriteriaPrefix = "/api"
	a, _ := newTestApp(t, s)

	assert.Equal(t, http.StatusNotFound, serve(a, http.MethodPost, "/fail", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(a, http.MethodPost, "/api/fail", nil).Code)
}

func TestApp_AccessLog(t *testing.T) {
	t.Parallel()

	a, buf := newTestApp(t, testSettings())
	rec := serve(a, http.MethodGet, "/users/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := logging.ParseJSONLogEntries(buf)
	require.NoError(t, err)

	var found bool
	for _, e := range entries {
		if e.Message != "request completed" {
			continue
		}
		found = true
		assert.Equal(t, rec.Header().Get("X-Dispatch-ID"), e.Attrs["dispatch_id"])
		assert.EqualValues(t, http.StatusOK, e.Attrs["status"])
		assert.Equal(t, `App\Handlers\Users@Show`, e.Attrs["target"])
	}
	assert.True(t, found, "access log entry not written")
}

func TestApp_Observability(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	s := testSettings()
	s.Metrics.Enabled = true
	s.Tracing.Enabled = true
	a, _ := newTestApp(t, s, WithMeterProvider(mp), WithTracerProvider(tp))
	require.NotNil(t, a.Metrics())
	require.NotNil(t, a.Tracing())

	serve(a, http.MethodGet, "/users/1", nil)
	serve(a, http.MethodPost, "/fail", nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "router_dispatches_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.EqualValues(t, 2, total)
	assert.Len(t, spans.Ended(), 2)
}

func TestApp_Handler(t *testing.T) {
	t.Parallel()

	t.Run("without metrics the app is the handler", func(t *testing.T) {
		t.Parallel()
		a, _ := newTestApp(t, testSettings())
		assert.Same(t, a, a.Handler())
	})

	t.Run("prometheus endpoint is served at metrics.path", func(t *testing.T) {
		t.Parallel()
		s := testSettings()
		s.Metrics.Enabled = true
		s.Metrics.Path = "/internal/metrics"
		a, _ := newTestApp(t, s)

		h := a.Handler()
		serve(h, http.MethodGet, "/users/3", nil)

		rec := serve(h, http.MethodGet, "/internal/metrics", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "router_dispatches")

		rec = serve(h, http.MethodPost, "/internal/metrics", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNew_InvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"default mode", func(s *Settings) { s.Router.DefaultMode = "fuzzy" }, "router.default_mode"},
		{"log level", func(s *Settings) { s.Log.Level = "loud" }, "log.level"},
		{"route verb", func(s *Settings) { s.Routes = []RouteSpec{{Methods: "FETCH", Criteria: "/", Handler: "A@b"}} }, "routes[0]"},
		{"route handler", func(s *Settings) { s.Routes = []RouteSpec{{Criteria: "/", Handler: "nope"}} }, "routes[0]"},
		{"mount verb", func(s *Settings) { s.Mounts = []MountSpec{{Namespace: "A", Point: "/", Methods: "NONE"}} }, "mounts[0]"},
		{"tracing exporter", func(s *Settings) { s.Tracing.Exporter = "jaeger" }, "tracing.exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := DefaultSettings()
			tt.mutate(s)
			_, err := New(s, WithLogOutput(io.Discard))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_NilSettings(t *testing.T) {
	t.Parallel()

	a, err := New(nil, WithLogOutput(io.Discard))
	require.NoError(t, err)
	assert.Empty(t, a.Routes())
	assert.Equal(t, "dispatchd", a.Settings().Service.Name)

	rec := serve(a, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	assert.Equal(t, http.StatusOK, sw.status())

	_, err := sw.Write([]byte("abc"))
	require.NoError(t, err)
	sw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, sw.status())
	assert.EqualValues(t, 3, sw.written)
	assert.Same(t, rec, sw.Unwrap())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "abc"))
}
