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

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perritu/Router/router/criteria"
	"github.com/Perritu/Router/router/handler"
)

func TestDispatcher_MatchMask(t *testing.T) {
	t.Parallel()

	r := testRouter(t)

	for _, v := range verbs {
		for mask := MethodMask(1); mask <= MethodAny; mask++ {
			d := testDispatcher(t, r, v.name, "/x")
			h, calls := spy("ok")

			res, err := d.Match(mask, criteria.Literal("/x"), h, false)
			require.NoError(t, err)

			want := mask&v.bit != 0
			assert.Equal(t, want, res.Matched, "verb %s mask %s", v.name, mask)
			assert.Equal(t, want, *calls == 1, "verb %s mask %s", v.name, mask)
		}
	}
}

func TestDispatcher_MatchMaskExamples(t *testing.T) {
	t.Parallel()

	r := testRouter(t)

	h, calls := spy(nil)
	d := testDispatcher(t, r, "GET", "/x")
	res, err := d.Match(MethodPost|MethodPut, criteria.Literal("/x"), h, false)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Zero(t, *calls)

	res, err = d.Match(MethodAny, criteria.Literal("/x"), h, false)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, *calls)
}

func TestDispatcher_VerbShortcuts(t *testing.T) {
	t.Parallel()

	r := testRouter(t)

	type shortcut func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error)
	shortcuts := map[string]shortcut{
		"GET":     func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.GET },
		"POST":    func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.POST },
		"PUT":     func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.PUT },
		"PATCH":   func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.PATCH },
		"DELETE":  func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.DELETE },
		"HEAD":    func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.HEAD },
		"OPTIONS": func(d *Dispatcher) func(criteria.Criterion, handler.Ref, bool) (Result, error) { return d.OPTIONS },
	}

	for entry, fn := range shortcuts {
		for _, v := range verbs {
			d := testDispatcher(t, r, v.name, "/x")
			h, calls := spy(nil)
			res, err := fn(d)(criteria.Literal("/x"), h, false)
			require.NoError(t, err)
			assert.Equal(t, entry == v.name, res.Matched, "%s on %s request", entry, v.name)
			assert.Equal(t, entry == v.name, *calls == 1)
		}
	}

	for _, v := range verbs {
		d := testDispatcher(t, r, v.name, "/x")
		h, calls := spy(nil)
		res, err := d.ANY(criteria.Literal("/x"), h, false)
		require.NoError(t, err)
		assert.True(t, res.Matched)
		assert.Equal(t, 1, *calls)
	}
}

func TestDispatcher_Criteria(t *testing.T) {
	t.Parallel()

	r := testRouter(t)

	tests := []struct {
		name       string
		path       string
		prefix     string
		criterion  criteria.Criterion
		wantMatch  bool
		wantGroups []string
	}{
		{name: "literal fold", path: "/users", criterion: criteria.LiteralFold("/Users"), wantMatch: true, wantGroups: []string{}},
		{name: "literal case sensitive", path: "/users", criterion: criteria.Literal("/Users")},
		{name: "regex groups", path: "/item/42", criterion: criteria.Pattern(`^/item/([0-9]+)$`), wantMatch: true, wantGroups: []string{"42"}},
		{name: "regex fold", path: "/ITEM/7", criterion: criteria.PatternFold(`^/item/(\d+)$`), wantMatch: true, wantGroups: []string{"7"}},
		{name: "prefix literal", path: "/api/v1/ping", prefix: "/api", criterion: criteria.Literal("/v1/ping"), wantMatch: true, wantGroups: []string{}},
		{name: "prefix required", path: "/v1/ping", prefix: "/api", criterion: criteria.Literal("/v1/ping")},
		{name: "prefix regex", path: "/api/v1/ping", prefix: "/api", criterion: criteria.Pattern(`^/v1/(\w+)$`), wantMatch: true, wantGroups: []string{"ping"}},
		{name: "prefix regex required", path: "/v1/ping", prefix: "/api", criterion: criteria.Pattern(`^/v1/(\w+)$`)},
		{name: "normalized path", path: "/a/../item//9", criterion: criteria.Pattern(`^/item/(\d)$`), wantMatch: true, wantGroups: []string{"9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := testDispatcher(t, r, "GET", tt.path)
			d.SetCriteriaPrefix(tt.prefix)

			var got []string
			h := handler.Func(func(args ...string) { got = args })

			res, err := d.GET(tt.criterion, h, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, res.Matched)
			if tt.wantMatch {
				assert.Equal(t, tt.wantGroups, res.Groups)
				assert.Len(t, got, len(tt.wantGroups))
			}
		})
	}
}

func TestDispatcher_HandlerPrefix(t *testing.T) {
	t.Parallel()

	r := testRouter(t, WithHandlerPrefix(`App\Handlers`))
	d := testDispatcher(t, r, "GET", "/users/42")

	res, err := d.GET(criteria.Pattern(`^/users/(\d+)$`), handler.MustParse("Users@show"), true)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Stop)
	assert.Equal(t, `App\Handlers\Users@Show`, res.Target)
	assert.Equal(t, map[string]any{"id": 42}, res.Value)
}

func TestDispatcher_HandlerPrefixSeparators(t *testing.T) {
	t.Parallel()

	r := testRouter(t)
	d := testDispatcher(t, r, "GET", "/users")
	d.SetHandlerPrefix(`App\\/Handlers//`)

	res, err := d.GET(criteria.Literal("/users"), handler.MustParse("Users@index"), false)
	require.NoError(t, err)
	assert.Equal(t, `App\Handlers\Users@Index`, res.Target)
	assert.Equal(t, []string{"ada", "linus"}, res.Value)
}

func TestDispatcher_ResolutionErrors(t *testing.T) {
	t.Parallel()

	r := testRouter(t)

	tests := []struct {
		name    string
		ref     handler.Ref
		wantErr error
	}{
		{name: "missing class and method", ref: handler.ClassMethod(`App\Missing`, "nothing"), wantErr: ErrHandlerClassNotFound},
		{name: "missing method", ref: handler.ClassMethod(`App\Handlers\Users`, "destroy"), wantErr: ErrHandlerMethodNotFound},
		{name: "private method", ref: handler.ClassMethod(`App\Admin\Reports`, "get"), wantErr: ErrHandlerMethodNotAccessible},
		{name: "invalid ref", ref: handler.Ref{}, wantErr: ErrInvalidHandlerRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := testDispatcher(t, r, "GET", "/x")
			res, err := d.GET(criteria.Literal("/x"), tt.ref, true)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsResolutionError(err))
			assert.False(t, IsExecutionError(err))
			assert.True(t, res.Matched, "the route matched even though its target is broken")
			assert.False(t, res.Stop)
			assert.False(t, d.Stopped())
		})
	}
}

func TestDispatcher_ArgumentBindingError(t *testing.T) {
	t.Parallel()

	r := testRouter(t)
	d := testDispatcher(t, r, "GET", "/items/abc")

	var calls int
	res, err := d.GET(criteria.Pattern(`^/items/([a-z]+)$`), handler.Func(func(id int) int {
		calls++
		return id
	}), true)
	require.ErrorIs(t, err, ErrHandlerArgumentBinding)
	assert.True(t, IsResolutionError(err))
	assert.False(t, IsExecutionError(err))
	assert.Zero(t, calls)
	assert.True(t, res.Matched)
	assert.False(t, res.Stop)
}

func TestDispatcher_ExecutionError(t *testing.T) {
	t.Parallel()

	r := testRouter(t)
	d := testDispatcher(t, r, "POST", "/x")

	res, err := d.POST(criteria.Literal("/x"), handler.Func(func() (string, error) { return "", errBoom }), true)
	require.ErrorIs(t, err, ErrHandlerExecutionFailed)
	require.ErrorIs(t, err, errBoom)
	assert.True(t, IsExecutionError(err))
	assert.False(t, IsResolutionError(err))
	assert.True(t, res.Matched)
	assert.Nil(t, res.Value)
	assert.False(t, res.Stop)
}

func TestDispatcher_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	r := testRouter(t)
	h, calls := spy(nil)

	tests := []struct {
		name    string
		mask    MethodMask
		c       criteria.Criterion
		wantErr error
	}{
		{name: "zero mask", mask: 0, c: criteria.Literal("/x"), wantErr: ErrInvalidMethodMask},
		{name: "unknown bits", mask: 128, c: criteria.Literal("/x"), wantErr: ErrInvalidMethodMask},
		{name: "no mode", mask: MethodPost, c: criteria.New("/x", 0), wantErr: ErrInvalidCriteriaMode},
		{name: "fold only", mask: MethodPost, c: criteria.New("/x", criteria.ModeCaseInsensitive), wantErr: ErrInvalidCriteriaMode},
		{name: "bad pattern", mask: MethodPost, c: criteria.Pattern("(unclosed"), wantErr: ErrInvalidCriteriaPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDispatcher(t, r, "GET", "/x")
			_, err := d.Match(tt.mask, tt.c, h, false)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsConfigurationError(err))
			assert.Equal(t, err, d.Err())
		})
	}
	assert.Zero(t, *calls)
}

func TestDispatcher_StickyError(t *testing.T) {
	t.Parallel()

	r := testRouter(t)
	d := testDispatcher(t, r, "GET", "/x")

	_, err := d.GET(criteria.Literal("/x"), handler.ClassMethod(`App\Missing`, "run"), false)
	require.ErrorIs(t, err, ErrHandlerClassNotFound)

	h, calls := spy("late")
	res, err2 := d.GET(criteria.Literal("/x"), h, false)
	assert.Equal(t, err, err2)
	assert.False(t, res.Matched)
	assert.Zero(t, *calls)
	assert.Equal(t, err, d.Err())
}

func TestDispatcher_Termination(t *testing.T) {
	t.Parallel()

	var events []DiagnosticEvent
	r := testRouter(t, WithDiagnostics(DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		events = append(events, e)
	})))

	t.Run("continue", func(t *testing.T) {
		d := testDispatcher(t, r, "GET", "/x")
		first, firstCalls := spy("first")
		second, secondCalls := spy("second")

		res, err := d.GET(criteria.Literal("/x"), first, false)
		require.NoError(t, err)
		assert.Equal(t, "first", res.Value)
		assert.False(t, res.Stop)
		assert.False(t, d.Stopped())

		res, err = d.GET(criteria.Literal("/x"), second, false)
		require.NoError(t, err)
		assert.Equal(t, "second", res.Value)
		assert.Equal(t, 1, *firstCalls)
		assert.Equal(t, 1, *secondCalls)
	})

	t.Run("stop", func(t *testing.T) {
		d := testDispatcher(t, r, "GET", "/x")
		first, firstCalls := spy("first")
		second, secondCalls := spy("second")

		res, err := d.GET(criteria.Literal("/x"), first, true)
		require.NoError(t, err)
		assert.Equal(t, "first", res.Value)
		assert.True(t, res.Stop)
		assert.True(t, d.Stopped())

		res, err = d.GET(criteria.Literal("/x"), second, true)
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.True(t, res.Stop)
		assert.Equal(t, 1, *firstCalls)
		assert.Zero(t, *secondCalls)

		res, err = d.MountNamespace(`App\Admin`, "/", MethodAny, true)
		require.NoError(t, err)
		assert.True(t, res.Stop)
	})

	require.NotEmpty(t, events)
	assert.Equal(t, DiagDispatchAfterStop, events[len(events)-1].Kind)
}

func TestDispatcher_LazyInit(t *testing.T) {
	t.Parallel()

	t.Run("from source", func(t *testing.T) {
		t.Parallel()
		r := testRouter(t, WithSource(StaticSource(RequestData{Path: "/lazy", Method: "get"})))
		d := r.Dispatcher(context.Background())

		res, err := d.GET(criteria.Literal("/lazy"), handler.Func(func() string { return "ok" }), false)
		require.NoError(t, err)
		assert.Equal(t, "ok", res.Value)

		req, err := d.Request()
		require.NoError(t, err)
		assert.Equal(t, "GET", req.Method())
	})

	t.Run("from environment", func(t *testing.T) {
		t.Parallel()
		env := map[string]string{"REQUEST_URI": "/env?x=1", "REQUEST_METHOD": "DELETE"}
		r := testRouter(t, WithSource(EnvSource(mapLookup(env))))
		d := r.Dispatcher(context.Background())

		res, err := d.DELETE(criteria.Literal("/env"), handler.Func(func() string { return "gone" }), true)
		require.NoError(t, err)
		assert.Equal(t, "gone", res.Value)
	})

	t.Run("explicit init wins", func(t *testing.T) {
		t.Parallel()
		r := testRouter(t, WithSource(StaticSource(RequestData{Path: "/lazy", Method: "GET"})))
		d := r.Dispatcher(context.Background())
		require.NoError(t, d.Init(RequestData{Path: "/explicit", Method: "PUT"}))

		res, err := d.PUT(criteria.Literal("/explicit"), handler.Func(func() {}), false)
		require.NoError(t, err)
		assert.True(t, res.Matched)
	})

	t.Run("missing data", func(t *testing.T) {
		t.Parallel()
		r := testRouter(t)
		d := r.Dispatcher(context.Background())

		_, err := d.GET(criteria.Literal("/"), handler.Func(func() {}), false)
		require.ErrorIs(t, err, ErrInvalidRequestData)
		assert.True(t, IsRequestError(err))
	})

	t.Run("unknown verb", func(t *testing.T) {
		t.Parallel()
		r := testRouter(t, WithSource(StaticSource(RequestData{Path: "/", Method: "TRACE"})))
		d := r.Dispatcher(context.Background())

		_, err := d.ANY(criteria.Literal("/"), handler.Func(func() {}), false)
		require.ErrorIs(t, err, ErrInvalidMethod)
	})
}

func TestDispatcher_ContextPassedToHandler(t *testing.T) {
	t.Parallel()

	type key struct{}
	r := testRouter(t, WithSource(StaticSource(RequestData{Path: "/ctx", Method: "GET"})))
	d := r.Dispatcher(context.WithValue(context.Background(), key{}, "value"))

	res, err := d.GET(criteria.Literal("/ctx"), handler.Func(func(ctx context.Context) any {
		return ctx.Value(key{})
	}), false)
	require.NoError(t, err)
	assert.Equal(t, "value", res.Value)
}

func TestDispatcher_Run(t *testing.T) {
	t.Parallel()

	r := testRouter(t, WithHandlerPrefix(`App\Handlers`))

	t.Run("stops at the terminating route", func(t *testing.T) {
		t.Parallel()
		d := testDispatcher(t, r, "GET", "/users/7")
		before, beforeCalls := spy("before")
		after, afterCalls := spy("after")

		res, err := d.Run(
			Route{Methods: MethodPost, Pattern: "/users/7", Handler: before},
			Route{Pattern: "/USERS/7", Handler: before},
			Route{Methods: MethodGet, Pattern: `^/users/(\d+)$`, Mode: criteria.ModeRegex, Handler: handler.MustParse("Users@show"), Terminate: true},
			Route{Pattern: "/users/7", Handler: after},
		)
		require.NoError(t, err)
		assert.True(t, res.Stop)
		assert.Equal(t, map[string]any{"id": 7}, res.Value)
		assert.Equal(t, 1, *beforeCalls, "default mode is a case-insensitive literal")
		assert.Zero(t, *afterCalls)
	})

	t.Run("no terminating route", func(t *testing.T) {
		t.Parallel()
		d := testDispatcher(t, r, "GET", "/a")
		a, aCalls := spy("a")

		res, err := d.Run(
			Route{Pattern: "/a", Handler: a},
			Route{Pattern: "/b", Handler: a},
		)
		require.NoError(t, err)
		assert.True(t, res.Matched)
		assert.False(t, res.Stop)
		assert.Equal(t, "a", res.Value)
		assert.Equal(t, 1, *aCalls)
	})

	t.Run("nothing matches", func(t *testing.T) {
		t.Parallel()
		d := testDispatcher(t, r, "GET", "/zzz")
		res, err := d.Run(Route{Pattern: "/a", Handler: handler.Func(func() {})})
		require.NoError(t, err)
		assert.Equal(t, Result{}, res)
	})

	t.Run("error ends the run", func(t *testing.T) {
		t.Parallel()
		d := testDispatcher(t, r, "GET", "/a")
		after, afterCalls := spy("after")

		_, err := d.Run(
			Route{Pattern: "/a", Handler: handler.MustParse("Missing@run")},
			Route{Pattern: "/a", Handler: after},
		)
		require.ErrorIs(t, err, ErrHandlerClassNotFound)
		assert.Zero(t, *afterCalls)
	})

	t.Run("mount route", func(t *testing.T) {
		t.Parallel()
		d := testDispatcher(t, r, "GET", "/admin/users")
		res, err := d.Run(Route{Namespace: `App\Admin`, Pattern: "/admin", Terminate: true})
		require.NoError(t, err)
		assert.True(t, res.Stop)
		assert.Equal(t, "admin users /admin/users", res.Value)
	})
}

func TestDispatcher_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := testRouter(t, WithLogger(logger))
	d := testDispatcher(t, r, "GET", "/x")

	_, err := d.GET(criteria.Literal("/nope"), handler.Func(func() {}), false)
	require.NoError(t, err)
	_, err = d.GET(criteria.Literal("/x"), handler.Func(func() {}), false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "dispatched", entry["msg"])
	assert.Equal(t, d.ID(), entry["dispatch_id"])
	assert.Equal(t, "/x", entry["path"])
}

func TestDispatcher_PathCanonicalizedDiagnostic(t *testing.T) {
	t.Parallel()

	var events []DiagnosticEvent
	r := testRouter(t, WithDiagnostics(DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		events = append(events, e)
	})))

	testDispatcher(t, r, "GET", "/a/../b")
	testDispatcher(t, r, "GET", "/clean")

	require.Len(t, events, 1)
	assert.Equal(t, DiagPathCanonicalized, events[0].Kind)
	assert.Equal(t, "/b", events[0].Fields["path"])
}
