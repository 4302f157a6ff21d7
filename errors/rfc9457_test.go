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

package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *RFC9457
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "plain error",
			formatter:  NewRFC9457("https://example.com/problems"),
			err:        &plainError{msg: "boom"},
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
		},
		{
			name:       "code with base URL",
			formatter:  NewRFC9457("https://example.com/problems"),
			err:        &codedError{msg: "bad verb", code: "invalid_method", status: http.StatusMethodNotAllowed},
			wantStatus: http.StatusMethodNotAllowed,
			wantType:   "https://example.com/problems/invalid_method",
		},
		{
			name:       "code without base URL",
			formatter:  NewRFC9457(""),
			err:        &codedError{msg: "x", code: "handler_method_not_found", status: http.StatusInternalServerError},
			wantStatus: http.StatusInternalServerError,
			wantType:   "handler_method_not_found",
		},
		{
			name: "resolvers",
			formatter: &RFC9457{
				TypeResolver:   func(error) string { return "urn:problem:custom" },
				StatusResolver: func(error) int { return http.StatusTeapot },
			},
			err:        &plainError{msg: "x"},
			wantStatus: http.StatusTeapot,
			wantType:   "urn:problem:custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/admin/users?x=1", nil)
			resp := tt.formatter.Format(req, tt.err)

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", resp.ContentType)

			p, ok := resp.Body.(ProblemDetail)
			require.True(t, ok, "body is %T", resp.Body)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, http.StatusText(tt.wantStatus), p.Title)
			assert.Equal(t, tt.err.Error(), p.Detail)
			assert.Equal(t, "/admin/users", p.Instance)

			id, ok := p.Extensions["error_id"].(string)
			require.True(t, ok)
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
		})
	}
}

func TestRFC9457_ErrorID(t *testing.T) {
	t.Parallel()

	f := &RFC9457{ErrorIDGenerator: func() string { return "fixed" }}
	p := f.Format(nil, &plainError{msg: "x"}).Body.(ProblemDetail)
	assert.Equal(t, "fixed", p.Extensions["error_id"])
	assert.Empty(t, p.Instance, "nil request has no instance")

	f = &RFC9457{DisableErrorID: true}
	p = f.Format(nil, &plainError{msg: "x"}).Body.(ProblemDetail)
	assert.NotContains(t, p.Extensions, "error_id")
}

func TestRFC9457_Extensions(t *testing.T) {
	t.Parallel()

	f := &RFC9457{DisableErrorID: true}
	err := &detailedError{msg: "invalid", details: map[string]any{"field": "path"}}
	p := f.Format(nil, err).Body.(ProblemDetail)
	assert.Equal(t, map[string]any{"field": "path"}, p.Extensions["errors"])
	assert.NotContains(t, p.Extensions, "code")
}

func TestProblemDetail_MarshalJSON(t *testing.T) {
	t.Parallel()

	p := ProblemDetail{
		Type:     "https://example.com/problems/invalid_method",
		Title:    "Method Not Allowed",
		Status:   http.StatusMethodNotAllowed,
		Detail:   "invalid request method",
		Instance: "/users",
		Extensions: map[string]any{
			"code":  "invalid_method",
			"type":  "overwritten",
			"title": "overwritten",
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, p.Type, got["type"])
	assert.Equal(t, p.Title, got["title"])
	assert.InDelta(t, 405, got["status"], 0)
	assert.Equal(t, "invalid_method", got["code"])
	assert.Equal(t, "/users", got["instance"])

	data, err = json.Marshal(ProblemDetail{Type: "about:blank", Title: "OK", Status: 200})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"about:blank","title":"OK","status":200}`, string(data))
}
