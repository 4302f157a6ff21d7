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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimple_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *Simple
		err        error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "plain error",
			formatter:  NewSimple(),
			err:        &plainError{msg: "boom"},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "boom"},
		},
		{
			name:       "code and status",
			formatter:  NewSimple(),
			err:        &codedError{msg: "no such class", code: "handler_class_not_found", status: http.StatusNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"error": "no such class", "code": "handler_class_not_found"},
		},
		{
			name:       "wrapped code",
			formatter:  NewSimple(),
			err:        fmt.Errorf("dispatch: %w", &codedError{msg: "bad verb", code: "invalid_method", status: http.StatusMethodNotAllowed}),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   map[string]any{"error": "dispatch: bad verb", "code": "invalid_method"},
		},
		{
			name:       "details",
			formatter:  NewSimple(),
			err:        &detailedError{msg: "invalid", details: []string{"path"}},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "invalid", "details": []string{"path"}},
		},
		{
			name: "status resolver",
			formatter: &Simple{StatusResolver: func(error) int {
				return http.StatusTeapot
			}},
			err:        &codedError{msg: "x", code: "c", status: http.StatusBadRequest},
			wantStatus: http.StatusTeapot,
			wantBody:   map[string]any{"error": "x", "code": "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := tt.formatter.Format(nil, tt.err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)
			assert.Equal(t, tt.wantBody, resp.Body)
		})
	}
}

func TestWithStatus(t *testing.T) {
	t.Parallel()

	cause := &plainError{msg: "missing"}
	err := WithStatus(cause, http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Equal(t, "missing", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "No Content", WithStatus(nil, http.StatusNoContent).Error())
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusInternalServerError, StatusOf(&plainError{}))
	assert.Equal(t, http.StatusBadRequest, StatusOf(&codedError{status: http.StatusBadRequest}))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(&codedError{status: 42}), "out of range status")
	assert.Empty(t, CodeOf(&plainError{}))
}

func TestWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := Write(rec, Response{
		Status:      http.StatusBadRequest,
		ContentType: "application/json; charset=utf-8",
		Body:        map[string]any{"error": "bad"},
		Headers:     http.Header{"Allow": []string{"GET", "POST"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"GET", "POST"}, rec.Header().Values("Allow"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad", body["error"])
}
