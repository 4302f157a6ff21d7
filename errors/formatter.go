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
	"errors"
	"net/http"
)

// Formatter turns a dispatch error into the parts of an HTTP response.
//
//	formatter := errors.NewRFC9457("https://example.com/problems")
//	resp := formatter.Format(req, err)
//	_ = errors.Write(w, resp)
type Formatter interface {
	// Format converts err into a Response. req may be nil when the error
	// did not originate from an HTTP request (CGI or tests).
	Format(req *http.Request, err error) Response
}

// Response is a formatted error response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is marshaled to JSON by [Write].
	Body any

	// Headers are additional headers to set. Optional.
	Headers http.Header
}

// ErrorType is implemented by errors that declare their own HTTP status.
// Request errors from the router report 400 or 405 through it.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorDetails is implemented by errors that expose structured details.
type ErrorDetails interface {
	error
	Details() any
}

// ErrorCode is implemented by errors that expose a machine-readable code,
// such as "handler_class_not_found".
type ErrorCode interface {
	error
	Code() string
}

// NewRFC9457 returns an RFC 9457 problem details formatter. baseURL is
// prepended to error codes to build the problem type URI.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// NewSimple returns a Simple formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// WithStatus wraps err so that it reports status. If err is nil the status
// text is used as the message.
//
//	return errors.WithStatus(err, http.StatusNotFound)
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error { return e.err }

func (e *statusError) HTTPStatus() int { return e.status }

// StatusOf returns the status declared by err through [ErrorType], or 500.
func StatusOf(err error) int {
	var typed ErrorType
	if errors.As(err, &typed) {
		if s := typed.HTTPStatus(); s >= 100 && s <= 599 {
			return s
		}
	}
	return http.StatusInternalServerError
}

// CodeOf returns the code declared by err through [ErrorCode], or "".
func CodeOf(err error) string {
	var coded ErrorCode
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// Write writes resp to w with its body encoded as JSON.
func Write(w http.ResponseWriter, resp Response) error {
	for k, vs := range resp.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(resp.Status)
	if resp.Body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(resp.Body)
}
