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
	"errors"
	"fmt"
	"net/http"
)

// ErrNoRoute is reported when no route and no mount matched the request.
var ErrNoRoute = errors.New("no route matched")

// notFoundError is rendered through the configured error formatter.
type notFoundError struct {
	method string
	path   string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrNoRoute, e.method, e.path)
}

func (e *notFoundError) Unwrap() error { return ErrNoRoute }

func (e *notFoundError) HTTPStatus() int { return http.StatusNotFound }

func (e *notFoundError) Code() string { return "route_not_found" }
