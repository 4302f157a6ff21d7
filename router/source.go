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
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// RequestData holds the raw request values a RequestContext is built from.
// Empty fields are filled from the router's Source.
type RequestData struct {
	Path   string
	Method string
	Host   string
	Port   int
}

// routable reports whether the fields required to route are present.
func (d RequestData) routable() bool {
	return d.Path != "" && d.Method != ""
}

// complete reports whether every field is set.
func (d RequestData) complete() bool {
	return d.routable() && d.Host != "" && d.Port != 0
}

// merge fills the empty fields of d from other.
func (d RequestData) merge(other RequestData) RequestData {
	if d.Path == "" {
		d.Path = other.Path
	}
	if d.Method == "" {
		d.Method = other.Method
	}
	if d.Host == "" {
		d.Host = other.Host
	}
	if d.Port == 0 {
		d.Port = other.Port
	}
	return d
}

// Source supplies raw request values, for example from the process
// environment of a CGI invocation or from an *http.Request.
type Source interface {
	RequestData(ctx context.Context) (RequestData, error)
}

// SourceFunc is a function adapter for Source.
type SourceFunc func(ctx context.Context) (RequestData, error)

// RequestData implements Source.
func (f SourceFunc) RequestData(ctx context.Context) (RequestData, error) {
	return f(ctx)
}

// StaticSource returns a Source that always yields data.
func StaticSource(data RequestData) Source {
	return SourceFunc(func(context.Context) (RequestData, error) {
		return data, nil
	})
}

// EnvSource returns a Source reading the CGI meta-variables REQUEST_URI,
// REQUEST_METHOD, HTTP_HOST (or SERVER_NAME) and SERVER_PORT through lookup.
// A nil lookup uses os.LookupEnv.
//
// The query string is stripped from REQUEST_URI and the rest is
// percent-decoded, so encoded dot segments are canonicalized like literal
// ones. PATH_INFO is already decoded by the server. Missing variables are
// left empty; deciding whether that is fatal is up to the RequestContext.
func EnvSource(lookup func(string) (string, bool)) Source {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return SourceFunc(func(context.Context) (RequestData, error) {
		var data RequestData

		if uri, ok := lookup("REQUEST_URI"); ok && uri != "" {
			p, err := url.PathUnescape(stripQuery(uri))
			if err != nil {
				return data, fmt.Errorf("REQUEST_URI %q: %w", uri, err)
			}
			data.Path = p
		} else {
			data.Path, _ = lookup("PATH_INFO")
		}

		data.Method, _ = lookup("REQUEST_METHOD")

		host, _ := lookup("HTTP_HOST")
		if host == "" {
			host, _ = lookup("SERVER_NAME")
		}
		data.Host, data.Port = splitHostPort(host)

		if raw, ok := lookup("SERVER_PORT"); ok && raw != "" {
			port, err := cast.ToIntE(raw)
			if err != nil {
				return data, fmt.Errorf("SERVER_PORT %q: %w", raw, err)
			}
			data.Port = port
		}
		return data, nil
	})
}

// HTTPSource returns a Source reading from req. The path is the decoded
// req.URL.Path, never the escaped form. The port comes from the Host header
// when present and otherwise from the URL scheme.
func HTTPSource(req *http.Request) Source {
	return SourceFunc(func(context.Context) (RequestData, error) {
		if req == nil || req.URL == nil {
			return RequestData{}, nil
		}

		data := RequestData{
			Path:   req.URL.Path,
			Method: req.Method,
		}
		data.Host, data.Port = splitHostPort(req.Host)
		if data.Port == 0 {
			if req.TLS != nil {
				data.Port = 443
			} else {
				data.Port = 80
			}
		}
		return data, nil
	})
}

func stripQuery(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		return uri[:i]
	}
	return uri
}

// splitHostPort separates an optional port from host. An unparsable port is
// dropped rather than reported; the port is informational only.
func splitHostPort(hostport string) (string, int) {
	if hostport == "" {
		return "", 0
	}
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return strings.Trim(hostport, "[]"), 0
	}
	return host, cast.ToInt(port)
}
