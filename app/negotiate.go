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
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// apiContentTypes are request content types that mark an API client.
var apiContentTypes = map[string]bool{
	"application/json": true,
	"application/xml":  true,
	"text/xml":         true,
}

// IsAPI reports whether req declares a JSON or XML body through its
// Content-Type header. Parameters such as charset are ignored and the
// comparison is case-insensitive.
func IsAPI(req *http.Request) bool {
	if req == nil {
		return false
	}
	ct := req.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	return apiContentTypes[strings.ToLower(strings.TrimSpace(ct))]
}

// acceptSpec is one media range of an Accept header.
type acceptSpec struct {
	typ     string
	subtype string
	quality float64
}

// Negotiate returns the offer the Accept header prefers. Offers may be full
// media types or the short names "json", "text", "html" and "xml". An empty
// header selects the first offer; "" means nothing is acceptable.
//
//	// Accept: text/html, application/json;q=0.8
//	Negotiate(accept, "json", "html") // "html"
func Negotiate(accept string, offers ...string) string {
	if len(offers) == 0 {
		return ""
	}
	specs := parseAccept(accept)
	if len(specs) == 0 {
		return offers[0]
	}

	best, bestQuality, bestSpecificity := "", 0.0, -1
	for _, offer := range offers {
		typ, subtype := splitMediaType(normalizeMediaType(offer))
		for _, spec := range specs {
			q, specificity := spec.match(typ, subtype)
			if q <= 0 {
				continue
			}
			if q > bestQuality || (q == bestQuality && specificity > bestSpecificity) {
				best, bestQuality, bestSpecificity = offer, q, specificity
			}
		}
	}
	return best
}

func parseAccept(header string) []acceptSpec {
	var specs []acceptSpec
	for part := range strings.SplitSeq(header, ",") {
		value, params, _ := strings.Cut(part, ";")
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		spec := acceptSpec{quality: 1}
		spec.typ, spec.subtype = splitMediaType(value)
		for param := range strings.SplitSeq(params, ";") {
			k, v, ok := strings.Cut(param, "=")
			if !ok || strings.TrimSpace(k) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && q >= 0 && q <= 1 {
				spec.quality = q
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

// match returns the quality spec grants to typ/subtype and how specific the
// match was: 1 for */*, 2 for type/*, 3 for an exact match.
func (s acceptSpec) match(typ, subtype string) (float64, int) {
	switch {
	case s.typ == "*" && s.subtype == "*":
		return s.quality, 1
	case s.typ == typ && s.subtype == "*":
		return s.quality, 2
	case s.typ == typ && s.subtype == subtype:
		return s.quality, 3
	}
	return 0, 0
}

func splitMediaType(mt string) (string, string) {
	mt, _, _ = strings.Cut(mt, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	typ, subtype, ok := strings.Cut(mt, "/")
	if !ok {
		return mt, "*"
	}
	return typ, subtype
}

func normalizeMediaType(offer string) string {
	switch strings.ToLower(strings.TrimSpace(offer)) {
	case "json":
		return "application/json"
	case "xml":
		return "application/xml"
	case "html":
		return "text/html"
	case "text", "txt":
		return "text/plain"
	}
	return offer
}
