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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// render writes a handler result. Strings and byte slices are written as
// text unless the client is an API client or prefers JSON; everything else
// is encoded as JSON. A nil result yields 204 No Content.
func render(w http.ResponseWriter, req *http.Request, v any) error {
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	var text string
	isText := false
	switch t := v.(type) {
	case string:
		text, isText = t, true
	case []byte:
		text, isText = string(t), true
	}

	if isText && !wantsJSON(req) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if req.Method == http.MethodHead {
			return nil
		}
		_, err := io.WriteString(w, text)
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode handler result: %w", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return nil
	}
	_, err = w.Write(append(body, '\n'))
	return err
}

func wantsJSON(req *http.Request) bool {
	if IsAPI(req) {
		return true
	}
	return Negotiate(req.Header.Get("Accept"), "text", "json") == "json"
}
